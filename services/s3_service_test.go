package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suriyap/repair-system-api/config"
)

func TestInitS3Service_MissingCredentials(t *testing.T) {
	config.SetConfig(&config.Config{})

	_, err := InitS3Service()
	require.ErrorIs(t, err, ErrFileStorageDisabled)
}

func TestGetS3Service_DisabledWhenUninitialized(t *testing.T) {
	SetS3Service(nil)

	s3 := GetS3Service()
	require.NotNil(t, s3)

	_, err := s3.UploadFile(nil, "repairs")
	assert.ErrorIs(t, err, ErrFileStorageDisabled)

	_, err = s3.GetPresignedURL("repairs/manual.pdf")
	assert.ErrorIs(t, err, ErrFileStorageDisabled)

	assert.ErrorIs(t, s3.DeleteFile("repairs/manual.pdf"), ErrFileStorageDisabled)
}
