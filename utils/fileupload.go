package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxAttachmentSize is 5MB in bytes
	MaxAttachmentSize = 5 * 1024 * 1024
	// MaxAvatarSize is 2MB in bytes
	MaxAvatarSize = 2 * 1024 * 1024
	// MaxAttachmentsPerRequest limits files per repair request upload
	MaxAttachmentsPerRequest = 5
)

var (
	attachmentFormats = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".pdf": true,
	}
	avatarFormats = map[string]bool{
		".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	}
)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateAttachment validates a repair attachment's format and size
func ValidateAttachment(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxAttachmentSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxAttachmentSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !attachmentFormats[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only image and PDF files are allowed",
		}
	}

	return nil
}

// ValidateAvatar validates a profile image's format and size
func ValidateAvatar(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxAvatarSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxAvatarSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !avatarFormats[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only image files are allowed",
		}
	}

	return nil
}
