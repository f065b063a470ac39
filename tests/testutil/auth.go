package testutil

import (
	"testing"

	"github.com/suriyap/repair-system-api/middleware"
)

// IssueToken signs a real JWT for the given identity using the configured
// secret. Tests exercising the genuine auth middleware use this instead of
// mocking the context.
func IssueToken(t *testing.T, userID uint, username, role string) string {
	t.Helper()

	token, err := middleware.GenerateToken(userID, username, role)
	if err != nil {
		t.Fatalf("Failed to issue test token: %v", err)
	}
	return token
}
