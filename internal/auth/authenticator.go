// Package auth issues and verifies the identity the expense services act on.
package auth

import (
	"context"

	"github.com/mmynk/splitpartner/internal/models"
)

// Authenticator registers accounts and verifies their credentials.
// Implementations decide what a credential is (password, OAuth token, ...).
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
