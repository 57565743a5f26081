package auth

import (
	"context"

	"hotelcore/internal/domain"
)

// ClientAuthenticator is the part of the client service login needs.
type ClientAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (*domain.Client, error)
}

// SecretVerifier checks a password against a stored digest.
type SecretVerifier interface {
	Verify(secret, digest string) error
}

type tokenIssuer interface {
	GenerateToken(userID int64, role string) (string, error)
}
