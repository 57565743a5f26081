// Package auth issues access tokens to clients and hotel workers.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"

	"hotelcore/internal/domain"
	"hotelcore/internal/modules/client"
	"hotelcore/internal/pkg/jwt"
)

// WorkerCredentials is the single staff account, configured by environment.
type WorkerCredentials struct {
	Email        string
	PasswordHash string
}

func (w WorkerCredentials) enabled() bool {
	return w.Email != "" && w.PasswordHash != ""
}

type Service struct {
	clients ClientAuthenticator
	hasher  SecretVerifier
	tokens  tokenIssuer
	worker  WorkerCredentials
}

func NewService(clients ClientAuthenticator, hasher SecretVerifier, tokens tokenIssuer, worker WorkerCredentials) *Service {
	worker.Email = domain.NormalizeEmail(worker.Email)
	return &Service{clients: clients, hasher: hasher, tokens: tokens, worker: worker}
}

// ClientLogin verifies a client's password and issues a client token.
func (s *Service) ClientLogin(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	c, err := s.clients.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, client.ErrInvalidCredentials) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	token, err := s.tokens.GenerateToken(c.ID, jwt.RoleClient)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, Role: jwt.RoleClient, ClientID: c.ID}, nil
}

// WorkerLogin checks the configured staff account and issues a worker token.
func (s *Service) WorkerLogin(_ context.Context, req LoginRequest) (*LoginResponse, error) {
	if !s.worker.enabled() {
		return nil, ErrWorkerLoginOff
	}
	email := domain.NormalizeEmail(req.Email)
	sameEmail := subtle.ConstantTimeCompare([]byte(email), []byte(s.worker.Email)) == 1
	// verify even on a wrong email so both paths take similar time
	verifyErr := s.hasher.Verify(req.Password, s.worker.PasswordHash)
	if !sameEmail || verifyErr != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(0, jwt.RoleWorker)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, Role: jwt.RoleWorker}, nil
}
