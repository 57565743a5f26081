// Package client manages hotel guests: lookup by email, passwords and removal.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/identity"
	"hotelcore/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const minPasswordLength = 6

type Service struct {
	store  *repository.Store
	hasher identity.Hasher
	log    *logrus.Logger
	now    func() time.Time
}

func NewService(store *repository.Store, hasher identity.Hasher, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Service{store: store, hasher: hasher, log: log, now: time.Now}
}

// EnsureClient returns the active client with this email, creating an
// unconfirmed one when none exists. It runs on tx so callers can make it part
// of a larger unit of work. Losing a creation race to another transaction is
// reported as ErrConcurrency, so Store.WithRetry reruns the caller and the
// second pass finds the winner's row.
func (s *Service) EnsureClient(ctx context.Context, tx *repository.Store, email string) (*domain.Client, bool, error) {
	existing, err := tx.Clients.FindActiveByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	c := &domain.Client{Email: email}
	if err := domain.ValidateClient(c); err != nil {
		return nil, false, err
	}
	if err := tx.Clients.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, false, fmt.Errorf("%w: client %s created concurrently", domain.ErrConcurrency, c.Email)
		}
		return nil, false, err
	}
	s.log.WithField("client_id", c.ID).Info("client created")
	return c, true, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Client, error) {
	return s.store.Clients.GetByID(ctx, id)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	return s.store.Clients.FindActiveByEmail(ctx, email)
}

// UpdateProfile changes the client's email and personal details.
func (s *Service) UpdateProfile(ctx context.Context, id int64, req UpdateProfileRequest) (*domain.Client, error) {
	var out *domain.Client
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		c, err := tx.Clients.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if req.Email != nil {
			c.Email = *req.Email
		}
		if req.FirstName != nil {
			c.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			c.LastName = *req.LastName
		}
		if req.DateOfBirth != nil {
			dob, err := domain.ParseDay(*req.DateOfBirth)
			if err != nil {
				return domain.InvalidField("date_of_birth", "must be formatted as YYYY-MM-DD")
			}
			if !dob.Before(s.now()) {
				return domain.InvalidField("date_of_birth", "must be in the past")
			}
			d := datatypes.Date(dob)
			c.DateOfBirth = &d
		}
		if err := domain.ValidateClient(c); err != nil {
			return err
		}

		taken, err := tx.Clients.EmailTaken(ctx, c.Email, c.ID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: email %s is already used", domain.ErrConflict, c.Email)
		}
		out = c
		return tx.Clients.UpdateProfile(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetPassword stores a new password digest and confirms the account.
func (s *Service) SetPassword(ctx context.Context, id int64, password string) error {
	if len(password) < minPasswordLength {
		return domain.InvalidField("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.store.Clients.SetPassword(ctx, id, digest); err != nil {
		return err
	}
	s.log.WithField("client_id", id).Info("client password set")
	return nil
}

// Authenticate checks a client's email and password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.Client, error) {
	c, err := s.store.Clients.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if c.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Verify(password, c.PasswordHash); err != nil {
		if errors.Is(err, identity.ErrMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return c, nil
}

// Delete soft-deletes the client. Their orders are kept.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Clients.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.log.WithField("client_id", id).Info("client deleted")
	return nil
}
