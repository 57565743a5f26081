package client

import (
	"context"
	"testing"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/identity"
	"hotelcore/internal/repository"
	"hotelcore/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newService(t *testing.T) (*repository.Store, *Service) {
	t.Helper()
	store := repository.NewStore(testutil.NewDB(t))
	svc := NewService(store, identity.NewBcryptHasher(bcrypt.MinCost), testutil.QuietLogger())
	svc.now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
	return store, svc
}

func TestEnsureClient(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()

	created, isNew, err := svc.EnsureClient(ctx, store, "  Guest@Example.com ")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "guest@example.com", created.Email)
	assert.False(t, created.IsConfirmed)

	found, isNew, err := svc.EnsureClient(ctx, store, "GUEST@example.com")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, found.ID)
}

func TestEnsureClient_IgnoresDeleted(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()

	first, _, err := svc.EnsureClient(ctx, store, "old@example.com")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, first.ID))

	second, isNew, err := svc.EnsureClient(ctx, store, "old@example.com")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestEnsureClient_CreationRace(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()

	// the next insert collides with a client committed by a concurrent checkout
	collisions := 0
	require.NoError(t, store.DB().Callback().Create().Before("gorm:create").Register("test:email_race", func(tx *gorm.DB) {
		if collisions > 0 && tx.Statement.Table == "clients" {
			collisions--
			tx.AddError(gorm.ErrDuplicatedKey)
		}
	}))

	collisions = 1
	_, _, err := svc.EnsureClient(ctx, store, "race@example.com")
	assert.ErrorIs(t, err, domain.ErrConcurrency)

	collisions = 1
	attempts := 0
	var got *domain.Client
	err = store.WithRetry(ctx, func(tx *repository.Store) error {
		attempts++
		var err error
		got, _, err = svc.EnsureClient(ctx, tx, "race@example.com")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "race@example.com", got.Email)
}

func TestEnsureClient_InvalidEmail(t *testing.T) {
	store, svc := newService(t)
	for _, email := range []string{"", "no-at-sign"} {
		_, _, err := svc.EnsureClient(context.Background(), store, email)
		assert.ErrorIs(t, err, domain.ErrValidation, email)
	}
}

func TestPasswordAndAuthenticate(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()
	c, _, err := svc.EnsureClient(ctx, store, "guest@example.com")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "guest@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "no password set yet")

	assert.ErrorIs(t, svc.SetPassword(ctx, c.ID, "123"), domain.ErrValidation)
	require.NoError(t, svc.SetPassword(ctx, c.ID, "secret-pass"))

	got, err := svc.Authenticate(ctx, "Guest@Example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.True(t, got.IsConfirmed)

	_, err = svc.Authenticate(ctx, "guest@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, svc.SetPassword(ctx, 999, "secret-pass"), domain.ErrNotFound)
}

func TestDelete(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()
	c, _, err := svc.EnsureClient(ctx, store, "gone@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))
	_, err = svc.Get(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, c.ID), domain.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	store, svc := newService(t)
	ctx := context.Background()
	a, _, err := svc.EnsureClient(ctx, store, "a@example.com")
	require.NoError(t, err)
	_, _, err = svc.EnsureClient(ctx, store, "b@example.com")
	require.NoError(t, err)

	first, dob := "Ann", "1990-04-12"
	updated, err := svc.UpdateProfile(ctx, a.ID, UpdateProfileRequest{FirstName: &first, DateOfBirth: &dob})
	require.NoError(t, err)
	assert.Equal(t, "Ann", updated.FirstName)
	require.NotNil(t, updated.DateOfBirth)

	taken := "B@example.com"
	_, err = svc.UpdateProfile(ctx, a.ID, UpdateProfileRequest{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrConflict)

	future := "2031-01-01"
	_, err = svc.UpdateProfile(ctx, a.ID, UpdateProfileRequest{DateOfBirth: &future})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
