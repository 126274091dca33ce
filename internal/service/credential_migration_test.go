package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticias/internal/auth"
	"noticias/internal/model"
	"noticias/internal/repository"
	"noticias/pkg/logger"
)

type migrationRepo struct {
	mu      sync.Mutex
	users   []model.User
	updates map[int64]string
	failIDs map[int64]error
	listErr error
}

func (r *migrationRepo) FindByUsername(context.Context, string) (*model.User, error) {
	return nil, repository.ErrUserNotFound
}

func (r *migrationRepo) ListAll(context.Context) ([]model.User, error) {
	return r.users, r.listErr
}

func (r *migrationRepo) UpdateCredential(_ context.Context, id int64, old, credential string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failIDs[id]; ok {
		return err
	}
	for _, u := range r.users {
		if u.ID == id && u.Credential != old {
			return repository.ErrUserNotFound
		}
	}
	r.updates[id] = credential
	return nil
}

func TestCredentialMigrator_UpgradesOnlyPlaintext(t *testing.T) {
	existing, err := auth.HashPassword("already")
	require.NoError(t, err)

	repo := &migrationRepo{
		users: []model.User{
			{ID: 1, Username: "admin", Credential: "Admin123"},
			{ID: 2, Username: "editor", Credential: existing},
			{ID: 3, Username: "otro", Credential: "clave"},
		},
		updates: map[int64]string{},
	}

	m := NewCredentialMigrator(repo, logger.NewNop(), 2)
	m.hash = func(s string) (string, error) { return "$2a$04$" + s, nil }

	report, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Upgraded)
	assert.Zero(t, report.Failed)

	assert.Equal(t, "$2a$04$Admin123", repo.updates[1])
	assert.Equal(t, "$2a$04$clave", repo.updates[3])
	assert.NotContains(t, repo.updates, int64(2))
}

func TestCredentialMigrator_RealHashVerifies(t *testing.T) {
	repo := &migrationRepo{
		users:   []model.User{{ID: 1, Username: "admin", Credential: "Admin123"}},
		updates: map[int64]string{},
	}

	_, err := NewCredentialMigrator(repo, logger.NewNop(), 1).Run(context.Background())
	require.NoError(t, err)

	cred := auth.ParseCredential(repo.updates[1])
	require.IsType(t, auth.Hashed(nil), cred)
	assert.True(t, cred.Verify("Admin123"))
}

func TestCredentialMigrator_ReportsFailures(t *testing.T) {
	repo := &migrationRepo{
		users: []model.User{
			{ID: 1, Username: "a", Credential: "x"},
			{ID: 2, Username: "b", Credential: "y"},
		},
		updates: map[int64]string{},
		failIDs: map[int64]error{2: &repository.StoreError{Op: "update credential", Err: errors.New("lock wait timeout")}},
	}

	m := NewCredentialMigrator(repo, logger.NewNop(), 1)
	m.hash = func(s string) (string, error) { return "$2a$04$" + s, nil }

	report, err := m.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, report.Upgraded)
	assert.Equal(t, 1, report.Failed)
}

func TestCredentialMigrator_ListError(t *testing.T) {
	repo := &migrationRepo{listErr: &repository.StoreError{Op: "list users", Err: errors.New("down")}}

	_, err := NewCredentialMigrator(repo, logger.NewNop(), 1).Run(context.Background())
	var storeErr *repository.StoreError
	assert.ErrorAs(t, err, &storeErr)
}
