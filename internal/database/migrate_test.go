package database

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	upErr      error
	downErr    error
	version    uint
	dirty      bool
	versionErr error
	closed     bool
}

func (f *fakeMigrator) Up() error   { return f.upErr }
func (f *fakeMigrator) Down() error { return f.downErr }
func (f *fakeMigrator) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrator) Close() (error, error) {
	f.closed = true
	return nil, nil
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://u:p@db:5432/accounts", "pgx5://u:p@db:5432/accounts"},
		{"postgresql://u@db/accounts?sslmode=disable", "pgx5://u@db/accounts?sslmode=disable"},
		{"pgx5://already", "pgx5://already"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MigrateURL(tt.in))
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_users.up.sql")
	assert.Contains(t, names, "000002_create_reset_tokens.up.sql")
	assert.Len(t, names, 4)
}

func TestMigrator_NoChangeIsNotAnError(t *testing.T) {
	m := &Migrator{m: &fakeMigrator{upErr: migrate.ErrNoChange, downErr: migrate.ErrNoChange}}
	assert.NoError(t, m.Up())
	assert.NoError(t, m.Down())
}

func TestMigrator_UpFailure(t *testing.T) {
	m := &Migrator{m: &fakeMigrator{upErr: errors.New("boom")}}
	err := m.Up()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestMigrator_Version(t *testing.T) {
	m := &Migrator{m: &fakeMigrator{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	m = &Migrator{m: &fakeMigrator{version: 2}}
	v, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
}

func TestMigrator_Close(t *testing.T) {
	fake := &fakeMigrator{}
	m := &Migrator{m: fake}
	assert.NoError(t, m.Close())
	assert.True(t, fake.closed)
}
