package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/pkg/database"
)

func TestSQLStateRepositoryAgainstSQLite(t *testing.T) {
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLStateRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))

	_, err = repo.Load(ctx)
	assert.ErrorIs(t, err, ErrStateNotFound)

	require.NoError(t, repo.Save(ctx, sampleDocument()))
	require.NoError(t, repo.Save(ctx, sampleDocument()), "second save replaces rows")

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleDocument(), loaded)

	legacy := sampleDocument()
	legacy.Faculties[0].StudyField = nil
	legacy.Faculties[0].Graduates = nil
	require.NoError(t, repo.Save(ctx, legacy))

	loaded, err = repo.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded.Faculties[0].StudyField)
	assert.Empty(t, loaded.Faculties[0].Graduates)
	assert.Equal(t, dto.StateVersionCurrent, loaded.Version)
}
