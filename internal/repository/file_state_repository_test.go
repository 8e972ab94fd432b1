package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/internal/models"
)

func sampleDocument() *dto.StateDocument {
	field := models.FoodTechnology
	return &dto.StateDocument{
		Version: dto.StateVersionCurrent,
		Faculties: []dto.FacultyDocument{{
			Name:         "Food Technology",
			Abbreviation: "FT",
			StudyField:   &field,
			Students: []dto.StudentDocument{{
				FirstName:      "Ana",
				LastName:       "Pop",
				Email:          "ana@example.com",
				EnrollmentDate: civil.Date{Year: 2026, Month: time.October, Day: 19},
				DateOfBirth:    civil.Date{Year: 2001, Month: time.May, Day: 1},
			}},
			Graduates: []dto.GraduateDocument{{
				StudentDocument: dto.StudentDocument{
					FirstName:      "Ion",
					LastName:       "Rusu",
					Email:          "ion@example.com",
					EnrollmentDate: civil.Date{Year: 2022, Month: time.September, Day: 1},
					DateOfBirth:    civil.Date{Year: 2000, Month: time.January, Day: 12},
				},
				GraduatedOn: civil.Date{Year: 2026, Month: time.June, Day: 30},
			}},
		}},
	}
}

func TestFileStateRepositoryMissingFile(t *testing.T) {
	repo := NewFileStateRepository(filepath.Join(t.TempDir(), "state.json"))

	doc, err := repo.Load(context.Background())
	assert.ErrorIs(t, err, ErrStateNotFound)
	assert.Nil(t, doc)
}

func TestFileStateRepositorySaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	repo := NewFileStateRepository(path)

	require.NoError(t, repo.Save(context.Background(), sampleDocument()))
	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sampleDocument(), loaded)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"enrollment_date": "2026-10-19"`)
	assert.Contains(t, string(raw), `"study_field": "FOOD_TECHNOLOGY"`)
}

func TestFileStateRepositoryOverwrites(t *testing.T) {
	repo := NewFileStateRepository(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, repo.Save(context.Background(), sampleDocument()))
	require.NoError(t, repo.Save(context.Background(), &dto.StateDocument{Version: dto.StateVersionCurrent, Faculties: []dto.FacultyDocument{}}))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded.Faculties)
}

func TestFileStateRepositoryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"faculties": [`), 0o644))

	_, err := NewFileStateRepository(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrStateNotFound)
}

func TestFileStateRepositoryDefaultPath(t *testing.T) {
	assert.Equal(t, "state.json", NewFileStateRepository("").Path())
}
