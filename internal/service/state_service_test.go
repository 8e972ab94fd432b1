package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/internal/models"
	"github.com/noah-isme/tum-registrar/internal/repository"
	appErrors "github.com/noah-isme/tum-registrar/pkg/errors"
)

type stateRepoStub struct {
	doc     *dto.StateDocument
	loadErr error
	saveErr error
	saved   []*dto.StateDocument
}

func (s *stateRepoStub) Load(ctx context.Context) (*dto.StateDocument, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.doc, nil
}

func (s *stateRepoStub) Save(ctx context.Context, doc *dto.StateDocument) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, doc)
	s.doc = doc
	return nil
}

func TestStateServiceLoadMissingStartsEmpty(t *testing.T) {
	repo := &stateRepoStub{loadErr: repository.ErrStateNotFound}
	metrics := NewMetricsService()
	svc := NewStateService(repo, StateOptions{}, metrics, zap.NewNop())

	result := svc.Load(context.Background())
	require.NotNil(t, result.University)
	assert.False(t, result.Restored)
	assert.NoError(t, result.Failure)
	assert.Empty(t, result.University.Faculties())
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.stateDuration))
}

func TestStateServiceLoadCorruptStartsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	repo := &stateRepoStub{loadErr: errors.New("decode state: unexpected EOF")}
	svc := NewStateService(repo, StateOptions{Driver: "file"}, nil, zap.New(core))

	result := svc.Load(context.Background())
	require.NotNil(t, result.University)
	assert.Empty(t, result.University.Faculties())
	assert.False(t, result.Restored)

	var appErr *appErrors.Error
	require.ErrorAs(t, result.Failure, &appErr)
	assert.Equal(t, appErrors.ErrStateCorrupt.Code, appErr.Code)
	assert.Equal(t, 1, logs.FilterMessage("failed to load state, starting empty").Len())
}

func TestStateServiceLoadRejectsNewerVersion(t *testing.T) {
	repo := &stateRepoStub{doc: &dto.StateDocument{Version: dto.StateVersionCurrent + 1}}
	svc := NewStateService(repo, StateOptions{}, nil, nil)

	result := svc.Load(context.Background())
	assert.ErrorIs(t, result.Failure, appErrors.ErrStateCorrupt)
	assert.Empty(t, result.University.Faculties())
}

func TestStateServiceLoadLegacyDefaultsStudyField(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	repo := &stateRepoStub{doc: &dto.StateDocument{Faculties: []dto.FacultyDocument{
		{Name: "Computation, Information and Technology", Abbreviation: "CIT", Students: []dto.StudentDocument{}},
	}}}
	svc := NewStateService(repo, StateOptions{}, nil, zap.New(core))

	result := svc.Load(context.Background())
	require.NoError(t, result.Failure)
	assert.True(t, result.Restored)
	assert.Equal(t, []string{"Computation, Information and Technology"}, result.Defaulted)

	faculties := result.University.Faculties()
	require.Len(t, faculties, 1)
	assert.Equal(t, models.MechanicalEngineering, faculties[0].StudyField())
	assert.Equal(t, 1, logs.Len())
}

func TestStateServiceSaveUsesConfiguredFormat(t *testing.T) {
	u := models.NewUniversity()
	u.CreateFaculty("Medicine", "MED", models.VeterinaryMedicine)

	repo := &stateRepoStub{}
	legacy := NewStateService(repo, StateOptions{LegacyFormat: true}, nil, nil)
	require.NoError(t, legacy.Save(context.Background(), legacy.Snapshot(u)))
	require.Len(t, repo.saved, 1)
	assert.Zero(t, repo.saved[0].Version)
	assert.Nil(t, repo.saved[0].Faculties[0].StudyField)

	current := NewStateService(repo, StateOptions{}, nil, nil)
	require.NoError(t, current.Save(context.Background(), current.Snapshot(u)))
	require.Len(t, repo.saved, 2)
	assert.Equal(t, dto.StateVersionCurrent, repo.saved[1].Version)
	require.NotNil(t, repo.saved[1].Faculties[0].StudyField)
	assert.Equal(t, models.VeterinaryMedicine, *repo.saved[1].Faculties[0].StudyField)
}

func TestStateServiceSaveWrapsFailure(t *testing.T) {
	repo := &stateRepoStub{saveErr: errors.New("disk full")}
	svc := NewStateService(repo, StateOptions{}, nil, nil)

	err := svc.Save(context.Background(), svc.Snapshot(models.NewUniversity()))
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

type notifyingRepo struct {
	mu    sync.Mutex
	docs  []*dto.StateDocument
	saved chan struct{}
}

func (r *notifyingRepo) Load(ctx context.Context) (*dto.StateDocument, error) {
	return nil, repository.ErrStateNotFound
}

func (r *notifyingRepo) Save(ctx context.Context, doc *dto.StateDocument) error {
	r.mu.Lock()
	r.docs = append(r.docs, doc)
	r.mu.Unlock()
	select {
	case r.saved <- struct{}{}:
	default:
	}
	return nil
}
