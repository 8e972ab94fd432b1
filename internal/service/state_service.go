package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/internal/models"
	"github.com/noah-isme/tum-registrar/internal/repository"
	appErrors "github.com/noah-isme/tum-registrar/pkg/errors"
)

// StateRepository stores and retrieves the persisted snapshot.
type StateRepository interface {
	Load(ctx context.Context) (*dto.StateDocument, error)
	Save(ctx context.Context, doc *dto.StateDocument) error
}

// LoadResult reports how a university was restored. University is never nil.
type LoadResult struct {
	University *models.University
	Restored   bool
	Defaulted  []string
	Failure    error
}

// StateOptions configures the persistence gateway.
type StateOptions struct {
	// Driver labels metrics and logs, e.g. "file" or "postgres".
	Driver string
	// LegacyFormat writes documents without study fields or graduates.
	LegacyFormat bool
}

// StateService applies the load/save policy on top of a state repository.
type StateService struct {
	repo    StateRepository
	opts    StateOptions
	metrics *MetricsService
	logger  *zap.Logger
}

// NewStateService constructs the persistence gateway.
func NewStateService(repo StateRepository, opts StateOptions, metrics *MetricsService, logger *zap.Logger) *StateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Driver == "" {
		opts.Driver = "file"
	}
	return &StateService{repo: repo, opts: opts, metrics: metrics, logger: logger}
}

// Snapshot converts the university into the configured document format.
func (s *StateService) Snapshot(u *models.University) *dto.StateDocument {
	return dto.NewStateDocument(u, s.opts.LegacyFormat)
}

// Save persists a snapshot produced by Snapshot.
func (s *StateService) Save(ctx context.Context, doc *dto.StateDocument) error {
	start := time.Now()
	err := s.repo.Save(ctx, doc)
	s.metrics.ObserveState("save", s.opts.Driver, time.Since(start), err)
	if err != nil {
		s.logger.Error("failed to save state", zap.String("driver", s.opts.Driver), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save state")
	}
	s.logger.Info("state saved", zap.String("driver", s.opts.Driver), zap.Int("faculties", len(doc.Faculties)), zap.Bool("legacy", s.opts.LegacyFormat))
	return nil
}

// Load restores the university. A missing snapshot yields an empty university; any other
// failure is logged and also yields an empty university, never a partial one.
func (s *StateService) Load(ctx context.Context) LoadResult {
	start := time.Now()
	doc, err := s.repo.Load(ctx)
	if err == nil && doc.EffectiveVersion() > dto.StateVersionCurrent {
		err = fmt.Errorf("unsupported state version %d", doc.Version)
	}
	s.metrics.ObserveState("load", s.opts.Driver, time.Since(start), ignoreNotFound(err))

	if errors.Is(err, repository.ErrStateNotFound) {
		s.logger.Info("no persisted state, starting empty", zap.String("driver", s.opts.Driver))
		return LoadResult{University: models.NewUniversity()}
	}
	if err != nil {
		s.logger.Error("failed to load state, starting empty", zap.String("driver", s.opts.Driver), zap.Error(err))
		return LoadResult{
			University: models.NewUniversity(),
			Failure:    appErrors.Wrap(err, appErrors.ErrStateCorrupt.Code, appErrors.ErrStateCorrupt.Status, appErrors.ErrStateCorrupt.Message),
		}
	}

	u, defaulted := doc.University()
	for _, name := range defaulted {
		s.logger.Warn("faculty has no persisted study field, using default",
			zap.String("faculty", name), zap.Stringer("study_field", models.DefaultStudyField))
	}
	s.logger.Info("state loaded", zap.String("driver", s.opts.Driver), zap.Int("version", doc.EffectiveVersion()),
		zap.Int("faculties", len(u.Faculties())), zap.Int("enrolled", u.EnrolledCount()))
	return LoadResult{University: u, Restored: true, Defaulted: defaulted}
}

func ignoreNotFound(err error) error {
	if errors.Is(err, repository.ErrStateNotFound) {
		return nil
	}
	return err
}
