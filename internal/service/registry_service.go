package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/internal/models"
	"github.com/noah-isme/tum-registrar/pkg/jobs"
	appErrors "github.com/noah-isme/tum-registrar/pkg/errors"
)

type statePersister interface {
	Snapshot(u *models.University) *dto.StateDocument
	Save(ctx context.Context, doc *dto.StateDocument) error
	Load(ctx context.Context) LoadResult
}

// CreateFacultyRequest holds the payload for creating a faculty.
type CreateFacultyRequest struct {
	Name         string `json:"name" validate:"required"`
	Abbreviation string `json:"abbreviation" validate:"required"`
	StudyField   string `json:"study_field" validate:"required"`
}

// EnrollStudentRequest holds the payload for enrolling a student. Faculty is an
// abbreviation or a faculty name; DateOfBirth is YYYY-MM-DD.
type EnrollStudentRequest struct {
	Faculty     string `json:"faculty" validate:"required"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required"`
}

// RegistryService owns the university aggregate and exposes its use-cases.
// Faculty names, abbreviations and student emails are kept unique here.
type RegistryService struct {
	mu         sync.RWMutex
	saveMu     sync.Mutex
	university *models.University
	state      statePersister
	autosave   *jobs.Queue

	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistryService constructs the registry around an existing university.
func NewRegistryService(university *models.University, state statePersister, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *RegistryService {
	if university == nil {
		university = models.NewUniversity()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RegistryService{university: university, state: state, validator: validate, metrics: metrics, logger: logger, now: time.Now}
	s.publishPopulation()
	return s
}

// SetClock overrides the source of "today" used for enrollment and graduation dates.
func (s *RegistryService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// CreateFaculty adds a faculty with a unique name and abbreviation.
func (s *RegistryService) CreateFaculty(ctx context.Context, req CreateFacultyRequest) (*dto.FacultyItem, error) {
	item, err := s.createFaculty(req)
	s.metrics.RecordOperation("create_faculty", err)
	return item, err
}

func (s *RegistryService) createFaculty(req CreateFacultyRequest) (*dto.FacultyItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Abbreviation = strings.TrimSpace(req.Abbreviation)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid faculty payload")
	}
	field, err := parseStudyField(req.StudyField)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.university.Faculties() {
		if strings.EqualFold(f.Abbreviation, req.Abbreviation) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "faculty abbreviation already used")
		}
		if strings.EqualFold(f.Name, req.Name) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "faculty name already used")
		}
	}
	faculty := s.university.CreateFaculty(req.Name, req.Abbreviation, field)
	s.logger.Info("faculty created", zap.String("faculty", faculty.Name), zap.String("abbreviation", faculty.Abbreviation), zap.Stringer("study_field", field))
	s.afterMutation()
	item := dto.NewFacultyItem(faculty)
	return &item, nil
}

// EnrollStudent creates a student dated today and appends it to the referenced faculty.
func (s *RegistryService) EnrollStudent(ctx context.Context, req EnrollStudentRequest) (*dto.EnrollmentResult, error) {
	result, err := s.enrollStudent(req)
	s.metrics.RecordOperation("enroll_student", err)
	return result, err
}

func (s *RegistryService) enrollStudent(req EnrollStudentRequest) (*dto.EnrollmentResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	born, err := ParseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	faculty, ok := s.university.FindFaculty(req.Faculty)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	if owner, taken := s.university.FindFacultyByStudentEmail(req.Email); taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already enrolled in "+owner.Abbreviation)
	}
	student := models.NewStudent(req.FirstName, req.LastName, req.Email, s.now(), born)
	faculty.Enroll(student)
	s.logger.Info("student enrolled", zap.String("email", student.Email), zap.String("faculty", faculty.Abbreviation))
	s.afterMutation()
	return &dto.EnrollmentResult{Faculty: dto.NewFacultyItem(faculty), Student: *student}, nil
}

// GraduateStudent moves the student with the email from their faculty to its graduate archive.
func (s *RegistryService) GraduateStudent(ctx context.Context, email string) (*dto.GraduationResult, error) {
	result, err := s.graduateStudent(strings.TrimSpace(email))
	s.metrics.RecordOperation("graduate_student", err)
	return result, err
}

func (s *RegistryService) graduateStudent(email string) (*dto.GraduationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	faculty, ok := s.university.FindFacultyByStudentEmail(email)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found in any faculty")
	}
	student, ok := faculty.FindStudent(email)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found in "+faculty.Name)
	}
	graduatedAt := s.now()
	faculty.Graduate(student, graduatedAt)
	s.logger.Info("student graduated", zap.String("email", email), zap.String("faculty", faculty.Abbreviation))
	s.afterMutation()
	return &dto.GraduationResult{
		Faculty:  dto.NewFacultyItem(faculty),
		Graduate: models.Graduate{Student: *student, GraduatedOn: civil.DateOf(graduatedAt)},
	}, nil
}

// FindFacultyByStudentEmail returns the faculty where the email is enrolled.
func (s *RegistryService) FindFacultyByStudentEmail(ctx context.Context, email string) (*dto.FacultyItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	faculty, ok := s.university.FindFacultyByStudentEmail(strings.TrimSpace(email))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found in any faculty")
	}
	item := dto.NewFacultyItem(faculty)
	return &item, nil
}

// BelongsTo reports whether the email is enrolled in the referenced faculty.
func (s *RegistryService) BelongsTo(ctx context.Context, facultyRef, email string) (*dto.MembershipResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	faculty, ok := s.university.FindFaculty(facultyRef)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
	}
	email = strings.TrimSpace(email)
	return &dto.MembershipResult{Faculty: dto.NewFacultyItem(faculty), Email: email, Enrolled: faculty.HasStudent(email)}, nil
}

// ListFaculties returns every faculty, or those of one field when field is non-nil.
func (s *RegistryService) ListFaculties(ctx context.Context, field *models.StudyField) []dto.FacultyItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var faculties []*models.Faculty
	if field != nil {
		faculties = s.university.Faculties(*field)
	} else {
		faculties = s.university.Faculties()
	}
	items := make([]dto.FacultyItem, 0, len(faculties))
	for _, f := range faculties {
		items = append(items, dto.NewFacultyItem(f))
	}
	return items
}

// ListStudents returns enrolled students per faculty. An empty reference covers every faculty.
func (s *RegistryService) ListStudents(ctx context.Context, facultyRef string) ([]dto.Roster, error) {
	return s.rosters(facultyRef, func(f *models.Faculty, r *dto.Roster) {
		for _, st := range f.Students() {
			r.Students = append(r.Students, *st)
		}
	})
}

// ListGraduates returns archived graduates per faculty. An empty reference covers every faculty.
func (s *RegistryService) ListGraduates(ctx context.Context, facultyRef string) ([]dto.Roster, error) {
	return s.rosters(facultyRef, func(f *models.Faculty, r *dto.Roster) {
		r.Graduates = f.Graduates()
	})
}

func (s *RegistryService) rosters(facultyRef string, fill func(*models.Faculty, *dto.Roster)) ([]dto.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	faculties := s.university.Faculties()
	if strings.TrimSpace(facultyRef) != "" {
		faculty, ok := s.university.FindFaculty(facultyRef)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		faculties = []*models.Faculty{faculty}
	}
	rosters := make([]dto.Roster, 0, len(faculties))
	for _, f := range faculties {
		roster := dto.Roster{Faculty: dto.NewFacultyItem(f)}
		fill(f, &roster)
		rosters = append(rosters, roster)
	}
	return rosters, nil
}

// Summary counts faculties, enrolled students and graduates.
func (s *RegistryService) Summary(ctx context.Context) dto.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return dto.Summary{
		Faculties: len(s.university.Faculties()),
		Enrolled:  s.university.EnrolledCount(),
		Graduated: s.university.GraduateCount(),
	}
}

// Snapshot returns the persisted form of the current state.
func (s *RegistryService) Snapshot(ctx context.Context) *dto.StateDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Snapshot(s.university)
}

// Save persists the current state. Saves are serialised so a newer snapshot is never
// overwritten by an older one.
func (s *RegistryService) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	doc := s.Snapshot(ctx)
	err := s.state.Save(ctx, doc)
	s.metrics.RecordOperation("save", err)
	return err
}

// Load replaces the in-memory university with the persisted one. On failure the
// in-memory university is left untouched.
func (s *RegistryService) Load(ctx context.Context) LoadResult {
	result := s.state.Load(ctx)
	s.metrics.RecordOperation("load", result.Failure)
	if result.Failure != nil {
		s.logger.Warn("load aborted, keeping in-memory state", zap.Error(result.Failure))
		return result
	}
	s.mu.Lock()
	s.university = result.University
	s.publishPopulation()
	s.mu.Unlock()
	return result
}

// StartAutosave saves the state in the background after every mutation until ctx ends
// or StopAutosave is called.
func (s *RegistryService) StartAutosave(ctx context.Context, cfg jobs.QueueConfig) {
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	cfg.Workers = 1
	queue := jobs.NewQueue("autosave", func(ctx context.Context, job jobs.Job) error {
		return s.Save(ctx)
	}, cfg)
	queue.Start(ctx)

	s.mu.Lock()
	s.autosave = queue
	s.mu.Unlock()
}

// StopAutosave stops the background saver. Pending snapshots are dropped; callers save explicitly afterwards.
func (s *RegistryService) StopAutosave() {
	s.mu.Lock()
	queue := s.autosave
	s.autosave = nil
	s.mu.Unlock()
	if queue != nil {
		queue.Stop()
	}
}

// afterMutation must be called with s.mu held for writing.
func (s *RegistryService) afterMutation() {
	s.publishPopulation()
	if s.autosave == nil {
		return
	}
	if err := s.autosave.TryEnqueue(jobs.Job{Type: "snapshot"}); err != nil {
		if errors.Is(err, jobs.ErrQueueFull) {
			s.logger.Debug("autosave already pending")
			return
		}
		s.logger.Warn("failed to schedule autosave", zap.Error(err))
	}
}

func (s *RegistryService) publishPopulation() {
	s.metrics.SetPopulation(len(s.university.Faculties()), s.university.EnrolledCount(), s.university.GraduateCount())
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(raw string) (civil.Date, error) {
	d, err := civil.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, appErrors.Wrap(err, appErrors.ErrInvalidDate.Code, appErrors.ErrInvalidDate.Status, "date must be YYYY-MM-DD")
	}
	return d, nil
}

// ParseStudyField converts user input into a study field or a typed validation error.
func ParseStudyField(raw string) (models.StudyField, error) {
	return parseStudyField(raw)
}

func parseStudyField(raw string) (models.StudyField, error) {
	field, err := models.ParseStudyField(raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInvalidStudyField.Code, appErrors.ErrInvalidStudyField.Status, err.Error())
	}
	return field, nil
}
