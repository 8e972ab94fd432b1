package dto

import (
	"cloud.google.com/go/civil"

	"github.com/noah-isme/tum-registrar/internal/models"
)

// State document versions. Version 1 documents carry no version key, no study field
// and no graduates.
const (
	StateVersionLegacy  = 1
	StateVersionCurrent = 2
)

// StateDocument is the persisted snapshot of the whole university.
type StateDocument struct {
	Version   int               `json:"version,omitempty" yaml:"version,omitempty"`
	Faculties []FacultyDocument `json:"faculties" yaml:"faculties"`
}

// FacultyDocument is a single faculty inside a snapshot. StudyField is nil when absent.
type FacultyDocument struct {
	Name         string             `json:"name" yaml:"name"`
	Abbreviation string             `json:"abbreviation" yaml:"abbreviation"`
	StudyField   *models.StudyField `json:"study_field,omitempty" yaml:"study_field,omitempty"`
	Students     []StudentDocument  `json:"students" yaml:"students"`
	Graduates    []GraduateDocument `json:"graduates,omitempty" yaml:"graduates,omitempty"`
}

// StudentDocument mirrors models.Student with dates in YYYY-MM-DD form.
type StudentDocument struct {
	FirstName      string     `json:"first_name" yaml:"first_name"`
	LastName       string     `json:"last_name" yaml:"last_name"`
	Email          string     `json:"email" yaml:"email"`
	EnrollmentDate civil.Date `json:"enrollment_date" yaml:"enrollment_date"`
	DateOfBirth    civil.Date `json:"date_of_birth" yaml:"date_of_birth"`
}

// GraduateDocument is an archived student.
type GraduateDocument struct {
	StudentDocument `yaml:",inline"`
	GraduatedOn     civil.Date `json:"graduated_on" yaml:"graduated_on"`
}

// NewStateDocument snapshots the university. Legacy documents drop the study field and the
// graduate archive, reproducing the original file format.
func NewStateDocument(u *models.University, legacy bool) *StateDocument {
	doc := &StateDocument{Faculties: make([]FacultyDocument, 0)}
	if !legacy {
		doc.Version = StateVersionCurrent
	}
	for _, f := range u.Faculties() {
		fd := FacultyDocument{
			Name:         f.Name,
			Abbreviation: f.Abbreviation,
			Students:     make([]StudentDocument, 0),
		}
		for _, s := range f.Students() {
			fd.Students = append(fd.Students, studentDocument(*s))
		}
		if !legacy {
			field := f.StudyField()
			fd.StudyField = &field
			for _, g := range f.Graduates() {
				fd.Graduates = append(fd.Graduates, GraduateDocument{StudentDocument: studentDocument(g.Student), GraduatedOn: g.GraduatedOn})
			}
		}
		doc.Faculties = append(doc.Faculties, fd)
	}
	return doc
}

// University rebuilds the aggregate. The returned names list the faculties that had no
// study field and were given models.DefaultStudyField.
func (d *StateDocument) University() (*models.University, []string) {
	u := models.NewUniversity()
	var defaulted []string
	if d == nil {
		return u, nil
	}
	for _, fd := range d.Faculties {
		field := models.DefaultStudyField
		if fd.StudyField != nil && fd.StudyField.Valid() {
			field = *fd.StudyField
		} else {
			defaulted = append(defaulted, fd.Name)
		}
		faculty := models.NewFaculty(fd.Name, fd.Abbreviation, field)
		for _, sd := range fd.Students {
			student := sd.model()
			faculty.Enroll(&student)
		}
		for _, gd := range fd.Graduates {
			faculty.Archive(models.Graduate{Student: gd.model(), GraduatedOn: gd.GraduatedOn})
		}
		u.AddFaculty(faculty)
	}
	return u, defaulted
}

// EffectiveVersion treats a missing version key as the legacy format.
func (d *StateDocument) EffectiveVersion() int {
	if d == nil || d.Version == 0 {
		return StateVersionLegacy
	}
	return d.Version
}

func studentDocument(s models.Student) StudentDocument {
	return StudentDocument{
		FirstName:      s.FirstName,
		LastName:       s.LastName,
		Email:          s.Email,
		EnrollmentDate: s.EnrollmentDate,
		DateOfBirth:    s.DateOfBirth,
	}
}

func (sd StudentDocument) model() models.Student {
	return models.Student{
		FirstName:      sd.FirstName,
		LastName:       sd.LastName,
		Email:          sd.Email,
		EnrollmentDate: sd.EnrollmentDate,
		DateOfBirth:    sd.DateOfBirth,
	}
}
