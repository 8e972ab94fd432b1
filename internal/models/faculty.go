package models

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"
)

// Faculty is an organisational unit bound to one study field. It owns its enrolled students
// and an archive of the ones that graduated.
type Faculty struct {
	Name         string
	Abbreviation string

	field     StudyField
	students  []*Student
	graduates []Graduate
}

// NewFaculty constructs a faculty with no students.
func NewFaculty(name, abbreviation string, field StudyField) *Faculty {
	return &Faculty{Name: name, Abbreviation: abbreviation, field: field}
}

// StudyField is fixed at creation.
func (f *Faculty) StudyField() StudyField {
	return f.field
}

// Enroll appends the student. Duplicates are not checked.
func (f *Faculty) Enroll(student *Student) {
	f.students = append(f.students, student)
}

// Graduate removes the given student reference and archives it.
// It reports false and leaves the faculty untouched when the reference is not enrolled here.
func (f *Faculty) Graduate(student *Student, on time.Time) bool {
	idx := slices.Index(f.students, student)
	if idx < 0 {
		return false
	}
	f.students = slices.Delete(f.students, idx, idx+1)
	f.graduates = append(f.graduates, Graduate{Student: *student, GraduatedOn: civil.DateOf(on)})
	return true
}

// Students returns the enrolled students in enrollment order, keeping only those
// accepted by every predicate.
func (f *Faculty) Students(predicates ...func(*Student) bool) []*Student {
	result := make([]*Student, 0, len(f.students))
	for _, s := range f.students {
		if matchesAll(s, predicates) {
			result = append(result, s)
		}
	}
	return result
}

// FindStudent returns the first enrolled student with the exact email.
func (f *Faculty) FindStudent(email string) (*Student, bool) {
	for _, s := range f.students {
		if s.Email == email {
			return s, true
		}
	}
	return nil, false
}

// HasStudent reports whether a student with the email is currently enrolled.
func (f *Faculty) HasStudent(email string) bool {
	_, ok := f.FindStudent(email)
	return ok
}

// Graduates returns the archive in graduation order.
func (f *Faculty) Graduates() []Graduate {
	return slices.Clone(f.graduates)
}

// Archive restores a previously graduated student, used when rehydrating persisted state.
func (f *Faculty) Archive(g Graduate) {
	f.graduates = append(f.graduates, g)
}

func matchesAll(s *Student, predicates []func(*Student) bool) bool {
	for _, p := range predicates {
		if p != nil && !p(s) {
			return false
		}
	}
	return true
}
