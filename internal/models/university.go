package models

import "strings"

// University is the aggregate root holding every faculty in creation order.
// Callers construct it explicitly and pass it to whatever needs it.
type University struct {
	faculties []*Faculty
}

// NewUniversity returns an empty university.
func NewUniversity() *University {
	return &University{}
}

// CreateFaculty appends a new faculty and returns it. It never fails.
func (u *University) CreateFaculty(name, abbreviation string, field StudyField) *Faculty {
	faculty := NewFaculty(name, abbreviation, field)
	u.faculties = append(u.faculties, faculty)
	return faculty
}

// AddFaculty attaches an already built faculty, used when rehydrating persisted state.
func (u *University) AddFaculty(f *Faculty) {
	u.faculties = append(u.faculties, f)
}

// Faculties returns every faculty, or only those in the given field. Order is preserved.
func (u *University) Faculties(field ...StudyField) []*Faculty {
	result := make([]*Faculty, 0, len(u.faculties))
	for _, f := range u.faculties {
		if len(field) > 0 && f.StudyField() != field[0] {
			continue
		}
		result = append(result, f)
	}
	return result
}

// FindFacultyByStudentEmail returns the first faculty, in creation order, with an enrolled
// student whose email matches exactly.
func (u *University) FindFacultyByStudentEmail(email string) (*Faculty, bool) {
	for _, f := range u.faculties {
		if f.HasStudent(email) {
			return f, true
		}
	}
	return nil, false
}

// FindFaculty resolves a reference by abbreviation first, then by name. Both comparisons
// ignore case and the first match in creation order wins.
func (u *University) FindFaculty(ref string) (*Faculty, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, false
	}
	for _, f := range u.faculties {
		if strings.EqualFold(f.Abbreviation, ref) {
			return f, true
		}
	}
	for _, f := range u.faculties {
		if strings.EqualFold(f.Name, ref) {
			return f, true
		}
	}
	return nil, false
}

// EnrolledCount sums enrolled students across faculties.
func (u *University) EnrolledCount() int {
	total := 0
	for _, f := range u.faculties {
		total += len(f.students)
	}
	return total
}

// GraduateCount sums archived graduates across faculties.
func (u *University) GraduateCount() int {
	total := 0
	for _, f := range u.faculties {
		total += len(f.graduates)
	}
	return total
}
