package dto

import "github.com/noah-isme/tum-registrar/internal/models"

// FacultyItem is a read-only view of a faculty.
type FacultyItem struct {
	Name         string            `json:"name"`
	Abbreviation string            `json:"abbreviation"`
	StudyField   models.StudyField `json:"study_field"`
	Enrolled     int               `json:"enrolled"`
	Graduated    int               `json:"graduated"`
}

// Roster lists a faculty's enrolled students or its graduates.
type Roster struct {
	Faculty   FacultyItem       `json:"faculty"`
	Students  []models.Student  `json:"students,omitempty"`
	Graduates []models.Graduate `json:"graduates,omitempty"`
}

// EnrollmentResult describes a freshly enrolled student.
type EnrollmentResult struct {
	Faculty FacultyItem    `json:"faculty"`
	Student models.Student `json:"student"`
}

// GraduationResult describes a student moved to the graduate archive.
type GraduationResult struct {
	Faculty  FacultyItem     `json:"faculty"`
	Graduate models.Graduate `json:"graduate"`
}

// MembershipResult answers whether a student belongs to a faculty.
type MembershipResult struct {
	Faculty  FacultyItem `json:"faculty"`
	Email    string      `json:"email"`
	Enrolled bool        `json:"enrolled"`
}

// Summary aggregates counts across the university.
type Summary struct {
	Faculties int `json:"faculties"`
	Enrolled  int `json:"enrolled"`
	Graduated int `json:"graduated"`
}

// NewFacultyItem copies the visible fields of a faculty.
func NewFacultyItem(f *models.Faculty) FacultyItem {
	return FacultyItem{
		Name:         f.Name,
		Abbreviation: f.Abbreviation,
		StudyField:   f.StudyField(),
		Enrolled:     len(f.Students()),
		Graduated:    len(f.Graduates()),
	}
}
