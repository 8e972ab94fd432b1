package models

import (
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Student represents a learner enrolled in (or graduated from) a faculty.
// Email is the external identifier; uniqueness is enforced by the registry service, not here.
type Student struct {
	FirstName      string     `json:"first_name" yaml:"first_name"`
	LastName       string     `json:"last_name" yaml:"last_name"`
	Email          string     `json:"email" yaml:"email"`
	EnrollmentDate civil.Date `json:"enrollment_date" yaml:"enrollment_date"`
	DateOfBirth    civil.Date `json:"date_of_birth" yaml:"date_of_birth"`
}

// NewStudent builds a student enrolled on the given day.
func NewStudent(firstName, lastName, email string, enrolledAt time.Time, dateOfBirth civil.Date) *Student {
	return &Student{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          email,
		EnrollmentDate: civil.DateOf(enrolledAt),
		DateOfBirth:    dateOfBirth,
	}
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// Graduate is an archived student together with the day they left.
type Graduate struct {
	Student     `yaml:",inline"`
	GraduatedOn civil.Date `json:"graduated_on" yaml:"graduated_on"`
}
