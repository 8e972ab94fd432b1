package repository

import (
	"context"
	"database/sql"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/internal/models"
)

// Dates are stored as YYYY-MM-DD text so the same schema serves Postgres and SQLite.
var stateSchema = []string{
	`CREATE TABLE IF NOT EXISTS faculties (
        position INTEGER PRIMARY KEY,
        name TEXT NOT NULL,
        abbreviation TEXT NOT NULL,
        study_field TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS students (
        faculty_position INTEGER NOT NULL REFERENCES faculties(position) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        first_name TEXT NOT NULL,
        last_name TEXT NOT NULL,
        email TEXT NOT NULL,
        enrollment_date TEXT NOT NULL,
        date_of_birth TEXT NOT NULL,
        PRIMARY KEY (faculty_position, position)
    )`,
	`CREATE TABLE IF NOT EXISTS graduates (
        faculty_position INTEGER NOT NULL REFERENCES faculties(position) ON DELETE CASCADE,
        position INTEGER NOT NULL,
        first_name TEXT NOT NULL,
        last_name TEXT NOT NULL,
        email TEXT NOT NULL,
        enrollment_date TEXT NOT NULL,
        date_of_birth TEXT NOT NULL,
        graduated_on TEXT NOT NULL,
        PRIMARY KEY (faculty_position, position)
    )`,
}

type facultyRow struct {
	Position     int            `db:"position"`
	Name         string         `db:"name"`
	Abbreviation string         `db:"abbreviation"`
	StudyField   sql.NullString `db:"study_field"`
}

type studentRow struct {
	FacultyPosition int            `db:"faculty_position"`
	Position        int            `db:"position"`
	FirstName       string         `db:"first_name"`
	LastName        string         `db:"last_name"`
	Email           string         `db:"email"`
	EnrollmentDate  string         `db:"enrollment_date"`
	DateOfBirth     string         `db:"date_of_birth"`
	GraduatedOn     sql.NullString `db:"graduated_on"`
}

// SQLStateRepository stores the snapshot in relational tables through sqlx.
// It works with any driver sqlx can rebind placeholders for (postgres, sqlite).
type SQLStateRepository struct {
	db *sqlx.DB
}

// NewSQLStateRepository constructs a SQLStateRepository.
func NewSQLStateRepository(db *sqlx.DB) *SQLStateRepository {
	return &SQLStateRepository{db: db}
}

// EnsureSchema creates the state tables when missing.
func (r *SQLStateRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range stateSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure state schema: %w", err)
		}
	}
	return nil
}

// Load assembles the snapshot from the state tables. Empty tables mean no snapshot.
func (r *SQLStateRepository) Load(ctx context.Context) (*dto.StateDocument, error) {
	var faculties []facultyRow
	if err := r.db.SelectContext(ctx, &faculties, "SELECT position, name, abbreviation, study_field FROM faculties ORDER BY position"); err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	if len(faculties) == 0 {
		return nil, ErrStateNotFound
	}

	var students []studentRow
	if err := r.db.SelectContext(ctx, &students, `SELECT faculty_position, position, first_name, last_name, email, enrollment_date, date_of_birth
        FROM students ORDER BY faculty_position, position`); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	var graduates []studentRow
	if err := r.db.SelectContext(ctx, &graduates, `SELECT faculty_position, position, first_name, last_name, email, enrollment_date, date_of_birth, graduated_on
        FROM graduates ORDER BY faculty_position, position`); err != nil {
		return nil, fmt.Errorf("list graduates: %w", err)
	}

	doc := &dto.StateDocument{Version: dto.StateVersionCurrent, Faculties: make([]dto.FacultyDocument, 0, len(faculties))}
	index := make(map[int]int, len(faculties))
	for i, row := range faculties {
		fd := dto.FacultyDocument{Name: row.Name, Abbreviation: row.Abbreviation, Students: make([]dto.StudentDocument, 0)}
		if row.StudyField.Valid {
			field, err := models.ParseStudyField(row.StudyField.String)
			if err != nil {
				return nil, fmt.Errorf("faculty %q: %w", row.Name, err)
			}
			fd.StudyField = &field
		}
		doc.Faculties = append(doc.Faculties, fd)
		index[row.Position] = i
	}
	for _, row := range students {
		i, ok := index[row.FacultyPosition]
		if !ok {
			return nil, fmt.Errorf("student %s references unknown faculty %d", row.Email, row.FacultyPosition)
		}
		sd, err := row.document()
		if err != nil {
			return nil, err
		}
		doc.Faculties[i].Students = append(doc.Faculties[i].Students, sd)
	}
	for _, row := range graduates {
		i, ok := index[row.FacultyPosition]
		if !ok {
			return nil, fmt.Errorf("graduate %s references unknown faculty %d", row.Email, row.FacultyPosition)
		}
		sd, err := row.document()
		if err != nil {
			return nil, err
		}
		graduatedOn, err := civil.ParseDate(row.GraduatedOn.String)
		if err != nil {
			return nil, fmt.Errorf("graduate %s graduated_on: %w", row.Email, err)
		}
		doc.Faculties[i].Graduates = append(doc.Faculties[i].Graduates, dto.GraduateDocument{StudentDocument: sd, GraduatedOn: graduatedOn})
	}
	return doc, nil
}

// Save replaces every stored row with the snapshot inside one transaction.
func (r *SQLStateRepository) Save(ctx context.Context, doc *dto.StateDocument) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"graduates", "students", "faculties"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	insertFaculty := tx.Rebind("INSERT INTO faculties (position, name, abbreviation, study_field) VALUES (?, ?, ?, ?)")
	insertStudent := tx.Rebind(`INSERT INTO students (faculty_position, position, first_name, last_name, email, enrollment_date, date_of_birth)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)
	insertGraduate := tx.Rebind(`INSERT INTO graduates (faculty_position, position, first_name, last_name, email, enrollment_date, date_of_birth, graduated_on)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	for fi, fd := range doc.Faculties {
		var field sql.NullString
		if fd.StudyField != nil {
			field = sql.NullString{String: fd.StudyField.String(), Valid: true}
		}
		if _, err = tx.ExecContext(ctx, insertFaculty, fi, fd.Name, fd.Abbreviation, field); err != nil {
			return fmt.Errorf("insert faculty %q: %w", fd.Name, err)
		}
		for si, sd := range fd.Students {
			if _, err = tx.ExecContext(ctx, insertStudent, fi, si, sd.FirstName, sd.LastName, sd.Email, sd.EnrollmentDate.String(), sd.DateOfBirth.String()); err != nil {
				return fmt.Errorf("insert student %s: %w", sd.Email, err)
			}
		}
		for gi, gd := range fd.Graduates {
			if _, err = tx.ExecContext(ctx, insertGraduate, fi, gi, gd.FirstName, gd.LastName, gd.Email, gd.EnrollmentDate.String(), gd.DateOfBirth.String(), gd.GraduatedOn.String()); err != nil {
				return fmt.Errorf("insert graduate %s: %w", gd.Email, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit state tx: %w", err)
	}
	return nil
}

func (row studentRow) document() (dto.StudentDocument, error) {
	enrolled, err := civil.ParseDate(row.EnrollmentDate)
	if err != nil {
		return dto.StudentDocument{}, fmt.Errorf("student %s enrollment_date: %w", row.Email, err)
	}
	born, err := civil.ParseDate(row.DateOfBirth)
	if err != nil {
		return dto.StudentDocument{}, fmt.Errorf("student %s date_of_birth: %w", row.Email, err)
	}
	return dto.StudentDocument{
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Email:          row.Email,
		EnrollmentDate: enrolled,
		DateOfBirth:    born,
	}, nil
}
