package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/noah-isme/tum-registrar/internal/models"
)

// Kind identifies a console command.
type Kind string

// Command kinds, named after the slash prefixes users type.
const (
	KindNewFaculty       Kind = "nf"
	KindSearchStudent    Kind = "ss"
	KindDisplayFaculties Kind = "df"
	KindNewStudent       Kind = "ns"
	KindGraduateStudent  Kind = "gs"
	KindDisplayStudents  Kind = "ds"
	KindDisplayGraduates Kind = "dg"
	KindBelongsTo        Kind = "bf"
	KindSave             Kind = "save"
	KindLoad             Kind = "load"
	KindHelp             Kind = "help"
	KindQuit             Kind = "q"
)

// Parse errors. All of them leave the loop running.
var (
	ErrEmpty          = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrArguments      = errors.New("wrong number of arguments")
	ErrInvalidDate    = errors.New("invalid date")
)

// Command is a parsed input line. Only the fields relevant to Kind are set.
type Command struct {
	Kind Kind

	Faculty      string
	FacultyName  string
	Abbreviation string
	Field        *models.StudyField

	FirstName   string
	LastName    string
	Email       string
	DateOfBirth civil.Date
}

type argRule struct {
	min, max int
	usage    string
}

var argRules = map[Kind]argRule{
	KindNewFaculty:       {3, 3, "nf/<faculty name>/<abbreviation>/<study field>"},
	KindSearchStudent:    {1, 1, "ss/<email>"},
	KindDisplayFaculties: {0, 1, "df[/<study field>]"},
	KindNewStudent:       {7, 7, "ns/<abbreviation>/<first name>/<last name>/<email>/<day>/<month>/<year>"},
	KindGraduateStudent:  {1, 1, "gs/<email>"},
	KindDisplayStudents:  {0, 1, "ds[/<abbreviation>]"},
	KindDisplayGraduates: {0, 1, "dg[/<abbreviation>]"},
	KindBelongsTo:        {2, 2, "bf/<abbreviation>/<email>"},
	KindSave:             {0, 0, "save"},
	KindLoad:             {0, 0, "load"},
	KindHelp:             {0, 0, "help"},
	KindQuit:             {0, 0, "q"},
}

// Usage lists the accepted command forms in display order.
func Usage() []string {
	order := []Kind{
		KindNewFaculty, KindSearchStudent, KindDisplayFaculties, KindNewStudent, KindGraduateStudent,
		KindDisplayStudents, KindDisplayGraduates, KindBelongsTo, KindSave, KindLoad, KindHelp, KindQuit,
	}
	lines := make([]string, 0, len(order))
	for _, k := range order {
		lines = append(lines, argRules[k].usage)
	}
	return lines
}

// Parse turns a slash-delimited line into a Command. Arguments are trimmed; the command
// word is case-insensitive.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, ErrEmpty
	}
	parts := strings.Split(line, "/")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	kind := Kind(strings.ToLower(parts[0]))
	args := parts[1:]

	rule, ok := argRules[kind]
	if !ok {
		return Command{}, fmt.Errorf("%w %q", ErrUnknownCommand, parts[0])
	}
	if len(args) < rule.min || len(args) > rule.max {
		return Command{}, fmt.Errorf("%w: usage %s", ErrArguments, rule.usage)
	}
	for _, a := range args {
		if a == "" {
			return Command{}, fmt.Errorf("%w: usage %s", ErrArguments, rule.usage)
		}
	}

	cmd := Command{Kind: kind}
	switch kind {
	case KindNewFaculty:
		field, err := models.ParseStudyField(args[2])
		if err != nil {
			return Command{}, err
		}
		cmd.FacultyName, cmd.Abbreviation, cmd.Field = args[0], args[1], &field
	case KindDisplayFaculties:
		if len(args) == 1 {
			field, err := models.ParseStudyField(args[0])
			if err != nil {
				return Command{}, err
			}
			cmd.Field = &field
		}
	case KindNewStudent:
		dob, err := parseDayMonthYear(args[4], args[5], args[6])
		if err != nil {
			return Command{}, err
		}
		cmd.Faculty, cmd.FirstName, cmd.LastName, cmd.Email, cmd.DateOfBirth = args[0], args[1], args[2], args[3], dob
	case KindSearchStudent, KindGraduateStudent:
		cmd.Email = args[0]
	case KindDisplayStudents, KindDisplayGraduates:
		if len(args) == 1 {
			cmd.Faculty = args[0]
		}
	case KindBelongsTo:
		cmd.Faculty, cmd.Email = args[0], args[1]
	}
	return cmd, nil
}

func parseDayMonthYear(day, month, year string) (civil.Date, error) {
	d, errD := strconv.Atoi(day)
	m, errM := strconv.Atoi(month)
	y, errY := strconv.Atoi(year)
	if err := errors.Join(errD, errM, errY); err != nil {
		return civil.Date{}, fmt.Errorf("%w %s/%s/%s: %v", ErrInvalidDate, day, month, year, err)
	}
	date := civil.Date{Year: y, Month: time.Month(m), Day: d}
	if !date.IsValid() {
		return civil.Date{}, fmt.Errorf("%w %s/%s/%s", ErrInvalidDate, day, month, year)
	}
	return date, nil
}
