package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/internal/models"
	"github.com/noah-isme/tum-registrar/internal/service"
	appErrors "github.com/noah-isme/tum-registrar/pkg/errors"
)

type registry interface {
	CreateFaculty(ctx context.Context, req service.CreateFacultyRequest) (*dto.FacultyItem, error)
	EnrollStudent(ctx context.Context, req service.EnrollStudentRequest) (*dto.EnrollmentResult, error)
	GraduateStudent(ctx context.Context, email string) (*dto.GraduationResult, error)
	FindFacultyByStudentEmail(ctx context.Context, email string) (*dto.FacultyItem, error)
	BelongsTo(ctx context.Context, facultyRef, email string) (*dto.MembershipResult, error)
	ListFaculties(ctx context.Context, field *models.StudyField) []dto.FacultyItem
	ListStudents(ctx context.Context, facultyRef string) ([]dto.Roster, error)
	ListGraduates(ctx context.Context, facultyRef string) ([]dto.Roster, error)
	Summary(ctx context.Context) dto.Summary
	Save(ctx context.Context) error
	Load(ctx context.Context) service.LoadResult
}

// MaxLineLength bounds a single console line in bytes.
const MaxLineLength = 64 * 1024

// ErrLineTooLong is reported for a console line above MaxLineLength.
var ErrLineTooLong = errors.New("input line too long")

// REPL reads commands line by line and runs them against the registry.
type REPL struct {
	registry registry
	in       *bufio.Reader
	out      io.Writer
	styles   Styles
	logger   *zap.Logger
}

// NewREPL wires a loop reading from in and writing to out.
func NewREPL(reg registry, in io.Reader, out io.Writer, logger *zap.Logger) *REPL {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &REPL{registry: reg, in: bufio.NewReader(in), out: out, styles: NewStyles(out), logger: logger}
}

// Run loops until "q", end of input, or ctx is done. Leaving the loop always saves.
func (r *REPL) Run(ctx context.Context) error {
	summary := r.registry.Summary(ctx)
	r.println(r.styles.Heading.Render("TUM registrar"))
	r.println(r.styles.Muted.Render(fmt.Sprintf("%d faculties, %d enrolled, %d graduated. Type help for commands.",
		summary.Faculties, summary.Enrolled, summary.Graduated)))

	lines := make(chan inputLine)
	done := make(chan struct{})
	defer close(done)
	go r.readInput(lines, done)

loop:
	for {
		fmt.Fprint(r.out, r.styles.Prompt.Render("> "))
		var line inputLine
		var open bool
		select {
		case <-ctx.Done():
			r.println("")
			break loop
		case line, open = <-lines:
		}
		if !open {
			break loop
		}
		if errors.Is(line.err, ErrLineTooLong) {
			r.fail(line.err)
			continue
		}
		if line.err != nil {
			r.logger.Warn("console input failed", zap.Error(line.err))
			break loop
		}
		cmd, err := Parse(line.text)
		if errors.Is(err, ErrEmpty) {
			continue
		}
		if err != nil {
			r.fail(err)
			continue
		}
		if cmd.Kind == KindQuit {
			break loop
		}
		if err := r.Execute(ctx, cmd); err != nil {
			r.fail(err)
		}
	}
	return r.quit(context.WithoutCancel(ctx))
}

type inputLine struct {
	text string
	err  error
}

// readInput feeds lines until end of input, a read error, or done is closed.
func (r *REPL) readInput(lines chan<- inputLine, done <-chan struct{}) {
	defer close(lines)
	for {
		text, err := readLine(r.in)
		if errors.Is(err, io.EOF) {
			return
		}
		select {
		case lines <- inputLine{text: text, err: err}:
		case <-done:
			return
		}
		if err != nil && !errors.Is(err, ErrLineTooLong) {
			return
		}
	}
}

// readLine returns the next line without its terminator. A line longer than
// MaxLineLength is consumed and reported as ErrLineTooLong.
func readLine(in *bufio.Reader) (string, error) {
	var buf []byte
	tooLong := false
	for {
		chunk, isPrefix, err := in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) && (len(buf) > 0 || tooLong) {
				break
			}
			return "", err
		}
		if !tooLong {
			if len(buf)+len(chunk) > MaxLineLength {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			break
		}
	}
	if tooLong {
		return "", ErrLineTooLong
	}
	return string(buf), nil
}

// Execute runs one parsed command and prints its result.
func (r *REPL) Execute(ctx context.Context, cmd Command) error {
	switch cmd.Kind {
	case KindNewFaculty:
		item, err := r.registry.CreateFaculty(ctx, service.CreateFacultyRequest{
			Name: cmd.FacultyName, Abbreviation: cmd.Abbreviation, StudyField: cmd.Field.String(),
		})
		if err != nil {
			return err
		}
		r.ok(fmt.Sprintf("Created faculty %s (%s) in %s", item.Name, item.Abbreviation, item.StudyField))
	case KindNewStudent:
		res, err := r.registry.EnrollStudent(ctx, service.EnrollStudentRequest{
			Faculty: cmd.Faculty, FirstName: cmd.FirstName, LastName: cmd.LastName,
			Email: cmd.Email, DateOfBirth: cmd.DateOfBirth.String(),
		})
		if err != nil {
			return err
		}
		r.ok(fmt.Sprintf("Enrolled %s in %s", res.Student.FullName(), res.Faculty.Abbreviation))
	case KindGraduateStudent:
		res, err := r.registry.GraduateStudent(ctx, cmd.Email)
		if err != nil {
			return err
		}
		r.ok(fmt.Sprintf("%s graduated from %s", res.Graduate.FullName(), res.Faculty.Abbreviation))
	case KindSearchStudent:
		item, err := r.registry.FindFacultyByStudentEmail(ctx, cmd.Email)
		if err != nil {
			return err
		}
		r.println(formatFaculty(*item))
	case KindBelongsTo:
		res, err := r.registry.BelongsTo(ctx, cmd.Faculty, cmd.Email)
		if err != nil {
			return err
		}
		if res.Enrolled {
			r.ok(fmt.Sprintf("%s belongs to %s", res.Email, res.Faculty.Abbreviation))
		} else {
			r.println(fmt.Sprintf("%s does not belong to %s", res.Email, res.Faculty.Abbreviation))
		}
	case KindDisplayFaculties:
		items := r.registry.ListFaculties(ctx, cmd.Field)
		r.println(r.styles.Heading.Render(fmt.Sprintf("Faculties (%d)", len(items))))
		for _, item := range items {
			r.println(formatFaculty(item))
		}
	case KindDisplayStudents:
		rosters, err := r.registry.ListStudents(ctx, cmd.Faculty)
		if err != nil {
			return err
		}
		r.printRosters(rosters, false)
	case KindDisplayGraduates:
		rosters, err := r.registry.ListGraduates(ctx, cmd.Faculty)
		if err != nil {
			return err
		}
		r.printRosters(rosters, true)
	case KindSave:
		if err := r.registry.Save(ctx); err != nil {
			return err
		}
		r.ok("State saved")
	case KindLoad:
		res := r.registry.Load(ctx)
		if res.Failure != nil {
			return res.Failure
		}
		summary := r.registry.Summary(ctx)
		r.ok(fmt.Sprintf("Loaded %d faculties, %d enrolled, %d graduated", summary.Faculties, summary.Enrolled, summary.Graduated))
		for _, name := range res.Defaulted {
			r.println(r.styles.Muted.Render(fmt.Sprintf("%s had no study field, set to %s", name, models.DefaultStudyField)))
		}
	case KindHelp:
		r.println(r.styles.Heading.Render("Commands"))
		for _, line := range Usage() {
			r.println("  " + line)
		}
		fields := make([]string, 0, len(models.StudyFields()))
		for _, f := range models.StudyFields() {
			fields = append(fields, fmt.Sprintf("%d=%s", int(f), f))
		}
		r.println(r.styles.Muted.Render("Study fields: " + strings.Join(fields, ", ")))
	default:
		return fmt.Errorf("%w %q", ErrUnknownCommand, cmd.Kind)
	}
	return nil
}

func (r *REPL) quit(ctx context.Context) error {
	if err := r.registry.Save(ctx); err != nil {
		r.fail(err)
		return err
	}
	r.println(r.styles.Muted.Render("State saved. Bye."))
	return nil
}

func (r *REPL) printRosters(rosters []dto.Roster, graduates bool) {
	for _, roster := range rosters {
		count := roster.Faculty.Enrolled
		if graduates {
			count = roster.Faculty.Graduated
		}
		r.println(r.styles.Heading.Render(fmt.Sprintf("%s (%s) - %d", roster.Faculty.Name, roster.Faculty.Abbreviation, count)))
		if graduates {
			for _, g := range roster.Graduates {
				r.println(fmt.Sprintf("  %s <%s> graduated %s", g.FullName(), g.Email, g.GraduatedOn))
			}
			continue
		}
		for _, st := range roster.Students {
			r.println(fmt.Sprintf("  %s <%s> born %s, enrolled %s", st.FullName(), st.Email, st.DateOfBirth, st.EnrollmentDate))
		}
	}
}

func (r *REPL) ok(msg string) {
	r.println(r.styles.OK.Render(msg))
}

func (r *REPL) fail(err error) {
	msg := err.Error()
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	r.logger.Debug("command failed", zap.Error(err))
	r.println(r.styles.Error.Render("error: " + msg))
}

func (r *REPL) println(s string) {
	fmt.Fprintln(r.out, s)
}

func formatFaculty(f dto.FacultyItem) string {
	return fmt.Sprintf("%-6s %s [%s] enrolled: %d, graduated: %d", f.Abbreviation, f.Name, f.StudyField, f.Enrolled, f.Graduated)
}
