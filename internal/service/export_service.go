package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tum-registrar/internal/dto"
	"github.com/noah-isme/tum-registrar/internal/models"
	appErrors "github.com/noah-isme/tum-registrar/pkg/errors"
	"github.com/noah-isme/tum-registrar/pkg/export"
)

// Export formats.
const (
	ExportFormatCSV  = "csv"
	ExportFormatPDF  = "pdf"
	ExportFormatYAML = "yaml"
)

var exportContentTypes = map[string]string{
	ExportFormatCSV:  "text/csv",
	ExportFormatPDF:  "application/pdf",
	ExportFormatYAML: "application/yaml",
}

type rosterSource interface {
	ListStudents(ctx context.Context, facultyRef string) ([]dto.Roster, error)
	ListGraduates(ctx context.Context, facultyRef string) ([]dto.Roster, error)
	Snapshot(ctx context.Context) *dto.StateDocument
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Delete(filename string) error
	Path(filename string) string
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type yamlRenderer interface {
	Render(doc any) ([]byte, error)
}

// ExportRequest selects what to export. An empty Faculty covers every faculty.
type ExportRequest struct {
	Format    string
	Faculty   string
	Graduates bool
}

// ExportResult captures a rendered and stored export. Path is the on-disk location.
type ExportResult struct {
	RelativePath string
	Path         string
	Format       string
	ContentType  string
	Rows         int
	Payload      []byte
}

// ExportService renders rosters and persists them through file storage.
type ExportService struct {
	source  rosterSource
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	yaml    yamlRenderer
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export ones.
func NewExportService(source rosterSource, storage fileStorage, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer, yaml yamlRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if yaml == nil {
		yaml = export.NewYAMLExporter()
	}
	return &ExportService{source: source, storage: storage, csv: csv, pdf: pdf, yaml: yaml, logger: logger, now: time.Now}
}

// Generate renders the roster in the requested format and stores it.
func (s *ExportService) Generate(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	req.Format = strings.ToLower(strings.TrimSpace(req.Format))
	if req.Format == "" {
		req.Format = ExportFormatCSV
	}
	contentType, ok := exportContentTypes[req.Format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", req.Format))
	}

	var rosters []dto.Roster
	var err error
	if req.Graduates {
		rosters, err = s.source.ListGraduates(ctx, req.Faculty)
	} else {
		rosters, err = s.source.ListStudents(ctx, req.Faculty)
	}
	if err != nil {
		return nil, err
	}

	dataset := buildRosterDataset(rosters, req.Graduates)
	var payload []byte
	switch req.Format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, rosterTitle(req))
	case ExportFormatYAML:
		payload, err = s.yaml.Render(filterDocument(s.source.Snapshot(ctx), rosters))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	relPath, err := s.storage.Save(s.buildFilename(req), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}
	s.logger.Info("roster exported", zap.String("path", relPath), zap.String("format", req.Format), zap.Int("rows", len(dataset.Rows)))

	return &ExportResult{
		RelativePath: relPath,
		Path:         s.storage.Path(relPath),
		Format:       req.Format,
		ContentType:  contentType,
		Rows:         len(dataset.Rows),
		Payload:      payload,
	}, nil
}

// Delete removes a stored export.
func (s *ExportService) Delete(relPath string) error {
	if err := s.storage.Delete(relPath); err != nil {
		s.logger.Warn("failed to delete export", zap.String("path", relPath), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete export")
	}
	return nil
}

func (s *ExportService) buildFilename(req ExportRequest) string {
	scope := "all"
	if req.Faculty != "" {
		scope = sanitizeFilename(strings.ToLower(req.Faculty))
	}
	kind := "enrolled"
	if req.Graduates {
		kind = "graduates"
	}
	timestamp := s.now().UTC().Format("20060102_150405")
	return fmt.Sprintf("roster_%s_%s_%s.%s", scope, kind, timestamp, req.Format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

var rosterHeaders = []string{"Faculty", "Abbreviation", "Study Field", "First Name", "Last Name", "Email", "Enrollment Date", "Date of Birth"}

func buildRosterDataset(rosters []dto.Roster, graduates bool) export.Dataset {
	headers := rosterHeaders
	if graduates {
		headers = append(append([]string(nil), rosterHeaders...), "Graduated On")
	}
	rows := make([]map[string]string, 0)
	for _, roster := range rosters {
		if graduates {
			for _, g := range roster.Graduates {
				row := studentRow(roster.Faculty, g.Student)
				row["Graduated On"] = g.GraduatedOn.String()
				rows = append(rows, row)
			}
			continue
		}
		for _, st := range roster.Students {
			rows = append(rows, studentRow(roster.Faculty, st))
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func studentRow(f dto.FacultyItem, st models.Student) map[string]string {
	return map[string]string{
		"Faculty":         f.Name,
		"Abbreviation":    f.Abbreviation,
		"Study Field":     f.StudyField.String(),
		"First Name":      st.FirstName,
		"Last Name":       st.LastName,
		"Email":           st.Email,
		"Enrollment Date": st.EnrollmentDate.String(),
		"Date of Birth":   st.DateOfBirth.String(),
	}
}

func rosterTitle(req ExportRequest) string {
	title := "Enrolled students"
	if req.Graduates {
		title = "Graduates"
	}
	if req.Faculty != "" {
		title += " " + req.Faculty
	}
	return title
}

// filterDocument keeps only the faculties present in rosters.
func filterDocument(doc *dto.StateDocument, rosters []dto.Roster) *dto.StateDocument {
	if doc == nil || len(rosters) == len(doc.Faculties) {
		return doc
	}
	wanted := make(map[string]bool, len(rosters))
	for _, r := range rosters {
		wanted[r.Faculty.Abbreviation+"\x00"+r.Faculty.Name] = true
	}
	filtered := &dto.StateDocument{Version: doc.Version, Faculties: make([]dto.FacultyDocument, 0, len(rosters))}
	for _, f := range doc.Faculties {
		if wanted[f.Abbreviation+"\x00"+f.Name] {
			filtered.Faculties = append(filtered.Faculties, f)
		}
	}
	return filtered
}
