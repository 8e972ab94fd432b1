package console

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tum-registrar/internal/repository"
	"github.com/noah-isme/tum-registrar/internal/service"
)

func newRegistry(t *testing.T, path string) *service.RegistryService {
	t.Helper()
	state := service.NewStateService(repository.NewFileStateRepository(path), service.StateOptions{}, nil, nil)
	reg := service.NewRegistryService(nil, state, nil, nil, nil)
	require.NoError(t, reg.Load(context.Background()).Failure)
	return reg
}

func runScript(t *testing.T, reg *service.RegistryService, lines ...string) string {
	t.Helper()
	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	require.NoError(t, NewREPL(reg, in, out, nil).Run(context.Background()))
	return out.String()
}

func TestREPLScenarioPersistsOnQuit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	reg := newRegistry(t, path)

	out := runScript(t, reg,
		"nf/Computer Science/CS/SOFTWARE_ENGINEERING",
		"ns/CS/Ana/Pop/ana@x.ro/2/1/2000",
		"ss/ana@x.ro",
		"bf/CS/ana@x.ro",
		"gs/ana@x.ro",
		"ss/ana@x.ro",
		"dg/CS",
		"q",
		"df",
	)

	assert.Contains(t, out, "Created faculty Computer Science (CS) in SOFTWARE_ENGINEERING")
	assert.Contains(t, out, "Enrolled Ana Pop in CS")
	assert.Contains(t, out, "ana@x.ro belongs to CS")
	assert.Contains(t, out, "Ana Pop graduated from CS")
	assert.Contains(t, out, "error: student not found in any faculty")
	assert.Contains(t, out, "Ana Pop <ana@x.ro> graduated")
	assert.Contains(t, out, "State saved. Bye.")
	assert.NotContains(t, out, "Faculties (1)")

	restored := newRegistry(t, path)
	summary := restored.Summary(context.Background())
	assert.Equal(t, 1, summary.Faculties)
	assert.Equal(t, 0, summary.Enrolled)
	assert.Equal(t, 1, summary.Graduated)
}

func TestREPLRecoversFromBadInput(t *testing.T) {
	reg := newRegistry(t, filepath.Join(t.TempDir(), "state.json"))

	out := runScript(t, reg,
		"zz",
		"nf/Arts/ART/PAINTING",
		"ns/CS/Ana/Pop/ana@x.ro/31/2/2000",
		"ns/CS/Ana/Pop/ana@x.ro/1/2/2000",
		"",
		"nf/Medicine/MED/5",
		"df/VETERINARY_MEDICINE",
		"help",
	)

	assert.Contains(t, out, `error: unknown command "zz"`)
	assert.Contains(t, out, `error: unknown study field "PAINTING"`)
	assert.Contains(t, out, "error: invalid date 31/2/2000")
	assert.Contains(t, out, "error: faculty not found")
	assert.Contains(t, out, "Faculties (1)")
	assert.Contains(t, out, "MED")
	assert.Contains(t, out, "ns/<abbreviation>/<first name>/<last name>/<email>/<day>/<month>/<year>")
	assert.Contains(t, out, "State saved. Bye.")
}

func TestREPLSaveAndLoadCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	reg := newRegistry(t, path)

	out := runScript(t, reg,
		"nf/Mechanical/ME/1",
		"save",
		"nf/Aerospace/AE/1",
		"load",
		"df",
	)

	assert.Contains(t, out, "State saved")
	assert.Contains(t, out, "Loaded 1 faculties, 0 enrolled, 0 graduated")
	assert.Contains(t, out, "Faculties (1)")
}

func TestREPLSavesWhenContextCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	reg := newRegistry(t, path)
	_, err := reg.CreateFaculty(context.Background(), service.CreateFacultyRequest{
		Name: "Software Engineering", Abbreviation: "SE", StudyField: "SOFTWARE_ENGINEERING",
	})
	require.NoError(t, err)

	in, writer := io.Pipe()
	t.Cleanup(func() { _ = writer.Close() })
	ctx, cancel := context.WithCancel(context.Background())
	out := &bytes.Buffer{}
	done := make(chan error, 1)
	go func() { done <- NewREPL(reg, in, out, nil).Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("REPL kept waiting for input after cancellation")
	}
	assert.Contains(t, out.String(), "State saved. Bye.")

	restored := newRegistry(t, path)
	assert.Equal(t, 1, restored.Summary(context.Background()).Faculties)
}

func TestREPLRejectsOverlongLine(t *testing.T) {
	reg := newRegistry(t, filepath.Join(t.TempDir(), "state.json"))

	out := runScript(t, reg,
		"nf/"+strings.Repeat("x", MaxLineLength)+"/X/1",
		"nf/Medicine/MED/5",
		"df",
		"q",
	)

	assert.Contains(t, out, "error: input line too long")
	assert.Contains(t, out, "Faculties (1)")
	assert.Contains(t, out, "State saved. Bye.")
}

func TestReadLineAcceptsUnterminatedLastLine(t *testing.T) {
	in := bufio.NewReaderSize(strings.NewReader("df\nq"), 16)

	line, err := readLine(in)
	require.NoError(t, err)
	assert.Equal(t, "df", line)
	line, err = readLine(in)
	require.NoError(t, err)
	assert.Equal(t, "q", line)
	_, err = readLine(in)
	assert.ErrorIs(t, err, io.EOF)
}
