package export

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sample() Dataset {
	return Dataset{
		Sheet:   "Student Report",
		Headers: []string{"id", "course", "score"},
		Rows: [][]string{
			{"1", "Math", "88.50"},
			{"2", "Physics, Advanced", "71.00"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)
	require.Equal(t, "id,course,score\n1,Math,88.50\n2,\"Physics, Advanced\",71.00\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter("score").Render(sample())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	require.Equal(t, []string{"Student Report"}, f.GetSheetList())
	rows, err := f.GetRows("Student Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, []string{"id", "course", "score"}, rows[0])
	require.Equal(t, "Physics, Advanced", rows[2][1])

	score, err := f.GetCellValue("Student Report", "C2")
	require.NoError(t, err)
	require.Equal(t, "88.5", score)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

type failingRenderer struct{}

func (failingRenderer) Format() string { return "broken" }
func (failingRenderer) Render(Dataset) ([]byte, error) {
	return nil, errors.New("boom")
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(nil, NewXLSXExporter(), NewCSVExporter(), failingRenderer{})

	_, err := reg.Renderer(FormatXLSX)
	require.ErrorIs(t, err, ErrNotReady)
	state, ok := reg.State(FormatXLSX)
	require.True(t, ok)
	require.Equal(t, StateLoading, state)

	_, err = reg.Renderer("docx")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	reg.Load(context.Background())
	reg.Wait()

	r, err := reg.Renderer(FormatXLSX)
	require.NoError(t, err)
	require.Equal(t, FormatXLSX, r.Format())

	_, err = reg.Renderer("broken")
	require.ErrorIs(t, err, ErrNotReady)
	require.Equal(t, map[string]State{
		FormatXLSX: StateReady,
		FormatCSV:  StateReady,
		"broken":   StateFailed,
	}, reg.States())
	require.Equal(t, []string{"broken", FormatCSV, FormatXLSX}, reg.Formats())
}

func TestRegistryLoadCancelled(t *testing.T) {
	reg := NewRegistry(nil, NewCSVExporter())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reg.Load(ctx)
	reg.Wait()

	state, _ := reg.State(FormatCSV)
	require.Equal(t, StateFailed, state)
}
