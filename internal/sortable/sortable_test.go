package sortable

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

func sampleRecords() []models.Record {
	return []models.Record{
		{ID: "10", Course: "Health", Progress: 40, Score: 70, TimeSpent: 12, Engagement: models.EngagementMedium},
		{ID: "2", Course: "Arts", Progress: 90, Score: 55, TimeSpent: 3, Engagement: models.EngagementHigh},
		{ID: "33", Course: "Business", Progress: 10, Score: 91, TimeSpent: 20, Engagement: models.EngagementLow},
		{ID: "4", Course: "Arts", Progress: 65, Score: 70, TimeSpent: 8, Engagement: models.EngagementHigh},
	}
}

func ids(records []models.Record) []models.RecordID {
	out := make([]models.RecordID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func TestSortNilSpecKeepsInsertionOrder(t *testing.T) {
	input := sampleRecords()
	out, err := Sort(input, nil, models.RecordFields)
	require.NoError(t, err)
	require.Equal(t, input, out)

	out[0].Course = "changed"
	require.Equal(t, "Health", input[0].Course)
}

func TestSortNilInputYieldsEmpty(t *testing.T) {
	out, err := Sort[models.Record](nil, &models.SortSpec{Field: models.FieldScore, Direction: models.SortAscending}, models.RecordFields)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)
}

func TestSortNumericAndLexicalFields(t *testing.T) {
	input := sampleRecords()

	byID, err := Sort(input, &models.SortSpec{Field: models.FieldID, Direction: models.SortAscending}, models.RecordFields)
	require.NoError(t, err)
	assert.Equal(t, []models.RecordID{"2", "4", "10", "33"}, ids(byID))

	byCourse, err := Sort(input, &models.SortSpec{Field: models.FieldCourse, Direction: models.SortDescending}, models.RecordFields)
	require.NoError(t, err)
	assert.Equal(t, []models.RecordID{"10", "33", "2", "4"}, ids(byCourse))

	byScore, err := Sort(input, &models.SortSpec{Field: models.FieldScore, Direction: models.SortAscending}, models.RecordFields)
	require.NoError(t, err)
	// stable: 10 precedes 4 as in the input
	assert.Equal(t, []models.RecordID{"2", "10", "4", "33"}, ids(byScore))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	input := sampleRecords()
	before := append([]models.Record(nil), input...)
	_, err := Sort(input, &models.SortSpec{Field: models.FieldProgress, Direction: models.SortDescending}, models.RecordFields)
	require.NoError(t, err)
	require.Equal(t, before, input)
}

func TestSortUnknownField(t *testing.T) {
	_, err := Sort(sampleRecords(), &models.SortSpec{Field: "grade", Direction: models.SortAscending}, models.RecordFields)
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestSortIsPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	courses := []string{"A", "B", "C"}
	input := make([]models.Record, 0, 200)
	for i := 0; i < 200; i++ {
		input = append(input, models.Record{
			ID:         models.RecordID(string(rune('a'+i%26)) + string(rune('a'+i/26))),
			Course:     courses[rng.Intn(len(courses))],
			Progress:   float64(rng.Intn(100)),
			Score:      float64(rng.Intn(100)),
			TimeSpent:  float64(rng.Intn(40)),
			Engagement: models.EngagementLevels[rng.Intn(3)],
		})
	}

	specs := []*models.SortSpec{nil}
	for field := range models.RecordFields {
		specs = append(specs,
			&models.SortSpec{Field: field, Direction: models.SortAscending},
			&models.SortSpec{Field: field, Direction: models.SortDescending})
	}
	for _, spec := range specs {
		out, err := Sort(input, spec, models.RecordFields)
		require.NoError(t, err)
		require.Len(t, out, len(input))
		counts := map[models.Record]int{}
		for _, r := range input {
			counts[r]++
		}
		for _, r := range out {
			counts[r]--
		}
		for r, c := range counts {
			require.Zerof(t, c, "record %v count mismatch for spec %+v", r, spec)
		}
	}
}

func TestNextToggles(t *testing.T) {
	first := Next(nil, models.FieldScore)
	require.Equal(t, models.SortSpec{Field: models.FieldScore, Direction: models.SortAscending}, first)

	second := Next(&first, models.FieldScore)
	require.Equal(t, models.SortDescending, second.Direction)

	third := Next(&second, models.FieldCourse)
	require.Equal(t, models.SortSpec{Field: models.FieldCourse, Direction: models.SortAscending}, third)

	back := Next(&second, models.FieldScore)
	require.Equal(t, models.SortAscending, back.Direction)
}

func TestViewRequestSortIsDeterministic(t *testing.T) {
	a := NewView(sampleRecords(), models.RecordFields, nil)
	b := NewView(sampleRecords(), models.RecordFields, nil)
	for _, field := range []string{models.FieldScore, models.FieldScore, models.FieldID} {
		require.NoError(t, a.RequestSort(field))
		require.NoError(t, b.RequestSort(field))
		if diff := cmp.Diff(a.Items(), b.Items()); diff != "" {
			t.Fatalf("views diverged (-a +b):\n%s", diff)
		}
	}
	require.Equal(t, &models.SortSpec{Field: models.FieldID, Direction: models.SortAscending}, a.Spec())
	require.Equal(t, IndicatorAscending, a.Indicator(models.FieldID))
	require.Equal(t, IndicatorNone, a.Indicator(models.FieldScore))
}

func TestViewOwnsSnapshot(t *testing.T) {
	input := sampleRecords()
	v := NewView(input, models.RecordFields, nil)
	input[0].Course = "mutated"
	require.Equal(t, "Health", v.Items()[0].Course)
	require.Equal(t, 4, v.Len())
}

func TestViewRejectsUnknownField(t *testing.T) {
	v := NewView(sampleRecords(), models.RecordFields, nil)
	require.ErrorIs(t, v.RequestSort("nope"), ErrUnknownField)
	require.Nil(t, v.Spec())
	require.ErrorIs(t, v.SetSpec(&models.SortSpec{Field: "nope"}), ErrUnknownField)
}

func TestViewSortsCourseSummaries(t *testing.T) {
	courses := []models.CourseSummary{
		{Title: "Health", Students: 120, AvgProgress: 48.2},
		{Title: "Arts", Students: 300, AvgProgress: 51.9},
	}
	v := NewView(courses, models.CourseFields, nil)
	require.NoError(t, v.RequestSort("students"))
	require.NoError(t, v.RequestSort("students"))
	require.Equal(t, "Arts", v.Items()[0].Title)
	require.Equal(t, IndicatorDescending, v.Indicator("students"))
}
