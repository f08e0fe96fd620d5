package service

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
	"github.com/noah-isme/elearning-analytics-console/internal/repository"
	appErrors "github.com/noah-isme/elearning-analytics-console/pkg/errors"
)

type fakeBackend struct {
	mu            sync.Mutex
	students      []models.Record
	courses       []models.CourseSummary
	details       map[string][]models.Record
	stats         *models.DashboardStats
	profile       *models.Profile
	err           error
	statsErr      error
	updates       []models.ProfileUpdate
	searchQueries []string
	calls         map[string]int
	// gates blocks a call to the named operation until the channel is closed.
	gates map[string]chan struct{}
}

func (f *fakeBackend) enter(op string) error {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
	gate := f.gates[op]
	err := f.err
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return err
}

func (f *fakeBackend) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeBackend) Students(ctx context.Context) ([]models.Record, error) {
	if err := f.enter("students"); err != nil {
		return nil, err
	}
	return append([]models.Record(nil), f.students...), nil
}

func (f *fakeBackend) Courses(ctx context.Context) ([]models.CourseSummary, error) {
	if err := f.enter("courses"); err != nil {
		return nil, err
	}
	return append([]models.CourseSummary(nil), f.courses...), nil
}

func (f *fakeBackend) CourseDetail(ctx context.Context, name string) ([]models.Record, error) {
	if err := f.enter("course:" + name); err != nil {
		return nil, err
	}
	records, ok := f.details[name]
	if !ok {
		return nil, backendError(http.StatusNotFound, "Course not found")
	}
	return records, nil
}

func (f *fakeBackend) Search(ctx context.Context, query string) ([]models.Record, error) {
	if err := f.enter("search"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.searchQueries = append(f.searchQueries, query)
	f.mu.Unlock()
	out := []models.Record{}
	for _, r := range f.students {
		if r.Course == query || string(r.ID) == query {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBackend) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	if err := f.enter("stats"); err != nil {
		return nil, err
	}
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return f.stats, nil
}

func (f *fakeBackend) Profile(ctx context.Context) (*models.Profile, error) {
	if err := f.enter("profile"); err != nil {
		return nil, err
	}
	return f.profile, nil
}

func (f *fakeBackend) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	if err := f.enter("update_profile"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
	return nil
}

func sampleRecords() []models.Record {
	return []models.Record{
		{ID: "3", Course: "Math", Progress: 40, Score: 71.5, TimeSpent: 2, Engagement: models.EngagementLow},
		{ID: "1", Course: "Physics", Progress: 90, Score: 95, TimeSpent: 12, Engagement: models.EngagementHigh},
		{ID: "10", Course: "Math", Progress: 75, Score: 88, TimeSpent: 7.5, Engagement: models.EngagementHigh},
		{ID: "2", Course: "Art", Progress: 55, Score: 60, TimeSpent: 4, Engagement: models.EngagementMedium},
	}
}

func authenticatedSession(t *testing.T) (*SessionService, *repository.CredentialMemoryRepository) {
	t.Helper()
	store := repository.NewCredentialMemoryRepository("tok")
	sessions := NewSessionService(&fakeAuthGateway{}, store, nil, nil, zap.NewNop())
	require.Equal(t, models.SessionAuthenticated, sessions.Restore(context.Background()))
	return sessions, store
}

func rowIDs(rows []models.StudentRow) []string {
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = string(r.ID)
	}
	return ids
}

func TestStudentServiceSortToggles(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	backend := &fakeBackend{students: sampleRecords()}
	svc := NewStudentService(backend, sessions, nil)

	table, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"3", "1", "10", "2"}, rowIDs(table.Rows))
	require.Nil(t, table.Sort)
	require.Equal(t, models.EngagementLow.Badge(), table.Rows[0].Badge)

	table, err = svc.Sort(context.Background(), models.FieldID)
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "10"}, rowIDs(table.Rows))
	require.Equal(t, "▲", table.Columns[0].Indicator)

	table, err = svc.Sort(context.Background(), models.FieldID)
	require.NoError(t, err)
	require.Equal(t, []string{"10", "3", "2", "1"}, rowIDs(table.Rows))
	require.Equal(t, "▼", table.Columns[0].Indicator)

	table, err = svc.Sort(context.Background(), models.FieldScore)
	require.NoError(t, err)
	require.Equal(t, &models.SortSpec{Field: models.FieldScore, Direction: models.SortAscending}, table.Sort)
	require.Equal(t, 1, backend.callCount("students"))

	_, err = svc.Sort(context.Background(), "nope")
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestStudentServiceSortStateIsPerView(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	backend := &fakeBackend{students: sampleRecords()}
	a := NewStudentService(backend, sessions, nil)
	b := NewStudentService(backend, sessions, nil)

	_, err := a.Sort(context.Background(), models.FieldScore)
	require.NoError(t, err)
	require.Nil(t, b.SortSpec())
	require.NotNil(t, a.SortSpec())
}

func TestStudentServiceAuthorizationFailureLogsOut(t *testing.T) {
	sessions, store := authenticatedSession(t)
	backend := &fakeBackend{err: backendError(http.StatusUnauthorized, "Token has expired")}
	svc := NewStudentService(backend, sessions, nil)

	_, err := svc.List(context.Background())
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
	require.Equal(t, MsgSessionExpired, appErrors.FromError(err).Message)
	require.Equal(t, models.SessionUnauthenticated, sessions.State())
	persisted, _ := store.Load(context.Background())
	require.Empty(t, persisted)
}

func TestCourseServiceDetailSupersededByNewerNavigation(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	gate := make(chan struct{})
	backend := &fakeBackend{
		details: map[string][]models.Record{
			"Math":    {sampleRecords()[0]},
			"Physics": {sampleRecords()[1]},
		},
		gates: map[string]chan struct{}{"course:Math": gate},
	}
	svc := NewCourseService(backend, sessions, nil)

	slow := make(chan error, 1)
	go func() {
		_, err := svc.Detail(context.Background(), "Math", nil)
		slow <- err
	}()
	require.Eventually(t, func() bool { return backend.callCount("course:Math") == 1 }, timeout, tick)

	detail, err := svc.Detail(context.Background(), "Physics", nil)
	require.NoError(t, err)
	require.Equal(t, "Physics", detail.Course)

	close(gate)
	require.ErrorIs(t, <-slow, appErrors.ErrSuperseded)

	_, key, ok := svc.detail.Snapshot()
	require.True(t, ok)
	require.Equal(t, "Physics", key)
}

func TestCourseServiceListAndNotFound(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	backend := &fakeBackend{
		courses: []models.CourseSummary{
			{Title: "Math", Students: 2, AvgProgress: 57.5},
			{Title: "Art", Students: 1, AvgProgress: 55},
		},
		details: map[string][]models.Record{},
	}
	svc := NewCourseService(backend, sessions, nil)

	table, err := svc.List(context.Background(), &models.SortSpec{Field: "title", Direction: models.SortAscending})
	require.NoError(t, err)
	require.Equal(t, "Art", table.Rows[0].Title)
	require.Equal(t, "▲", table.Columns[0].Indicator)

	titles, err := svc.Titles(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Math", "Art"}, titles)

	_, err = svc.Detail(context.Background(), "Missing", nil)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
	require.True(t, sessions.Authenticated())

	_, err = svc.Detail(context.Background(), " ", nil)
	require.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSearchServiceBlankQuerySkipsBackend(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	backend := &fakeBackend{students: sampleRecords()}
	svc := NewSearchService(backend, sessions, nil)

	result, err := svc.Search(context.Background(), "   ", nil)
	require.NoError(t, err)
	require.Empty(t, result.Results.Rows)
	require.Zero(t, backend.callCount("search"))

	spec := &models.SortSpec{Field: models.FieldScore, Direction: models.SortDescending}
	result, err = svc.Search(context.Background(), " Math ", spec)
	require.NoError(t, err)
	require.Equal(t, "Math", result.Query)
	require.Equal(t, []string{"10", "3"}, rowIDs(result.Results.Rows))
	require.Equal(t, []string{"Math"}, backend.searchQueries)
}

func TestDashboardServiceJoinsStatsAndStudents(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	stats := &models.DashboardStats{
		Engagement: models.ChartBuckets{Labels: []string{"High", "Low", "Medium"}, Values: []float64{2, 1, 1}},
	}
	backend := &fakeBackend{students: sampleRecords(), stats: stats}
	svc := NewDashboardService(backend, sessions, DashboardServiceConfig{TableLimit: 2}, nil)

	view, err := svc.Load(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(*stats, view.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []string{"3", "1"}, rowIDs(view.TopStudents))
	require.Equal(t, 4, view.TotalStudents)
	require.False(t, view.UpdatedAt.IsZero())
}

func TestDashboardServiceFailsWhenEitherFetchFails(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	backend := &fakeBackend{students: sampleRecords(), statsErr: backendError(http.StatusBadGateway, "down")}
	svc := NewDashboardService(backend, sessions, DashboardServiceConfig{}, nil)

	_, err := svc.Load(context.Background())
	require.ErrorIs(t, err, appErrors.ErrTransport)
	require.True(t, sessions.Authenticated())
}

func TestProfileService(t *testing.T) {
	sessions, _ := authenticatedSession(t)
	backend := &fakeBackend{profile: &models.Profile{Username: "alice", Email: "a@x.test"}}
	svc := NewProfileService(backend, sessions, nil, nil)

	profile, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alice", profile.Username)

	_, err = svc.Update(context.Background(), models.ProfileUpdate{Email: "not-an-email"})
	require.ErrorIs(t, err, appErrors.ErrValidation)
	require.Equal(t, MsgInvalidEmail, appErrors.FromError(err).Message)

	_, err = svc.Update(context.Background(), models.ProfileUpdate{Email: "a@x.test", Password: "123"})
	require.Equal(t, MsgPasswordTooShort, appErrors.FromError(err).Message)
	require.Zero(t, backend.callCount("update_profile"))

	message, err := svc.Update(context.Background(), models.ProfileUpdate{Email: " b@x.test ", Password: "longer-secret"})
	require.NoError(t, err)
	require.Equal(t, MsgProfileUpdated, message)
	require.Equal(t, "b@x.test", backend.updates[0].Email)

	backend.err = backendError(http.StatusUnauthorized, "expired")
	_, err = svc.Update(context.Background(), models.ProfileUpdate{Email: "c@x.test"})
	require.ErrorIs(t, err, appErrors.ErrUnauthorized)
	require.False(t, sessions.Authenticated())
}
