package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/elearning-analytics-console/internal/models"
)

// DataClient fetches analytics data on behalf of the current session.
type DataClient struct {
	transport *Transport
	tokens    TokenSource
}

// NewDataClient builds an authorized client. tokens may be nil for anonymous access.
func NewDataClient(transport *Transport, tokens TokenSource) *DataClient {
	return &DataClient{transport: transport, tokens: tokens}
}

func (c *DataClient) get(ctx context.Context, operation, path string, query url.Values, out interface{}) error {
	return c.transport.do(ctx, call{
		operation: operation,
		method:    http.MethodGet,
		path:      path,
		query:     query,
		token:     c.token(),
		out:       out,
	})
}

func (c *DataClient) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Students lists every student record.
func (c *DataClient) Students(ctx context.Context) ([]models.Record, error) {
	var out []models.Record
	if err := c.get(ctx, "students", "/api/students", nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Courses lists per-course summaries. Missing accents are filled in by position.
func (c *DataClient) Courses(ctx context.Context) ([]models.CourseSummary, error) {
	var out []models.CourseSummary
	if err := c.get(ctx, "courses", "/api/courses", nil, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Color == "" {
			out[i].Color = models.CourseAccent(i)
		}
	}
	return nonNil(out), nil
}

// CourseDetail lists the students of one course. Unknown courses yield ErrNotFound.
func (c *DataClient) CourseDetail(ctx context.Context, name string) ([]models.Record, error) {
	var out []models.Record
	if err := c.get(ctx, "course_detail", "/api/courses/"+url.PathEscape(name), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// Search matches records by id or course.
func (c *DataClient) Search(ctx context.Context, query string) ([]models.Record, error) {
	var out []models.Record
	if err := c.get(ctx, "search", "/api/search", url.Values{"q": {query}}, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// DashboardStats returns the pre-aggregated dashboard charts.
func (c *DataClient) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var out models.DashboardStats
	if err := c.get(ctx, "dashboard_stats", "/api/dashboard_stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile returns the signed-in account.
func (c *DataClient) Profile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.get(ctx, "profile", "/api/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes email and optionally password.
func (c *DataClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) error {
	return c.transport.do(ctx, call{
		operation: "update_profile",
		method:    http.MethodPut,
		path:      "/api/profile",
		token:     c.token(),
		body:      update,
	})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
