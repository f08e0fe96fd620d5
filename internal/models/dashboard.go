package models

// ChartBuckets is a chart-ready series of labels and values.
type ChartBuckets struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// DashboardStats are the pre-aggregated dashboard charts served by the backend.
type DashboardStats struct {
	Engagement    ChartBuckets `json:"engagement"`
	Completion    ChartBuckets `json:"completion"`
	AverageScores ChartBuckets `json:"averageScores"`
	AverageTime   ChartBuckets `json:"averageTime"`
}
