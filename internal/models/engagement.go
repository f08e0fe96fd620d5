package models

import (
	"encoding/json"
	"fmt"
)

// Engagement is the predicted engagement level of a student.
type Engagement string

const (
	EngagementHigh   Engagement = "High"
	EngagementMedium Engagement = "Medium"
	EngagementLow    Engagement = "Low"
)

// EngagementLevels lists every level in display order.
var EngagementLevels = []Engagement{EngagementHigh, EngagementMedium, EngagementLow}

// ParseEngagement converts a raw label into an Engagement.
func ParseEngagement(raw string) (Engagement, error) {
	switch Engagement(raw) {
	case EngagementHigh, EngagementMedium, EngagementLow:
		return Engagement(raw), nil
	default:
		return "", fmt.Errorf("unknown engagement level %q", raw)
	}
}

// UnmarshalJSON rejects labels outside the closed set.
func (e *Engagement) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("engagement: %w", err)
	}
	parsed, err := ParseEngagement(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Badge describes how an engagement level is rendered in a table cell.
type Badge struct {
	Label      string `json:"label"`
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

// Badge maps every engagement level to its display attributes.
func (e Engagement) Badge() Badge {
	switch e {
	case EngagementHigh:
		return Badge{Label: string(e), Background: "bg-emerald-100", Foreground: "text-emerald-800"}
	case EngagementMedium:
		return Badge{Label: string(e), Background: "bg-amber-100", Foreground: "text-amber-800"}
	default:
		return Badge{Label: string(EngagementLow), Background: "bg-red-100", Foreground: "text-red-800"}
	}
}
