package domain

import "time"

// Report is a generated management report.
type Report struct {
	ID          ID         `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Type        string     `json:"type" validate:"required"`
	Period      string     `json:"period,omitempty"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
	Data        Stats      `json:"data,omitempty"`
}

// Key implements Entity.
func (r Report) Key() string { return r.ID.String() }

// Clone implements Cloner.
func (r Report) Clone() Report {
	r.Data = r.Data.Clone()
	return r
}

// DashboardCard is a single dashboard widget; the dashboard store holds only stats.
type DashboardCard struct {
	ID    ID      `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Key implements Entity.
func (d DashboardCard) Key() string { return d.ID.String() }
