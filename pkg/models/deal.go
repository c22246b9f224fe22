package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StageLead        = "lead"
	StageQualified   = "qualified"
	StageProposal    = "proposal"
	StageNegotiation = "negotiation"
	StageWon         = "won"
	StageLost        = "lost"
)

// ValidDealStage reports whether s is a recognized pipeline stage.
func ValidDealStage(s string) bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageNegotiation, StageWon, StageLost:
		return true
	}
	return false
}

// Deal is a sales opportunity moving through the pipeline.
type Deal struct {
	ID                uuid.UUID  `db:"id"                  json:"id"`
	TenantID          uuid.UUID  `db:"tenant_id"           json:"tenant_id"`
	CompanyID         *uuid.UUID `db:"company_id"          json:"company_id,omitempty"`
	ContactID         *uuid.UUID `db:"contact_id"          json:"contact_id,omitempty"`
	Title             string     `db:"title"               json:"title"`
	Description       string     `db:"description"         json:"description"`
	Stage             string     `db:"stage"               json:"stage"`
	Value             float64    `db:"value"               json:"value"`
	Currency          string     `db:"currency"            json:"currency"`
	Probability       int        `db:"probability"         json:"probability"`
	ExpectedCloseDate *time.Time `db:"expected_close_date" json:"expected_close_date,omitempty"`
	AssignedTo        *uuid.UUID `db:"assigned_to"         json:"assigned_to,omitempty"`
	IsActive          bool       `db:"is_active"           json:"is_active"`
	CreatedAt         time.Time  `db:"created_at"          json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"          json:"updated_at"`
}

// WeightedValue is the deal value scaled by its probability.
func (d *Deal) WeightedValue() float64 {
	return d.Value * float64(d.Probability) / 100
}

func (d *Deal) Snapshot() Snapshot {
	s := Snapshot{
		"title":       d.Title,
		"description": d.Description,
		"stage":       d.Stage,
		"value":       d.Value,
		"currency":    d.Currency,
		"probability": d.Probability,
		"is_active":   d.IsActive,
	}
	if d.CompanyID != nil {
		s["company_id"] = d.CompanyID.String()
	}
	if d.ContactID != nil {
		s["contact_id"] = d.ContactID.String()
	}
	if d.AssignedTo != nil {
		s["assigned_to"] = d.AssignedTo.String()
	}
	return s
}

// Activity records an interaction on a deal: a call, email, meeting or task.
type Activity struct {
	ID              uuid.UUID `db:"id"               json:"id"`
	TenantID        uuid.UUID `db:"tenant_id"        json:"tenant_id"`
	DealID          uuid.UUID `db:"deal_id"          json:"deal_id"`
	ActivityType    string    `db:"activity_type"    json:"activity_type"`
	Subject         string    `db:"subject"          json:"subject"`
	Description     string    `db:"description"      json:"description"`
	ActivityDate    time.Time `db:"activity_date"    json:"activity_date"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Outcome         string    `db:"outcome"          json:"outcome"`
	Completed       bool      `db:"completed"        json:"completed"`
	IsActive        bool      `db:"is_active"        json:"is_active"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"       json:"updated_at"`
}

func (a *Activity) Snapshot() Snapshot {
	return Snapshot{
		"deal_id":          a.DealID.String(),
		"activity_type":    a.ActivityType,
		"subject":          a.Subject,
		"description":      a.Description,
		"activity_date":    a.ActivityDate.UTC().Format(time.RFC3339),
		"duration_minutes": a.DurationMinutes,
		"outcome":          a.Outcome,
		"completed":        a.Completed,
		"is_active":        a.IsActive,
	}
}
