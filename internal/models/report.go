package models

import (
	"errors"
	"time"
)

// Status is the review state shared by all report variants.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus converts a string (any case) to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", errors.New("unknown report status: " + s)
}

// PayloadRow is one structured row of a variant-specific table
// (coating batches, audit results, check points). Stored as jsonb and
// passed through the lifecycle and allocator unmodified.
type PayloadRow map[string]interface{}

// Header holds the document-identity fields every report variant carries.
// Unit, Scope and Title have fixed per-variant defaults applied at creation.
type Header struct {
	DocumentNo    string     `json:"document_no"`
	Revision      string     `json:"revision"`
	EffectiveDate *time.Time `json:"effective_date"`
	ReviewedOn    *time.Time `json:"reviewed_on"`
	Page          string     `json:"page"`
	PreparedBy    string     `json:"prepared_by"`
	ApprovedBy    string     `json:"approved_by"`
	Issued        string     `json:"issued"`
	Scope         string     `json:"scope"`
	Title         string     `json:"title"`
	Unit          string     `json:"unit"`
}

// Workflow carries the review lifecycle of a report. It is embedded in every
// variant and mutated only through the lifecycle package; generic updates
// carry these fields over from the stored row.
type Workflow struct {
	Status      Status     `json:"status"`
	SubmittedBy string     `json:"submitted_by,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	Comments    string     `json:"comments,omitempty"`
}

// ReportHeader is the capability shared by the four report variants: access
// to the document-identity header and the review workflow without knowing
// the concrete type.
type ReportHeader interface {
	GetHeader() *Header
	GetWorkflow() *Workflow
}
