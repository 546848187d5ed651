// Package lifecycle implements the review state machine shared by all report
// variants: DRAFT -> SUBMITTED -> APPROVED/REJECTED, with resubmission after
// rejection. It mutates only the embedded Workflow value; persistence is the
// caller's concern.
package lifecycle

import (
	"fmt"
	"time"

	"inspection-backend/internal/models"
)

// Event is a lifecycle action requested by an actor.
type Event string

const (
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
)

// transitions lists the statuses each event may fire from. Anything not
// listed here is rejected with ErrInvalidTransition.
var transitions = map[Event][]models.Status{
	EventSubmit:  {models.StatusDraft, models.StatusRejected},
	EventApprove: {models.StatusSubmitted},
	EventReject:  {models.StatusSubmitted},
}

// Allowed reports whether event may fire from status from.
func Allowed(event Event, from models.Status) bool {
	for _, s := range transitions[event] {
		if s == from {
			return true
		}
	}
	return false
}

// Submit moves a DRAFT or REJECTED report to SUBMITTED, stamping the
// submitter and the transition time. A resubmission after rejection
// overwrites the prior submission stamp.
func Submit(w *models.Workflow, by string, now time.Time) error {
	if by == "" {
		return fmt.Errorf("%w: submitter is required", models.ErrValidation)
	}
	if !Allowed(EventSubmit, w.Status) {
		return fmt.Errorf("%w: cannot submit a %s report", models.ErrInvalidTransition, w.Status)
	}
	w.Status = models.StatusSubmitted
	w.SubmittedBy = by
	at := now
	w.SubmittedAt = &at
	return nil
}

// Approve moves a SUBMITTED report to APPROVED, stamping the reviewer and
// the transition time. Comments are optional.
func Approve(w *models.Workflow, by, comments string, now time.Time) error {
	if by == "" {
		return fmt.Errorf("%w: reviewer is required", models.ErrValidation)
	}
	if !Allowed(EventApprove, w.Status) {
		return fmt.Errorf("%w: report must be SUBMITTED to approve, got %s", models.ErrInvalidTransition, w.Status)
	}
	w.Status = models.StatusApproved
	w.ReviewedBy = by
	at := now
	w.ReviewedAt = &at
	if comments != "" {
		w.Comments = comments
	}
	return nil
}

// Reject moves a SUBMITTED report to REJECTED. Comments are required so the
// submitter knows what to fix before resubmitting.
func Reject(w *models.Workflow, by, comments string, now time.Time) error {
	if by == "" {
		return fmt.Errorf("%w: reviewer is required", models.ErrValidation)
	}
	if comments == "" {
		return fmt.Errorf("%w: rejection comments are required", models.ErrValidation)
	}
	if !Allowed(EventReject, w.Status) {
		return fmt.Errorf("%w: report must be SUBMITTED to reject, got %s", models.ErrInvalidTransition, w.Status)
	}
	w.Status = models.StatusRejected
	w.ReviewedBy = by
	at := now
	w.ReviewedAt = &at
	w.Comments = comments
	return nil
}

// Deletable reports whether a record in the given status may be removed.
// SUBMITTED and APPROVED reports are kept for the audit trail.
func Deletable(s models.Status) bool {
	return s == models.StatusDraft || s == models.StatusRejected
}
