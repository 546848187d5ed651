package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-backend/internal/models"
)

var reviewTime = time.Date(2025, time.May, 14, 11, 0, 0, 0, time.UTC)

func TestSubmitFromDraft(t *testing.T) {
	w := models.Workflow{Status: models.StatusDraft}

	err := Submit(&w, "operator.a", reviewTime)

	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, w.Status)
	assert.Equal(t, "operator.a", w.SubmittedBy)
	require.NotNil(t, w.SubmittedAt)
	assert.Equal(t, reviewTime, *w.SubmittedAt)
}

func TestSubmitAfterRejection(t *testing.T) {
	earlier := reviewTime.Add(-time.Hour)
	w := models.Workflow{
		Status:      models.StatusRejected,
		SubmittedBy: "operator.a",
		SubmittedAt: &earlier,
		ReviewedBy:  "supervisor.b",
		Comments:    "thickness readings missing",
	}

	err := Submit(&w, "operator.a", reviewTime)

	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, w.Status)
	// resubmission overwrites the prior stamp
	assert.Equal(t, reviewTime, *w.SubmittedAt)
}

func TestSubmitRequiresActor(t *testing.T) {
	w := models.Workflow{Status: models.StatusDraft}
	err := Submit(&w, "", reviewTime)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, models.StatusDraft, w.Status)
}

func TestSubmitInvalidFrom(t *testing.T) {
	for _, status := range []models.Status{models.StatusSubmitted, models.StatusApproved} {
		w := models.Workflow{Status: status}
		err := Submit(&w, "operator.a", reviewTime)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
		assert.Equal(t, status, w.Status)
	}
}

func TestApprove(t *testing.T) {
	w := models.Workflow{Status: models.StatusSubmitted, SubmittedBy: "operator.a"}

	err := Approve(&w, "supervisor.b", "looks good", reviewTime)

	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, w.Status)
	assert.Equal(t, "supervisor.b", w.ReviewedBy)
	require.NotNil(t, w.ReviewedAt)
	assert.Equal(t, "looks good", w.Comments)
}

func TestApproveCommentsOptional(t *testing.T) {
	w := models.Workflow{Status: models.StatusSubmitted}
	require.NoError(t, Approve(&w, "supervisor.b", "", reviewTime))
	assert.Empty(t, w.Comments)
}

func TestApproveInvalidFrom(t *testing.T) {
	for _, status := range []models.Status{models.StatusDraft, models.StatusApproved, models.StatusRejected} {
		w := models.Workflow{Status: status}
		err := Approve(&w, "supervisor.b", "", reviewTime)
		assert.ErrorIs(t, err, models.ErrInvalidTransition)
	}
}

func TestReject(t *testing.T) {
	w := models.Workflow{Status: models.StatusSubmitted, SubmittedBy: "operator.a"}

	err := Reject(&w, "supervisor.b", "shade out of range", reviewTime)

	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, w.Status)
	assert.Equal(t, "supervisor.b", w.ReviewedBy)
	assert.Equal(t, "shade out of range", w.Comments)
}

func TestRejectRequiresComments(t *testing.T) {
	w := models.Workflow{Status: models.StatusSubmitted}
	err := Reject(&w, "supervisor.b", "", reviewTime)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, models.StatusSubmitted, w.Status)
}

func TestRejectInvalidFrom(t *testing.T) {
	w := models.Workflow{Status: models.StatusDraft}
	err := Reject(&w, "supervisor.b", "too early", reviewTime)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(EventSubmit, models.StatusDraft))
	assert.True(t, Allowed(EventSubmit, models.StatusRejected))
	assert.False(t, Allowed(EventSubmit, models.StatusApproved))
	assert.True(t, Allowed(EventApprove, models.StatusSubmitted))
	assert.False(t, Allowed(EventApprove, models.StatusDraft))
	assert.True(t, Allowed(EventReject, models.StatusSubmitted))
	assert.False(t, Allowed(EventReject, models.StatusRejected))
}

func TestDeletable(t *testing.T) {
	assert.True(t, Deletable(models.StatusDraft))
	assert.True(t, Deletable(models.StatusRejected))
	assert.False(t, Deletable(models.StatusSubmitted))
	assert.False(t, Deletable(models.StatusApproved))
}
