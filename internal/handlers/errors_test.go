package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-backend/internal/models"
)

func TestWriteServiceError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("%w: report 7", models.ErrNotFound), http.StatusNotFound},
		{"duplicate document number", models.ErrDuplicateDocumentNumber, http.StatusConflict},
		{"allocation conflict", models.ErrAllocationConflict, http.StatusConflict},
		{"invalid transition", models.ErrInvalidTransition, http.StatusUnprocessableEntity},
		{"invalid state", models.ErrInvalidState, http.StatusUnprocessableEntity},
		{"validation", models.ErrValidation, http.StatusBadRequest},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tc.err)

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestWriteServiceErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("pq: password authentication failed"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
}
