package handlers

import (
	"errors"
	"net/http"

	"inspection-backend/internal/models"
	"inspection-backend/pkg/utils"
)

// writeServiceError maps the service error taxonomy onto HTTP status codes.
// Anything unrecognized is an infrastructure failure and stays a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrDuplicateDocumentNumber),
		errors.Is(err, models.ErrAllocationConflict):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrInvalidState):
		utils.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, models.ErrValidation):
		utils.Error(w, http.StatusBadRequest, err.Error())
	default:
		utils.Error(w, http.StatusInternalServerError, "internal server error")
	}
}
