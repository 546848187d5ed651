package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"inspection-backend/internal/archive"
	"inspection-backend/internal/cache"
	"inspection-backend/internal/email"
	"inspection-backend/internal/metrics"
	"inspection-backend/internal/models"
	"inspection-backend/internal/pdf"
	"inspection-backend/internal/repositories"
	"inspection-backend/internal/services"
	"inspection-backend/internal/timeutil"
	"inspection-backend/pkg/utils"

	"github.com/gorilla/mux"
)

const inspectionFormVariant = "inspection-form"

type InspectionFormHandler struct {
	Service  *services.InspectionFormService
	Sender   *email.Sender
	Uploader *archive.Uploader
}

func NewInspectionFormHandler(service *services.InspectionFormService, sender *email.Sender, uploader *archive.Uploader) *InspectionFormHandler {
	return &InspectionFormHandler{Service: service, Sender: sender, Uploader: uploader}
}

// transitionRequest is the body for submit/approve/reject calls.
type transitionRequest struct {
	SubmittedBy string `json:"submitted_by"`
	ReviewedBy  string `json:"reviewed_by"`
	Comments    string `json:"comments"`
}

// emailRequest is the body for email-pdf calls.
type emailRequest struct {
	To string `json:"to"`
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

// parseDateParam parses an optional yyyy-mm-dd query parameter.
func parseDateParam(r *http.Request, name string) *time.Time {
	val := r.URL.Query().Get(name)
	if val == "" {
		return nil
	}
	t, err := timeutil.ParseInIST(timeutil.DateLayout, val)
	if err != nil {
		return nil
	}
	return &t
}

// CreateForm creates a first article inspection form in DRAFT
func (h *InspectionFormHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	var form models.InspectionForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), &form)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.ReportsCreated.WithLabelValues(inspectionFormVariant).Inc()
	utils.JSON(w, http.StatusCreated, created)
}

// ListForms lists forms filtered by query parameters
func (h *InspectionFormHandler) ListForms(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.InspectionFormFilter{
		Status:      models.Status(q.Get("status")),
		FormType:    models.FormType(q.Get("form_type")),
		Product:     q.Get("product"),
		Variant:     q.Get("variant"),
		LineNo:      q.Get("line_no"),
		McNo:        q.Get("mc_no"),
		SubmittedBy: q.Get("submitted_by"),
		ReviewedBy:  q.Get("reviewed_by"),
		DateFrom:    parseDateParam(r, "from"),
		DateTo:      parseDateParam(r, "to"),
	}

	forms, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if forms == nil {
		forms = []*models.InspectionForm{}
	}
	utils.JSON(w, http.StatusOK, forms)
}

// GetForm retrieves one form by ID
func (h *InspectionFormHandler) GetForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	form, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, form)
}

// GetFormByDocumentNo retrieves one form by document number
func (h *InspectionFormHandler) GetFormByDocumentNo(w http.ResponseWriter, r *http.Request) {
	docNo := mux.Vars(r)["documentNo"]

	form, err := h.Service.GetByDocumentNo(r.Context(), docNo)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, form)
}

// UpdateForm rewrites the editable fields of a DRAFT or REJECTED form
func (h *InspectionFormHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var form models.InspectionForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), id, &form)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cache.InvalidatePDFs(r.Context(), inspectionFormVariant, id)
	utils.JSON(w, http.StatusOK, updated)
}

// DeleteForm removes a DRAFT or REJECTED form
func (h *InspectionFormHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	cache.InvalidatePDFs(r.Context(), inspectionFormVariant, id)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// SubmitForm moves a form to SUBMITTED
func (h *InspectionFormHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "submit", func(ctx context.Context, id int64, req transitionRequest) (*models.InspectionForm, error) {
		return h.Service.Submit(ctx, id, req.SubmittedBy)
	})
}

// ApproveForm moves a form to APPROVED and archives its PDF
func (h *InspectionFormHandler) ApproveForm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", func(ctx context.Context, id int64, req transitionRequest) (*models.InspectionForm, error) {
		form, err := h.Service.Approve(ctx, id, req.ReviewedBy, req.Comments)
		if err != nil {
			return nil, err
		}
		go h.archiveApproved(form)
		return form, nil
	})
}

// RejectForm moves a form to REJECTED
func (h *InspectionFormHandler) RejectForm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", func(ctx context.Context, id int64, req transitionRequest) (*models.InspectionForm, error) {
		return h.Service.Reject(ctx, id, req.ReviewedBy, req.Comments)
	})
}

func (h *InspectionFormHandler) transition(w http.ResponseWriter, r *http.Request, event string, apply func(context.Context, int64, transitionRequest) (*models.InspectionForm, error)) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	form, err := apply(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.ReportTransitions.WithLabelValues(inspectionFormVariant, event).Inc()
	cache.InvalidatePDFs(r.Context(), inspectionFormVariant, id)
	utils.JSON(w, http.StatusOK, form)
}

// archiveApproved renders and uploads the signed-off PDF in the background.
func (h *InspectionFormHandler) archiveApproved(form *models.InspectionForm) {
	data, err := pdf.RenderInspectionForm(form)
	if err != nil {
		log.Printf("[InspectionForm] archive render failed for %s: %v", form.DocumentNo, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.Uploader.UploadPDF(ctx, inspectionFormVariant, form.DocumentNo, data); err != nil {
		log.Printf("[InspectionForm] %v", err)
	}
}

// renderPDF returns the form's PDF, from cache when the revision is unchanged.
func (h *InspectionFormHandler) renderPDF(ctx context.Context, form *models.InspectionForm) ([]byte, error) {
	key := cache.PDFKey(inspectionFormVariant, form.ID, form.UpdatedAt)
	if data, ok := cache.GetCachedPDF(ctx, key); ok {
		metrics.PDFRendered.WithLabelValues(inspectionFormVariant, "hit").Inc()
		return data, nil
	}

	data, err := pdf.RenderInspectionForm(form)
	if err != nil {
		return nil, err
	}
	cache.CachePDF(ctx, key, data)
	metrics.PDFRendered.WithLabelValues(inspectionFormVariant, "miss").Inc()
	return data, nil
}

// DownloadPDF streams the form's rendered PDF
func (h *InspectionFormHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	form, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := h.renderPDF(r.Context(), form)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	if by := r.URL.Query().Get("downloaded_by"); by != "" {
		h.Service.LogPDFDownload(r.Context(), id, by)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, form.DocumentNo))
	w.Write(data)
}

// EmailPDF mails the form's rendered PDF as an attachment
func (h *InspectionFormHandler) EmailPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.To == "" {
		utils.Error(w, http.StatusBadRequest, "recipient address is required")
		return
	}

	form, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := h.renderPDF(r.Context(), form)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	subject := fmt.Sprintf("%s - %s", form.Title, form.DocumentNo)
	body := fmt.Sprintf("Please find attached the report %s.", form.DocumentNo)
	if err := h.Sender.SendPDF(req.To, subject, body, form.DocumentNo+".pdf", data); err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "email sent to " + req.To})
}
