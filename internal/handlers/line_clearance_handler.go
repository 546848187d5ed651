package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"inspection-backend/internal/archive"
	"inspection-backend/internal/cache"
	"inspection-backend/internal/email"
	"inspection-backend/internal/metrics"
	"inspection-backend/internal/models"
	"inspection-backend/internal/pdf"
	"inspection-backend/internal/repositories"
	"inspection-backend/internal/services"
	"inspection-backend/pkg/utils"

	"github.com/gorilla/mux"
)

const lineClearanceVariant = "line-clearance"

type LineClearanceHandler struct {
	Service  *services.LineClearanceService
	Sender   *email.Sender
	Uploader *archive.Uploader
}

func NewLineClearanceHandler(service *services.LineClearanceService, sender *email.Sender, uploader *archive.Uploader) *LineClearanceHandler {
	return &LineClearanceHandler{Service: service, Sender: sender, Uploader: uploader}
}

// CreateReport creates a line clearance report in DRAFT
func (h *LineClearanceHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var rep models.LineClearanceReport
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.Create(r.Context(), &rep)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.ReportsCreated.WithLabelValues(lineClearanceVariant).Inc()
	utils.JSON(w, http.StatusCreated, created)
}

// ListReports lists line clearance reports filtered by query parameters
func (h *LineClearanceHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.LineClearanceFilter{
		Status:         models.Status(q.Get("status")),
		ProductionArea: models.ProductionArea(q.Get("production_area")),
		Line:           q.Get("line"),
		ProductName:    q.Get("product_name"),
		SubmittedBy:    q.Get("submitted_by"),
		ReviewedBy:     q.Get("reviewed_by"),
		DateFrom:       parseDateParam(r, "from"),
		DateTo:         parseDateParam(r, "to"),
	}

	reports, err := h.Service.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if reports == nil {
		reports = []*models.LineClearanceReport{}
	}
	utils.JSON(w, http.StatusOK, reports)
}

// GetReport retrieves one report by ID
func (h *LineClearanceHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	rep, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rep)
}

// GetReportByDocumentNo retrieves one report by document number
func (h *LineClearanceHandler) GetReportByDocumentNo(w http.ResponseWriter, r *http.Request) {
	docNo := mux.Vars(r)["documentNo"]

	rep, err := h.Service.GetByDocumentNo(r.Context(), docNo)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, rep)
}

// UpdateReport rewrites the editable fields of a DRAFT or REJECTED report
func (h *LineClearanceHandler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var rep models.LineClearanceReport
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.Update(r.Context(), id, &rep)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	cache.InvalidatePDFs(r.Context(), lineClearanceVariant, id)
	utils.JSON(w, http.StatusOK, updated)
}

// DeleteReport removes a DRAFT or REJECTED report
func (h *LineClearanceHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}

	cache.InvalidatePDFs(r.Context(), lineClearanceVariant, id)
	utils.JSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// SubmitReport moves a report to SUBMITTED
func (h *LineClearanceHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "submit", func(ctx context.Context, id int64, req transitionRequest) (*models.LineClearanceReport, error) {
		return h.Service.Submit(ctx, id, req.SubmittedBy)
	})
}

// ApproveReport moves a report to APPROVED and archives its PDF
func (h *LineClearanceHandler) ApproveReport(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "approve", func(ctx context.Context, id int64, req transitionRequest) (*models.LineClearanceReport, error) {
		rep, err := h.Service.Approve(ctx, id, req.ReviewedBy, req.Comments)
		if err != nil {
			return nil, err
		}
		go h.archiveApproved(rep)
		return rep, nil
	})
}

// RejectReport moves a report to REJECTED
func (h *LineClearanceHandler) RejectReport(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject", func(ctx context.Context, id int64, req transitionRequest) (*models.LineClearanceReport, error) {
		return h.Service.Reject(ctx, id, req.ReviewedBy, req.Comments)
	})
}

func (h *LineClearanceHandler) transition(w http.ResponseWriter, r *http.Request, event string, apply func(context.Context, int64, transitionRequest) (*models.LineClearanceReport, error)) {
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

	rep, err := apply(r.Context(), id, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	metrics.ReportTransitions.WithLabelValues(lineClearanceVariant, event).Inc()
	cache.InvalidatePDFs(r.Context(), lineClearanceVariant, id)
	utils.JSON(w, http.StatusOK, rep)
}

func (h *LineClearanceHandler) archiveApproved(rep *models.LineClearanceReport) {
	data, err := pdf.RenderLineClearance(rep)
	if err != nil {
		log.Printf("[LineClearance] archive render failed for %s: %v", rep.DocumentNo, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.Uploader.UploadPDF(ctx, lineClearanceVariant, rep.DocumentNo, data); err != nil {
		log.Printf("[LineClearance] %v", err)
	}
}

func (h *LineClearanceHandler) renderPDF(ctx context.Context, rep *models.LineClearanceReport) ([]byte, error) {
	key := cache.PDFKey(lineClearanceVariant, rep.ID, rep.UpdatedAt)
	if data, ok := cache.GetCachedPDF(ctx, key); ok {
		metrics.PDFRendered.WithLabelValues(lineClearanceVariant, "hit").Inc()
		return data, nil
	}

	data, err := pdf.RenderLineClearance(rep)
	if err != nil {
		return nil, err
	}
	cache.CachePDF(ctx, key, data)
	metrics.PDFRendered.WithLabelValues(lineClearanceVariant, "miss").Inc()
	return data, nil
}

// DownloadPDF streams the report's rendered PDF
func (h *LineClearanceHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	rep, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := h.renderPDF(r.Context(), rep)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	if by := r.URL.Query().Get("downloaded_by"); by != "" {
		h.Service.LogPDFDownload(r.Context(), id, by)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, rep.DocumentNo))
	w.Write(data)
}

// EmailPDF mails the report's rendered PDF as an attachment
func (h *LineClearanceHandler) EmailPDF(w http.ResponseWriter, r *http.Request) {
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

	rep, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := h.renderPDF(r.Context(), rep)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, "failed to render PDF")
		return
	}

	subject := fmt.Sprintf("%s - %s", rep.Title, rep.DocumentNo)
	body := fmt.Sprintf("Please find attached the report %s.", rep.DocumentNo)
	if err := h.Sender.SendPDF(req.To, subject, body, rep.DocumentNo+".pdf", data); err != nil {
		utils.Error(w, http.StatusBadGateway, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "email sent to " + req.To})
}
