package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inspection-backend/internal/handlers"
)

func NewRouter(
	inspectionFormHandler *handlers.InspectionFormHandler,
	incomingQualityHandler *handlers.IncomingQualityHandler,
	lineClearanceHandler *handlers.LineClearanceHandler,
	healthHandler *handlers.HealthHandler,
) *mux.Router {
	r := mux.NewRouter()

	// First article inspection forms (coating and printing)
	formsAPI := r.PathPrefix("/api/inspection-forms").Subrouter()
	formsAPI.HandleFunc("", inspectionFormHandler.ListForms).Methods("GET")
	formsAPI.HandleFunc("", inspectionFormHandler.CreateForm).Methods("POST")
	formsAPI.HandleFunc("/document/{documentNo}", inspectionFormHandler.GetFormByDocumentNo).Methods("GET")
	formsAPI.HandleFunc("/{id}", inspectionFormHandler.GetForm).Methods("GET")
	formsAPI.HandleFunc("/{id}", inspectionFormHandler.UpdateForm).Methods("PUT")
	formsAPI.HandleFunc("/{id}", inspectionFormHandler.DeleteForm).Methods("DELETE")
	formsAPI.HandleFunc("/{id}/submit", inspectionFormHandler.SubmitForm).Methods("POST")
	formsAPI.HandleFunc("/{id}/approve", inspectionFormHandler.ApproveForm).Methods("POST")
	formsAPI.HandleFunc("/{id}/reject", inspectionFormHandler.RejectForm).Methods("POST")
	formsAPI.HandleFunc("/{id}/pdf", inspectionFormHandler.DownloadPDF).Methods("GET")
	formsAPI.HandleFunc("/{id}/email-pdf", inspectionFormHandler.EmailPDF).Methods("POST")

	// Incoming quality (IQC) reports
	iqcAPI := r.PathPrefix("/api/incoming-quality-reports").Subrouter()
	iqcAPI.HandleFunc("", incomingQualityHandler.ListReports).Methods("GET")
	iqcAPI.HandleFunc("", incomingQualityHandler.CreateReport).Methods("POST")
	iqcAPI.HandleFunc("/document/{documentNo}", incomingQualityHandler.GetReportByDocumentNo).Methods("GET")
	iqcAPI.HandleFunc("/{id}", incomingQualityHandler.GetReport).Methods("GET")
	iqcAPI.HandleFunc("/{id}", incomingQualityHandler.UpdateReport).Methods("PUT")
	iqcAPI.HandleFunc("/{id}", incomingQualityHandler.DeleteReport).Methods("DELETE")
	iqcAPI.HandleFunc("/{id}/submit", incomingQualityHandler.SubmitReport).Methods("POST")
	iqcAPI.HandleFunc("/{id}/approve", incomingQualityHandler.ApproveReport).Methods("POST")
	iqcAPI.HandleFunc("/{id}/reject", incomingQualityHandler.RejectReport).Methods("POST")
	iqcAPI.HandleFunc("/{id}/pdf", incomingQualityHandler.DownloadPDF).Methods("GET")
	iqcAPI.HandleFunc("/{id}/email-pdf", incomingQualityHandler.EmailPDF).Methods("POST")

	// Line clearance reports
	lcrAPI := r.PathPrefix("/api/line-clearance-reports").Subrouter()
	lcrAPI.HandleFunc("", lineClearanceHandler.ListReports).Methods("GET")
	lcrAPI.HandleFunc("", lineClearanceHandler.CreateReport).Methods("POST")
	lcrAPI.HandleFunc("/document/{documentNo}", lineClearanceHandler.GetReportByDocumentNo).Methods("GET")
	lcrAPI.HandleFunc("/{id}", lineClearanceHandler.GetReport).Methods("GET")
	lcrAPI.HandleFunc("/{id}", lineClearanceHandler.UpdateReport).Methods("PUT")
	lcrAPI.HandleFunc("/{id}", lineClearanceHandler.DeleteReport).Methods("DELETE")
	lcrAPI.HandleFunc("/{id}/submit", lineClearanceHandler.SubmitReport).Methods("POST")
	lcrAPI.HandleFunc("/{id}/approve", lineClearanceHandler.ApproveReport).Methods("POST")
	lcrAPI.HandleFunc("/{id}/reject", lineClearanceHandler.RejectReport).Methods("POST")
	lcrAPI.HandleFunc("/{id}/pdf", lineClearanceHandler.DownloadPDF).Methods("GET")
	lcrAPI.HandleFunc("/{id}/email-pdf", lineClearanceHandler.EmailPDF).Methods("POST")

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
