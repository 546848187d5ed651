package services

import (
	"time"

	"inspection-backend/internal/models"
)

// defaultUnit is printed on every report header. The spelling matches the
// stationery the plant already uses.
const defaultUnit = "AGI Speciality Glas Division"

const (
	coatingScope  = "AGI / DEC / COATING"
	coatingTitle  = "FIRST ARTICLE INSPECTION REPORT - COATING"
	printingScope = "AGI / DEC / PRINTING"
	printingTitle = "FIRST ARTICLE INSPECTION REPORT - PRINTING"

	incomingQualityScope = "AGI / DEC / IQC"
	incomingQualityTitle = "INCOMING QUALITY INSPECTION REPORT"

	lineClearanceScope = "AGI / DEC / LINE CLEARANCE"
	lineClearanceTitle = "LINE CLEARANCE REPORT"
)

// applyHeaderDefaults fills the fixed header fields a client usually leaves
// blank. Values the client did supply are kept.
func applyHeaderDefaults(h *models.Header, scope, title string, now time.Time) {
	if h.Revision == "" {
		h.Revision = "00"
	}
	if h.EffectiveDate == nil {
		d := now
		h.EffectiveDate = &d
	}
	if h.Scope == "" {
		h.Scope = scope
	}
	if h.Title == "" {
		h.Title = title
	}
	if h.Unit == "" {
		h.Unit = defaultUnit
	}
}
