package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-backend/internal/models"
)

func header(docNo string) models.Header {
	effective := time.Date(2025, time.May, 14, 0, 0, 0, 0, time.UTC)
	return models.Header{
		DocumentNo:    docNo,
		Revision:      "00",
		EffectiveDate: &effective,
		Scope:         "AGI / DEC / COATING",
		Title:         "FIRST ARTICLE INSPECTION REPORT - COATING",
		Unit:          "AGI Speciality Glas Division",
	}
}

func TestRenderInspectionForm(t *testing.T) {
	f := &models.InspectionForm{
		Header:   header("AGI-FAIRC-25-01"),
		Workflow: models.Workflow{Status: models.StatusDraft},
		Product:  "100ml Amber Bottle",
		FormType: models.FormTypeCoating,
		TableData: []models.PayloadRow{
			{"lacquerType": "Base Coat", "batchNo": "2303012", "quantity": 11.0},
		},
	}

	data, err := RenderInspectionForm(f)
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderIncomingQuality(t *testing.T) {
	rep := &models.IncomingQualityReport{
		Header:          header("AGI-IQC-25-01"),
		Workflow:        models.Workflow{Status: models.StatusApproved},
		QualityDecision: models.QualityDecisionPass,
	}

	data, err := RenderIncomingQuality(rep)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderLineClearanceEmptyPayload(t *testing.T) {
	rep := &models.LineClearanceReport{
		Header:   header("AGI-LCR-MAY-001"),
		Workflow: models.Workflow{Status: models.StatusDraft},
	}

	// no check point rows must still render a valid document
	data, err := RenderLineClearance(rep)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}
