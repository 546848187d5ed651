// Package seed loads a small set of sample reports into an empty database,
// for demos and local development. It is a no-op when any reports exist.
package seed

import (
	"context"
	"log"

	"inspection-backend/internal/models"
	"inspection-backend/internal/repositories"
	"inspection-backend/internal/services"
)

func Run(
	ctx context.Context,
	forms *services.InspectionFormService,
	iqc *services.IncomingQualityService,
	lcr *services.LineClearanceService,
) {
	existing, err := forms.List(ctx, repositories.InspectionFormFilter{})
	if err != nil || len(existing) > 0 {
		return
	}

	log.Println("[Seed] Empty database, loading sample reports...")

	coating := &models.InspectionForm{
		Product:  "100ml Amber Bottle",
		SizeNo:   "R-001",
		Shift:    "B",
		Variant:  "Blue Matt",
		LineNo:   "02",
		Customer: "Ratna",
		FormType: models.FormTypeCoating,
		TableData: []models.PayloadRow{
			{"lacquerType": "Base Coat", "batchNo": "2303012", "quantity": "11.0 kg"},
			{"lacquerType": "Hardener", "batchNo": "H-114", "quantity": "550 gm"},
		},
		Characteristics: []models.PayloadRow{
			{"name": "Colour Shade", "observation": "OK"},
			{"name": "Coating Thickness", "observation": "20 micron"},
		},
	}
	if _, err := forms.Create(ctx, coating); err != nil {
		log.Printf("[Seed] coating form: %v", err)
	}

	printing := &models.InspectionForm{
		Product:  "100ml Amber Bottle",
		SizeNo:   "R-001",
		Shift:    "C",
		Variant:  "Gold Print",
		LineNo:   "03",
		McNo:     "MC-07",
		Customer: "Ratna",
		FormType: models.FormTypePrinting,
		TableData: []models.PayloadRow{
			{"inkType": "Gold", "batchNo": "G-2211", "quantity": "2.5 kg"},
		},
	}
	if _, err := forms.Create(ctx, printing); err != nil {
		log.Printf("[Seed] printing form: %v", err)
	}

	quantity := 5000
	audited := 250
	iqcReport := &models.IncomingQualityReport{
		Shift:                   "A",
		ProductVariantName:      "100ml Amber Bottle",
		ProductReceivedFrom:     "Glass Plant 2",
		SupplierShift:           "C",
		ProductReceivedQuantity: &quantity,
		QuantityAudited:         &audited,
		BatchNumber:             "B-2305-114",
		QualityDecision:         models.QualityDecisionPass,
		AuditResults: []models.PayloadRow{
			{"category": "CRITICAL", "count": 0, "defectName": ""},
			{"category": "MAJOR A", "count": 2, "defectName": "Neck crack"},
		},
	}
	if _, err := iqc.Create(ctx, iqcReport); err != nil {
		log.Printf("[Seed] IQC report: %v", err)
	}

	lcrReport := &models.LineClearanceReport{
		Shift:               "B",
		Line:                "Line 2",
		ProductName:         "100ml Amber Bottle",
		ExistingVariantName: "Blue Matt",
		NewVariantName:      "Rose Gold",
		ProductionArea:      models.AreaCoating,
		CheckPoints: []models.PayloadRow{
			{"checkPoint": "No residual lacquer in the system", "status": "OK"},
			{"checkPoint": "Previous variant bottles removed from conveyor", "status": "OK"},
		},
	}
	if _, err := lcr.Create(ctx, lcrReport); err != nil {
		log.Printf("[Seed] line clearance report: %v", err)
	}

	log.Println("[Seed] Sample reports loaded")
}
