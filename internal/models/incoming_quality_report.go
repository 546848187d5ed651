package models

import "time"

// Quality decisions recorded on an incoming quality inspection report.
const (
	QualityDecisionPass            = "PASS"
	QualityDecisionFail            = "FAIL"
	QualityDecisionConditionalPass = "CONDITIONAL_PASS"
)

// IncomingQualityReport is an incoming goods (IQC) inspection report.
type IncomingQualityReport struct {
	ID int64 `json:"id"`
	Header
	Workflow

	IQCDate *time.Time `json:"iqc_date"`
	Shift   string     `json:"shift"`

	ProductVariantName      string     `json:"product_variant_name"`
	ProductReceivedFrom     string     `json:"product_received_from"`
	SupplierShift           string     `json:"supplier_shift"`
	ProductReceivedDate     *time.Time `json:"product_received_date"`
	ProductReceivedQuantity *int       `json:"product_received_quantity"`
	QuantityAudited         *int       `json:"quantity_audited"`
	BatchNumber             string     `json:"batch_number"`

	// Rows like {"category": "CRITICAL", "count": 2, "defectName": "Neck crack"}.
	AuditResults []PayloadRow `json:"audit_results"`
	TestResults  []PayloadRow `json:"test_results"`

	QualityDecision string `json:"quality_decision"`

	QualityManagerName      string     `json:"quality_manager_name"`
	QualityManagerSignature string     `json:"quality_manager_signature"`
	SignatureDate           *time.Time `json:"signature_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *IncomingQualityReport) GetHeader() *Header     { return &r.Header }
func (r *IncomingQualityReport) GetWorkflow() *Workflow { return &r.Workflow }
