package models

import "time"

// ProductionArea is the section of the line a clearance covers.
type ProductionArea string

const (
	AreaCoating  ProductionArea = "COATING"
	AreaPrinting ProductionArea = "PRINTING"
	AreaBoth     ProductionArea = "BOTH"
)

// Valid reports whether a is a known production area.
func (a ProductionArea) Valid() bool {
	return a == AreaCoating || a == AreaPrinting || a == AreaBoth
}

// LineClearanceReport records the variant changeover checks on a line.
type LineClearanceReport struct {
	ID int64 `json:"id"`
	Header
	Workflow

	ReportDate *time.Time `json:"report_date"`
	Shift      string     `json:"shift"`
	Line       string     `json:"line"`

	ProductName                string `json:"product_name"`
	ExistingVariantName        string `json:"existing_variant_name"`
	ExistingVariantDescription string `json:"existing_variant_description"`
	NewVariantName             string `json:"new_variant_name"`
	NewVariantDescription      string `json:"new_variant_description"`

	ExistingVariantStopTime *time.Time `json:"existing_variant_stop_time"`
	NewVariantStartTime     *time.Time `json:"new_variant_start_time"`

	// Rows like {"checkPoint": "No residual ink on line", "status": "OK"}.
	CheckPoints []PayloadRow `json:"check_points"`

	ResponsibleName      string `json:"responsible_name"`
	ResponsibleSignature string `json:"responsible_signature"`
	ProductionName       string `json:"production_name"`
	ProductionSignature  string `json:"production_signature"`
	QualityName          string `json:"quality_name"`
	QualitySignature     string `json:"quality_signature"`

	ProductionArea ProductionArea `json:"production_area"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *LineClearanceReport) GetHeader() *Header     { return &r.Header }
func (r *LineClearanceReport) GetWorkflow() *Workflow { return &r.Workflow }
