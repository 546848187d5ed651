package models

import "time"

// FormType discriminates the two first-article inspection variants that
// share the inspection_forms table.
type FormType string

const (
	FormTypeCoating  FormType = "COATING"
	FormTypePrinting FormType = "PRINTING"
)

// Valid reports whether t is a known form type.
func (t FormType) Valid() bool {
	return t == FormTypeCoating || t == FormTypePrinting
}

// InspectionForm is a first article inspection report for the coating or
// printing line.
type InspectionForm struct {
	ID int64 `json:"id"`
	Header
	Workflow

	InspectionDate *time.Time `json:"inspection_date"`
	Product        string     `json:"product"`
	SizeNo         string     `json:"size_no"`
	Shift          string     `json:"shift"`
	Variant        string     `json:"variant"`
	LineNo         string     `json:"line_no"`
	Customer       string     `json:"customer"`
	SampleSize     string     `json:"sample_size"`
	McNo           string     `json:"mc_no"` // machine number, printing forms only

	// Lacquer or ink rows depending on form type.
	TableData       []PayloadRow `json:"table_data"`
	Characteristics []PayloadRow `json:"characteristics"`

	QAExecutive        string `json:"qa_executive"`
	QASignature        string `json:"qa_signature"`
	ProductionOperator string `json:"production_operator"`
	OperatorSignature  string `json:"operator_signature"`
	FinalApprovalTime  string `json:"final_approval_time"`

	FormType FormType `json:"form_type"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *InspectionForm) GetHeader() *Header     { return &f.Header }
func (f *InspectionForm) GetWorkflow() *Workflow { return &f.Workflow }
