package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inspection-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InspectionFormRepository struct {
	DB *pgxpool.Pool
}

func NewInspectionFormRepository(db *pgxpool.Pool) *InspectionFormRepository {
	return &InspectionFormRepository{DB: db}
}

// InspectionFormFilter narrows List results. Zero values mean "no filter".
type InspectionFormFilter struct {
	Status      models.Status
	FormType    models.FormType
	Product     string
	Variant     string
	LineNo      string
	McNo        string
	SubmittedBy string
	ReviewedBy  string
	DateFrom    *time.Time // inclusive, on inspection_date
	DateTo      *time.Time // inclusive, on inspection_date
}

const inspectionFormColumns = `
	id, document_no, revision, effective_date, reviewed_on, page,
	prepared_by, approved_by, issued, scope, title, unit,
	inspection_date, product, size_no, shift, variant, line_no,
	customer, sample_size, mc_no, table_data, characteristics,
	qa_executive, qa_signature, production_operator, operator_signature,
	final_approval_time, form_type,
	status, submitted_by, submitted_at, reviewed_by, reviewed_at, comments,
	created_at, updated_at`

func scanInspectionForm(row pgx.Row) (*models.InspectionForm, error) {
	f := &models.InspectionForm{}
	err := row.Scan(
		&f.ID, &f.DocumentNo, &f.Revision, &f.EffectiveDate, &f.ReviewedOn, &f.Page,
		&f.PreparedBy, &f.ApprovedBy, &f.Issued, &f.Scope, &f.Title, &f.Unit,
		&f.InspectionDate, &f.Product, &f.SizeNo, &f.Shift, &f.Variant, &f.LineNo,
		&f.Customer, &f.SampleSize, &f.McNo, &f.TableData, &f.Characteristics,
		&f.QAExecutive, &f.QASignature, &f.ProductionOperator, &f.OperatorSignature,
		&f.FinalApprovalTime, &f.FormType,
		&f.Status, &f.SubmittedBy, &f.SubmittedAt, &f.ReviewedBy, &f.ReviewedAt, &f.Comments,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Create inserts a new form. The caller has already allocated the document
// number; a unique-constraint collision is surfaced unwrapped so the service
// layer can detect it with IsUniqueViolation and retry.
func (r *InspectionFormRepository) Create(ctx context.Context, f *models.InspectionForm) error {
	query := `
		INSERT INTO inspection_forms (
			document_no, revision, effective_date, reviewed_on, page,
			prepared_by, approved_by, issued, scope, title, unit,
			inspection_date, product, size_no, shift, variant, line_no,
			customer, sample_size, mc_no, table_data, characteristics,
			qa_executive, qa_signature, production_operator, operator_signature,
			final_approval_time, form_type,
			status, submitted_by, submitted_at, reviewed_by, reviewed_at, comments
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34
		)
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRow(ctx, query,
		f.DocumentNo, f.Revision, f.EffectiveDate, f.ReviewedOn, f.Page,
		f.PreparedBy, f.ApprovedBy, f.Issued, f.Scope, f.Title, f.Unit,
		f.InspectionDate, f.Product, f.SizeNo, f.Shift, f.Variant, f.LineNo,
		f.Customer, f.SampleSize, f.McNo, f.TableData, f.Characteristics,
		f.QAExecutive, f.QASignature, f.ProductionOperator, f.OperatorSignature,
		f.FinalApprovalTime, f.FormType,
		f.Status, f.SubmittedBy, f.SubmittedAt, f.ReviewedBy, f.ReviewedAt, f.Comments,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// Get retrieves a form by ID.
func (r *InspectionFormRepository) Get(ctx context.Context, id int64) (*models.InspectionForm, error) {
	query := `SELECT` + inspectionFormColumns + ` FROM inspection_forms WHERE id = $1`
	return scanInspectionForm(r.DB.QueryRow(ctx, query, id))
}

// GetByDocumentNo retrieves a form by its document number.
func (r *InspectionFormRepository) GetByDocumentNo(ctx context.Context, docNo string) (*models.InspectionForm, error) {
	query := `SELECT` + inspectionFormColumns + ` FROM inspection_forms WHERE document_no = $1`
	return scanInspectionForm(r.DB.QueryRow(ctx, query, docNo))
}

// List retrieves forms matching the filter, newest first.
func (r *InspectionFormRepository) List(ctx context.Context, filter InspectionFormFilter) ([]*models.InspectionForm, error) {
	query := `SELECT` + inspectionFormColumns + ` FROM inspection_forms WHERE 1=1`
	args := []interface{}{}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		query += fmt.Sprintf(" AND %s = $%d", cond, len(args))
	}

	if filter.Status != "" {
		add("status", string(filter.Status))
	}
	if filter.FormType != "" {
		add("form_type", string(filter.FormType))
	}
	if filter.Product != "" {
		add("product", filter.Product)
	}
	if filter.Variant != "" {
		add("variant", filter.Variant)
	}
	if filter.LineNo != "" {
		add("line_no", filter.LineNo)
	}
	if filter.McNo != "" {
		add("mc_no", filter.McNo)
	}
	if filter.SubmittedBy != "" {
		add("submitted_by", filter.SubmittedBy)
	}
	if filter.ReviewedBy != "" {
		add("reviewed_by", filter.ReviewedBy)
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND inspection_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND inspection_date <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var forms []*models.InspectionForm
	for rows.Next() {
		f, err := scanInspectionForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// Update rewrites the business and header fields of a form. Document number,
// status and the workflow stamps are deliberately not touched here; those
// change only through allocation and the lifecycle transitions.
func (r *InspectionFormRepository) Update(ctx context.Context, f *models.InspectionForm) error {
	query := `
		UPDATE inspection_forms
		SET revision = $1, effective_date = $2, reviewed_on = $3, page = $4,
		    prepared_by = $5, approved_by = $6, issued = $7, scope = $8,
		    title = $9, unit = $10,
		    inspection_date = $11, product = $12, size_no = $13, shift = $14,
		    variant = $15, line_no = $16, customer = $17, sample_size = $18,
		    mc_no = $19, table_data = $20, characteristics = $21,
		    qa_executive = $22, qa_signature = $23, production_operator = $24,
		    operator_signature = $25, final_approval_time = $26,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $27
		RETURNING updated_at
	`

	err := r.DB.QueryRow(ctx, query,
		f.Revision, f.EffectiveDate, f.ReviewedOn, f.Page,
		f.PreparedBy, f.ApprovedBy, f.Issued, f.Scope, f.Title, f.Unit,
		f.InspectionDate, f.Product, f.SizeNo, f.Shift, f.Variant, f.LineNo,
		f.Customer, f.SampleSize, f.McNo, f.TableData, f.Characteristics,
		f.QAExecutive, f.QASignature, f.ProductionOperator, f.OperatorSignature,
		f.FinalApprovalTime, f.ID,
	).Scan(&f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// UpdateWorkflow applies a lifecycle transition with a compare-and-set on the
// current status. It returns false when no row matched, which means either
// the form is gone or a concurrent transition won; the caller re-reads to
// tell the two apart.
func (r *InspectionFormRepository) UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error) {
	query := `
		UPDATE inspection_forms
		SET status = $1, submitted_by = $2, submitted_at = $3,
		    reviewed_by = $4, reviewed_at = $5, comments = $6,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $7 AND status = $8
	`

	tag, err := r.DB.Exec(ctx, query,
		w.Status, w.SubmittedBy, w.SubmittedAt, w.ReviewedBy, w.ReviewedAt, w.Comments,
		id, from,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a form by ID. The service layer enforces the status guard.
func (r *InspectionFormRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM inspection_forms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DocumentNumbersByPrefix lists the document numbers already allocated under
// a "<PREFIX>-<PERIOD>-" scan prefix, for the sequence allocator.
func (r *InspectionFormRepository) DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT document_no FROM inspection_forms WHERE document_no LIKE $1 || '%'`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var docNo string
		if err := rows.Scan(&docNo); err != nil {
			return nil, err
		}
		numbers = append(numbers, docNo)
	}
	return numbers, rows.Err()
}
