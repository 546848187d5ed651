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

type IncomingQualityRepository struct {
	DB *pgxpool.Pool
}

func NewIncomingQualityRepository(db *pgxpool.Pool) *IncomingQualityRepository {
	return &IncomingQualityRepository{DB: db}
}

// IncomingQualityFilter narrows List results. Zero values mean "no filter".
type IncomingQualityFilter struct {
	Status              models.Status
	ProductVariantName  string
	ProductReceivedFrom string
	BatchNumber         string
	QualityDecision     string
	ProductReceivedDate *time.Time
	SubmittedBy         string
	ReviewedBy          string
	DateFrom            *time.Time // inclusive, on iqc_date
	DateTo              *time.Time // inclusive, on iqc_date
}

const incomingQualityColumns = `
	id, document_no, revision, effective_date, reviewed_on, page,
	prepared_by, approved_by, issued, scope, title, unit,
	iqc_date, shift, product_variant_name, product_received_from,
	supplier_shift, product_received_date, product_received_quantity,
	quantity_audited, batch_number, audit_results, test_results,
	quality_decision, quality_manager_name, quality_manager_signature,
	signature_date,
	status, submitted_by, submitted_at, reviewed_by, reviewed_at, comments,
	created_at, updated_at`

func scanIncomingQuality(row pgx.Row) (*models.IncomingQualityReport, error) {
	rep := &models.IncomingQualityReport{}
	err := row.Scan(
		&rep.ID, &rep.DocumentNo, &rep.Revision, &rep.EffectiveDate, &rep.ReviewedOn, &rep.Page,
		&rep.PreparedBy, &rep.ApprovedBy, &rep.Issued, &rep.Scope, &rep.Title, &rep.Unit,
		&rep.IQCDate, &rep.Shift, &rep.ProductVariantName, &rep.ProductReceivedFrom,
		&rep.SupplierShift, &rep.ProductReceivedDate, &rep.ProductReceivedQuantity,
		&rep.QuantityAudited, &rep.BatchNumber, &rep.AuditResults, &rep.TestResults,
		&rep.QualityDecision, &rep.QualityManagerName, &rep.QualityManagerSignature,
		&rep.SignatureDate,
		&rep.Status, &rep.SubmittedBy, &rep.SubmittedAt, &rep.ReviewedBy, &rep.ReviewedAt, &rep.Comments,
		&rep.CreatedAt, &rep.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return rep, nil
}

// Create inserts a new report. Unique-constraint collisions on document_no
// are surfaced unwrapped for IsUniqueViolation.
func (r *IncomingQualityRepository) Create(ctx context.Context, rep *models.IncomingQualityReport) error {
	query := `
		INSERT INTO incoming_quality_reports (
			document_no, revision, effective_date, reviewed_on, page,
			prepared_by, approved_by, issued, scope, title, unit,
			iqc_date, shift, product_variant_name, product_received_from,
			supplier_shift, product_received_date, product_received_quantity,
			quantity_audited, batch_number, audit_results, test_results,
			quality_decision, quality_manager_name, quality_manager_signature,
			signature_date,
			status, submitted_by, submitted_at, reviewed_by, reviewed_at, comments
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32
		)
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRow(ctx, query,
		rep.DocumentNo, rep.Revision, rep.EffectiveDate, rep.ReviewedOn, rep.Page,
		rep.PreparedBy, rep.ApprovedBy, rep.Issued, rep.Scope, rep.Title, rep.Unit,
		rep.IQCDate, rep.Shift, rep.ProductVariantName, rep.ProductReceivedFrom,
		rep.SupplierShift, rep.ProductReceivedDate, rep.ProductReceivedQuantity,
		rep.QuantityAudited, rep.BatchNumber, rep.AuditResults, rep.TestResults,
		rep.QualityDecision, rep.QualityManagerName, rep.QualityManagerSignature,
		rep.SignatureDate,
		rep.Status, rep.SubmittedBy, rep.SubmittedAt, rep.ReviewedBy, rep.ReviewedAt, rep.Comments,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
}

// Get retrieves a report by ID.
func (r *IncomingQualityRepository) Get(ctx context.Context, id int64) (*models.IncomingQualityReport, error) {
	query := `SELECT` + incomingQualityColumns + ` FROM incoming_quality_reports WHERE id = $1`
	return scanIncomingQuality(r.DB.QueryRow(ctx, query, id))
}

// GetByDocumentNo retrieves a report by its document number.
func (r *IncomingQualityRepository) GetByDocumentNo(ctx context.Context, docNo string) (*models.IncomingQualityReport, error) {
	query := `SELECT` + incomingQualityColumns + ` FROM incoming_quality_reports WHERE document_no = $1`
	return scanIncomingQuality(r.DB.QueryRow(ctx, query, docNo))
}

// List retrieves reports matching the filter, newest first.
func (r *IncomingQualityRepository) List(ctx context.Context, filter IncomingQualityFilter) ([]*models.IncomingQualityReport, error) {
	query := `SELECT` + incomingQualityColumns + ` FROM incoming_quality_reports WHERE 1=1`
	args := []interface{}{}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		query += fmt.Sprintf(" AND %s = $%d", cond, len(args))
	}

	if filter.Status != "" {
		add("status", string(filter.Status))
	}
	if filter.ProductVariantName != "" {
		add("product_variant_name", filter.ProductVariantName)
	}
	if filter.ProductReceivedFrom != "" {
		add("product_received_from", filter.ProductReceivedFrom)
	}
	if filter.BatchNumber != "" {
		add("batch_number", filter.BatchNumber)
	}
	if filter.QualityDecision != "" {
		add("quality_decision", filter.QualityDecision)
	}
	if filter.ProductReceivedDate != nil {
		add("product_received_date", *filter.ProductReceivedDate)
	}
	if filter.SubmittedBy != "" {
		add("submitted_by", filter.SubmittedBy)
	}
	if filter.ReviewedBy != "" {
		add("reviewed_by", filter.ReviewedBy)
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND iqc_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND iqc_date <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.IncomingQualityReport
	for rows.Next() {
		rep, err := scanIncomingQuality(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Update rewrites the business and header fields. Document number, status and
// workflow stamps change only through allocation and lifecycle transitions.
func (r *IncomingQualityRepository) Update(ctx context.Context, rep *models.IncomingQualityReport) error {
	query := `
		UPDATE incoming_quality_reports
		SET revision = $1, effective_date = $2, reviewed_on = $3, page = $4,
		    prepared_by = $5, approved_by = $6, issued = $7, scope = $8,
		    title = $9, unit = $10,
		    iqc_date = $11, shift = $12, product_variant_name = $13,
		    product_received_from = $14, supplier_shift = $15,
		    product_received_date = $16, product_received_quantity = $17,
		    quantity_audited = $18, batch_number = $19,
		    audit_results = $20, test_results = $21,
		    quality_decision = $22, quality_manager_name = $23,
		    quality_manager_signature = $24, signature_date = $25,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $26
		RETURNING updated_at
	`

	err := r.DB.QueryRow(ctx, query,
		rep.Revision, rep.EffectiveDate, rep.ReviewedOn, rep.Page,
		rep.PreparedBy, rep.ApprovedBy, rep.Issued, rep.Scope, rep.Title, rep.Unit,
		rep.IQCDate, rep.Shift, rep.ProductVariantName,
		rep.ProductReceivedFrom, rep.SupplierShift,
		rep.ProductReceivedDate, rep.ProductReceivedQuantity,
		rep.QuantityAudited, rep.BatchNumber,
		rep.AuditResults, rep.TestResults,
		rep.QualityDecision, rep.QualityManagerName,
		rep.QualityManagerSignature, rep.SignatureDate,
		rep.ID,
	).Scan(&rep.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// UpdateWorkflow applies a lifecycle transition with a compare-and-set on the
// current status; false means no row matched.
func (r *IncomingQualityRepository) UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error) {
	query := `
		UPDATE incoming_quality_reports
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

// Delete removes a report by ID. The service layer enforces the status guard.
func (r *IncomingQualityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM incoming_quality_reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// DocumentNumbersByPrefix lists document numbers under a scan prefix for the
// sequence allocator.
func (r *IncomingQualityRepository) DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT document_no FROM incoming_quality_reports WHERE document_no LIKE $1 || '%'`, prefix)
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
