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

type LineClearanceRepository struct {
	DB *pgxpool.Pool
}

func NewLineClearanceRepository(db *pgxpool.Pool) *LineClearanceRepository {
	return &LineClearanceRepository{DB: db}
}

// LineClearanceFilter narrows List results. Zero values mean "no filter".
type LineClearanceFilter struct {
	Status         models.Status
	ProductionArea models.ProductionArea
	Line           string
	ProductName    string
	SubmittedBy    string
	ReviewedBy     string
	DateFrom       *time.Time // inclusive, on report_date
	DateTo         *time.Time // inclusive, on report_date
}

const lineClearanceColumns = `
	id, document_no, revision, effective_date, reviewed_on, page,
	prepared_by, approved_by, issued, scope, title, unit,
	report_date, shift, line, product_name,
	existing_variant_name, existing_variant_description,
	new_variant_name, new_variant_description,
	existing_variant_stop_time, new_variant_start_time,
	check_points,
	responsible_name, responsible_signature,
	production_name, production_signature,
	quality_name, quality_signature,
	production_area,
	status, submitted_by, submitted_at, reviewed_by, reviewed_at, comments,
	created_at, updated_at`

func scanLineClearance(row pgx.Row) (*models.LineClearanceReport, error) {
	rep := &models.LineClearanceReport{}
	err := row.Scan(
		&rep.ID, &rep.DocumentNo, &rep.Revision, &rep.EffectiveDate, &rep.ReviewedOn, &rep.Page,
		&rep.PreparedBy, &rep.ApprovedBy, &rep.Issued, &rep.Scope, &rep.Title, &rep.Unit,
		&rep.ReportDate, &rep.Shift, &rep.Line, &rep.ProductName,
		&rep.ExistingVariantName, &rep.ExistingVariantDescription,
		&rep.NewVariantName, &rep.NewVariantDescription,
		&rep.ExistingVariantStopTime, &rep.NewVariantStartTime,
		&rep.CheckPoints,
		&rep.ResponsibleName, &rep.ResponsibleSignature,
		&rep.ProductionName, &rep.ProductionSignature,
		&rep.QualityName, &rep.QualitySignature,
		&rep.ProductionArea,
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
func (r *LineClearanceRepository) Create(ctx context.Context, rep *models.LineClearanceReport) error {
	query := `
		INSERT INTO line_clearance_reports (
			document_no, revision, effective_date, reviewed_on, page,
			prepared_by, approved_by, issued, scope, title, unit,
			report_date, shift, line, product_name,
			existing_variant_name, existing_variant_description,
			new_variant_name, new_variant_description,
			existing_variant_stop_time, new_variant_start_time,
			check_points,
			responsible_name, responsible_signature,
			production_name, production_signature,
			quality_name, quality_signature,
			production_area,
			status, submitted_by, submitted_at, reviewed_by, reviewed_at, comments
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34, $35
		)
		RETURNING id, created_at, updated_at
	`

	return r.DB.QueryRow(ctx, query,
		rep.DocumentNo, rep.Revision, rep.EffectiveDate, rep.ReviewedOn, rep.Page,
		rep.PreparedBy, rep.ApprovedBy, rep.Issued, rep.Scope, rep.Title, rep.Unit,
		rep.ReportDate, rep.Shift, rep.Line, rep.ProductName,
		rep.ExistingVariantName, rep.ExistingVariantDescription,
		rep.NewVariantName, rep.NewVariantDescription,
		rep.ExistingVariantStopTime, rep.NewVariantStartTime,
		rep.CheckPoints,
		rep.ResponsibleName, rep.ResponsibleSignature,
		rep.ProductionName, rep.ProductionSignature,
		rep.QualityName, rep.QualitySignature,
		rep.ProductionArea,
		rep.Status, rep.SubmittedBy, rep.SubmittedAt, rep.ReviewedBy, rep.ReviewedAt, rep.Comments,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)
}

// Get retrieves a report by ID.
func (r *LineClearanceRepository) Get(ctx context.Context, id int64) (*models.LineClearanceReport, error) {
	query := `SELECT` + lineClearanceColumns + ` FROM line_clearance_reports WHERE id = $1`
	return scanLineClearance(r.DB.QueryRow(ctx, query, id))
}

// GetByDocumentNo retrieves a report by its document number.
func (r *LineClearanceRepository) GetByDocumentNo(ctx context.Context, docNo string) (*models.LineClearanceReport, error) {
	query := `SELECT` + lineClearanceColumns + ` FROM line_clearance_reports WHERE document_no = $1`
	return scanLineClearance(r.DB.QueryRow(ctx, query, docNo))
}

// List retrieves reports matching the filter, newest first.
func (r *LineClearanceRepository) List(ctx context.Context, filter LineClearanceFilter) ([]*models.LineClearanceReport, error) {
	query := `SELECT` + lineClearanceColumns + ` FROM line_clearance_reports WHERE 1=1`
	args := []interface{}{}

	add := func(cond string, val interface{}) {
		args = append(args, val)
		query += fmt.Sprintf(" AND %s = $%d", cond, len(args))
	}

	if filter.Status != "" {
		add("status", string(filter.Status))
	}
	if filter.ProductionArea != "" {
		add("production_area", string(filter.ProductionArea))
	}
	if filter.Line != "" {
		add("line", filter.Line)
	}
	if filter.ProductName != "" {
		add("product_name", filter.ProductName)
	}
	if filter.SubmittedBy != "" {
		add("submitted_by", filter.SubmittedBy)
	}
	if filter.ReviewedBy != "" {
		add("reviewed_by", filter.ReviewedBy)
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		query += fmt.Sprintf(" AND report_date >= $%d", len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		query += fmt.Sprintf(" AND report_date <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*models.LineClearanceReport
	for rows.Next() {
		rep, err := scanLineClearance(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Update rewrites the business and header fields. Document number, status and
// workflow stamps change only through allocation and lifecycle transitions.
func (r *LineClearanceRepository) Update(ctx context.Context, rep *models.LineClearanceReport) error {
	query := `
		UPDATE line_clearance_reports
		SET revision = $1, effective_date = $2, reviewed_on = $3, page = $4,
		    prepared_by = $5, approved_by = $6, issued = $7, scope = $8,
		    title = $9, unit = $10,
		    report_date = $11, shift = $12, line = $13, product_name = $14,
		    existing_variant_name = $15, existing_variant_description = $16,
		    new_variant_name = $17, new_variant_description = $18,
		    existing_variant_stop_time = $19, new_variant_start_time = $20,
		    check_points = $21,
		    responsible_name = $22, responsible_signature = $23,
		    production_name = $24, production_signature = $25,
		    quality_name = $26, quality_signature = $27,
		    production_area = $28,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $29
		RETURNING updated_at
	`

	err := r.DB.QueryRow(ctx, query,
		rep.Revision, rep.EffectiveDate, rep.ReviewedOn, rep.Page,
		rep.PreparedBy, rep.ApprovedBy, rep.Issued, rep.Scope, rep.Title, rep.Unit,
		rep.ReportDate, rep.Shift, rep.Line, rep.ProductName,
		rep.ExistingVariantName, rep.ExistingVariantDescription,
		rep.NewVariantName, rep.NewVariantDescription,
		rep.ExistingVariantStopTime, rep.NewVariantStartTime,
		rep.CheckPoints,
		rep.ResponsibleName, rep.ResponsibleSignature,
		rep.ProductionName, rep.ProductionSignature,
		rep.QualityName, rep.QualitySignature,
		rep.ProductionArea,
		rep.ID,
	).Scan(&rep.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.ErrNotFound
	}
	return err
}

// UpdateWorkflow applies a lifecycle transition with a compare-and-set on the
// current status; false means no row matched.
func (r *LineClearanceRepository) UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error) {
	query := `
		UPDATE line_clearance_reports
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
func (r *LineClearanceRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM line_clearance_reports WHERE id = $1`, id)
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
func (r *LineClearanceRepository) DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT document_no FROM line_clearance_reports WHERE document_no LIKE $1 || '%'`, prefix)
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
