package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"inspection-backend/internal/docnum"
	"inspection-backend/internal/lifecycle"
	"inspection-backend/internal/metrics"
	"inspection-backend/internal/models"
	"inspection-backend/internal/repositories"
	"inspection-backend/internal/timeutil"
)

// LineClearanceStore is the persistence surface the service needs.
type LineClearanceStore interface {
	Create(ctx context.Context, rep *models.LineClearanceReport) error
	Get(ctx context.Context, id int64) (*models.LineClearanceReport, error)
	GetByDocumentNo(ctx context.Context, docNo string) (*models.LineClearanceReport, error)
	List(ctx context.Context, filter repositories.LineClearanceFilter) ([]*models.LineClearanceReport, error)
	Update(ctx context.Context, rep *models.LineClearanceReport) error
	UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error)
	Delete(ctx context.Context, id int64) error
	DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
}

type LineClearanceService struct {
	Store LineClearanceStore
	now   func() time.Time
}

func NewLineClearanceService(store LineClearanceStore) *LineClearanceService {
	return &LineClearanceService{Store: store, now: timeutil.Now}
}

// Create persists a new line clearance report in DRAFT. Line clearance
// numbers run per month (AGI-LCR-MAY-001, -002, ...) rather than per year.
func (s *LineClearanceService) Create(ctx context.Context, rep *models.LineClearanceReport) (*models.LineClearanceReport, error) {
	if rep.ProductionArea != "" && !rep.ProductionArea.Valid() {
		return nil, fmt.Errorf("%w: unknown production area %q", models.ErrValidation, rep.ProductionArea)
	}

	now := s.now()
	applyHeaderDefaults(&rep.Header, lineClearanceScope, lineClearanceTitle, now)
	if rep.ReportDate == nil {
		d := now
		rep.ReportDate = &d
	}
	rep.Workflow = models.Workflow{Status: models.StatusDraft}

	if rep.DocumentNo != "" {
		if err := s.Store.Create(ctx, rep); err != nil {
			if repositories.IsUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s", models.ErrDuplicateDocumentNumber, rep.DocumentNo)
			}
			return nil, err
		}
		return rep, nil
	}

	rule := docnum.LineClearance
	for attempt := 1; attempt <= docnum.MaxRetries; attempt++ {
		existing, err := s.Store.DocumentNumbersByPrefix(ctx, rule.ScanPrefix(now))
		if err != nil {
			return nil, err
		}
		rep.DocumentNo = rule.Next(existing, now)

		err = s.Store.Create(ctx, rep)
		if err == nil {
			return rep, nil
		}
		if !repositories.IsUniqueViolation(err) {
			return nil, err
		}
		metrics.DocnumRetries.Inc()
		log.Printf("[LineClearance] document number %s already taken, retrying (%d/%d)",
			rep.DocumentNo, attempt, docnum.MaxRetries)
	}

	return nil, fmt.Errorf("%w: could not allocate a document number under %s",
		models.ErrAllocationConflict, rule.ScanPrefix(now))
}

// Get retrieves a report by ID.
func (s *LineClearanceService) Get(ctx context.Context, id int64) (*models.LineClearanceReport, error) {
	return s.Store.Get(ctx, id)
}

// GetByDocumentNo retrieves a report by document number.
func (s *LineClearanceService) GetByDocumentNo(ctx context.Context, docNo string) (*models.LineClearanceReport, error) {
	return s.Store.GetByDocumentNo(ctx, docNo)
}

// List retrieves reports matching the filter.
func (s *LineClearanceService) List(ctx context.Context, filter repositories.LineClearanceFilter) ([]*models.LineClearanceReport, error) {
	return s.Store.List(ctx, filter)
}

// Update rewrites the editable fields of a report still in DRAFT or
// REJECTED, carrying over identity and workflow from the stored row.
func (s *LineClearanceService) Update(ctx context.Context, id int64, in *models.LineClearanceReport) (*models.LineClearanceReport, error) {
	if in.ProductionArea != "" && !in.ProductionArea.Valid() {
		return nil, fmt.Errorf("%w: unknown production area %q", models.ErrValidation, in.ProductionArea)
	}

	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusDraft && current.Status != models.StatusRejected {
		return nil, fmt.Errorf("%w: cannot edit a %s report", models.ErrInvalidState, current.Status)
	}

	in.ID = current.ID
	in.DocumentNo = current.DocumentNo
	in.Workflow = current.Workflow
	in.CreatedAt = current.CreatedAt

	if err := s.Store.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// Submit moves a DRAFT or REJECTED report to SUBMITTED.
func (s *LineClearanceService) Submit(ctx context.Context, id int64, by string) (*models.LineClearanceReport, error) {
	return s.transition(ctx, id, func(w *models.Workflow) error {
		return lifecycle.Submit(w, by, s.now())
	})
}

// Approve moves a SUBMITTED report to APPROVED.
func (s *LineClearanceService) Approve(ctx context.Context, id int64, by, comments string) (*models.LineClearanceReport, error) {
	return s.transition(ctx, id, func(w *models.Workflow) error {
		return lifecycle.Approve(w, by, comments, s.now())
	})
}

// Reject moves a SUBMITTED report to REJECTED. Comments are required.
func (s *LineClearanceService) Reject(ctx context.Context, id int64, by, comments string) (*models.LineClearanceReport, error) {
	return s.transition(ctx, id, func(w *models.Workflow) error {
		return lifecycle.Reject(w, by, comments, s.now())
	})
}

func (s *LineClearanceService) transition(ctx context.Context, id int64, apply func(*models.Workflow) error) (*models.LineClearanceReport, error) {
	rep, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := rep.Status
	if err := apply(&rep.Workflow); err != nil {
		return nil, err
	}

	ok, err := s.Store.UpdateWorkflow(ctx, id, from, &rep.Workflow)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.Store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: report moved to %s concurrently",
			models.ErrInvalidTransition, current.Status)
	}
	return rep, nil
}

// Delete removes a report still in DRAFT or REJECTED.
func (s *LineClearanceService) Delete(ctx context.Context, id int64) error {
	rep, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !lifecycle.Deletable(rep.Status) {
		return fmt.Errorf("%w: cannot delete a %s report", models.ErrInvalidState, rep.Status)
	}
	return s.Store.Delete(ctx, id)
}

// LogPDFDownload records who pulled a rendered PDF.
func (s *LineClearanceService) LogPDFDownload(ctx context.Context, id int64, downloadedBy string) error {
	rep, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	log.Printf("[LineClearance] PDF of %s downloaded by %s", rep.DocumentNo, downloadedBy)
	return nil
}
