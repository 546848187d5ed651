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

// InspectionFormStore is the persistence surface the service needs. The pgx
// repository satisfies it; tests use an in-memory fake.
type InspectionFormStore interface {
	Create(ctx context.Context, f *models.InspectionForm) error
	Get(ctx context.Context, id int64) (*models.InspectionForm, error)
	GetByDocumentNo(ctx context.Context, docNo string) (*models.InspectionForm, error)
	List(ctx context.Context, filter repositories.InspectionFormFilter) ([]*models.InspectionForm, error)
	Update(ctx context.Context, f *models.InspectionForm) error
	UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error)
	Delete(ctx context.Context, id int64) error
	DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error)
}

type InspectionFormService struct {
	Store InspectionFormStore
	now   func() time.Time
}

func NewInspectionFormService(store InspectionFormStore) *InspectionFormService {
	return &InspectionFormService{Store: store, now: timeutil.Now}
}

// Create persists a new first article inspection form in DRAFT. When no
// document number is supplied the allocator assigns one, retrying a bounded
// number of times if a concurrent creation claims the same sequence. A
// manually supplied number is used as-is and only checked for uniqueness.
func (s *InspectionFormService) Create(ctx context.Context, f *models.InspectionForm) (*models.InspectionForm, error) {
	if !f.FormType.Valid() {
		return nil, fmt.Errorf("%w: unknown form type %q", models.ErrValidation, f.FormType)
	}

	now := s.now()
	scope, title := coatingScope, coatingTitle
	if f.FormType == models.FormTypePrinting {
		scope, title = printingScope, printingTitle
	}
	applyHeaderDefaults(&f.Header, scope, title, now)
	if f.InspectionDate == nil {
		d := now
		f.InspectionDate = &d
	}
	f.Workflow = models.Workflow{Status: models.StatusDraft}

	if f.DocumentNo != "" {
		if err := s.Store.Create(ctx, f); err != nil {
			if repositories.IsUniqueViolation(err) {
				return nil, fmt.Errorf("%w: %s", models.ErrDuplicateDocumentNumber, f.DocumentNo)
			}
			return nil, err
		}
		return f, nil
	}

	rule := docnum.CoatingInspection
	if f.FormType == models.FormTypePrinting {
		rule = docnum.PrintingInspection
	}

	for attempt := 1; attempt <= docnum.MaxRetries; attempt++ {
		existing, err := s.Store.DocumentNumbersByPrefix(ctx, rule.ScanPrefix(now))
		if err != nil {
			return nil, err
		}
		f.DocumentNo = rule.Next(existing, now)

		err = s.Store.Create(ctx, f)
		if err == nil {
			return f, nil
		}
		if !repositories.IsUniqueViolation(err) {
			return nil, err
		}
		metrics.DocnumRetries.Inc()
		log.Printf("[InspectionForm] document number %s already taken, retrying (%d/%d)",
			f.DocumentNo, attempt, docnum.MaxRetries)
	}

	return nil, fmt.Errorf("%w: could not allocate a document number under %s",
		models.ErrAllocationConflict, rule.ScanPrefix(now))
}

// Get retrieves a form by ID.
func (s *InspectionFormService) Get(ctx context.Context, id int64) (*models.InspectionForm, error) {
	return s.Store.Get(ctx, id)
}

// GetByDocumentNo retrieves a form by document number.
func (s *InspectionFormService) GetByDocumentNo(ctx context.Context, docNo string) (*models.InspectionForm, error) {
	return s.Store.GetByDocumentNo(ctx, docNo)
}

// List retrieves forms matching the filter. No matches is an empty slice,
// not an error.
func (s *InspectionFormService) List(ctx context.Context, filter repositories.InspectionFormFilter) ([]*models.InspectionForm, error) {
	return s.Store.List(ctx, filter)
}

// Update rewrites the editable fields of a form still in DRAFT or REJECTED.
// ID, document number, form type and the whole workflow block are carried
// over from the stored row no matter what the input says.
func (s *InspectionFormService) Update(ctx context.Context, id int64, in *models.InspectionForm) (*models.InspectionForm, error) {
	current, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != models.StatusDraft && current.Status != models.StatusRejected {
		return nil, fmt.Errorf("%w: cannot edit a %s report", models.ErrInvalidState, current.Status)
	}

	in.ID = current.ID
	in.DocumentNo = current.DocumentNo
	in.FormType = current.FormType
	in.Workflow = current.Workflow
	in.CreatedAt = current.CreatedAt

	if err := s.Store.Update(ctx, in); err != nil {
		return nil, err
	}
	return in, nil
}

// Submit moves a DRAFT or REJECTED form to SUBMITTED.
func (s *InspectionFormService) Submit(ctx context.Context, id int64, by string) (*models.InspectionForm, error) {
	return s.transition(ctx, id, func(w *models.Workflow) error {
		return lifecycle.Submit(w, by, s.now())
	})
}

// Approve moves a SUBMITTED form to APPROVED.
func (s *InspectionFormService) Approve(ctx context.Context, id int64, by, comments string) (*models.InspectionForm, error) {
	return s.transition(ctx, id, func(w *models.Workflow) error {
		return lifecycle.Approve(w, by, comments, s.now())
	})
}

// Reject moves a SUBMITTED form to REJECTED. Comments are required.
func (s *InspectionFormService) Reject(ctx context.Context, id int64, by, comments string) (*models.InspectionForm, error) {
	return s.transition(ctx, id, func(w *models.Workflow) error {
		return lifecycle.Reject(w, by, comments, s.now())
	})
}

// transition runs a lifecycle event as a read-validate-CAS-write. A failed
// compare-and-set means a concurrent transition won the race; the re-read
// tells that apart from the row having been deleted.
func (s *InspectionFormService) transition(ctx context.Context, id int64, apply func(*models.Workflow) error) (*models.InspectionForm, error) {
	f, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	from := f.Status
	if err := apply(&f.Workflow); err != nil {
		return nil, err
	}

	ok, err := s.Store.UpdateWorkflow(ctx, id, from, &f.Workflow)
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
	return f, nil
}

// Delete removes a form still in DRAFT or REJECTED. Submitted and approved
// forms stay for the audit trail.
func (s *InspectionFormService) Delete(ctx context.Context, id int64) error {
	f, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !lifecycle.Deletable(f.Status) {
		return fmt.Errorf("%w: cannot delete a %s report", models.ErrInvalidState, f.Status)
	}
	return s.Store.Delete(ctx, id)
}

// LogPDFDownload records who pulled a rendered PDF. Kept as a log line; the
// plant's audit needs names in the server log, not a table.
func (s *InspectionFormService) LogPDFDownload(ctx context.Context, id int64, downloadedBy string) error {
	f, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	log.Printf("[InspectionForm] PDF of %s downloaded by %s", f.DocumentNo, downloadedBy)
	return nil
}
