package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-backend/internal/models"
	"inspection-backend/internal/repositories"
)

var fixedNow = time.Date(2025, time.May, 14, 10, 0, 0, 0, time.UTC)

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "inspection_forms_document_no_key"}
}

// fakeFormStore is an in-memory InspectionFormStore. collideOnCreate forces
// that many unique violations before inserts succeed; casFail makes every
// workflow compare-and-set lose.
type fakeFormStore struct {
	forms           map[int64]*models.InspectionForm
	nextID          int64
	collideOnCreate int
	casFail         bool
}

func newFakeFormStore() *fakeFormStore {
	return &fakeFormStore{forms: make(map[int64]*models.InspectionForm)}
}

func (s *fakeFormStore) Create(ctx context.Context, f *models.InspectionForm) error {
	if s.collideOnCreate > 0 {
		s.collideOnCreate--
		return uniqueViolation()
	}
	for _, existing := range s.forms {
		if existing.DocumentNo == f.DocumentNo {
			return uniqueViolation()
		}
	}
	s.nextID++
	f.ID = s.nextID
	f.CreatedAt = fixedNow
	f.UpdatedAt = fixedNow
	cp := *f
	s.forms[f.ID] = &cp
	return nil
}

func (s *fakeFormStore) Get(ctx context.Context, id int64) (*models.InspectionForm, error) {
	f, ok := s.forms[id]
	if !ok {
		return nil, fmt.Errorf("%w: inspection form %d", models.ErrNotFound, id)
	}
	cp := *f
	return &cp, nil
}

func (s *fakeFormStore) GetByDocumentNo(ctx context.Context, docNo string) (*models.InspectionForm, error) {
	for _, f := range s.forms {
		if f.DocumentNo == docNo {
			cp := *f
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: inspection form %s", models.ErrNotFound, docNo)
}

func (s *fakeFormStore) List(ctx context.Context, filter repositories.InspectionFormFilter) ([]*models.InspectionForm, error) {
	var out []*models.InspectionForm
	for _, f := range s.forms {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		cp := *f
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeFormStore) Update(ctx context.Context, f *models.InspectionForm) error {
	if _, ok := s.forms[f.ID]; !ok {
		return fmt.Errorf("%w: inspection form %d", models.ErrNotFound, f.ID)
	}
	f.UpdatedAt = fixedNow.Add(time.Minute)
	cp := *f
	s.forms[f.ID] = &cp
	return nil
}

func (s *fakeFormStore) UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error) {
	f, ok := s.forms[id]
	if !ok || s.casFail || f.Status != from {
		return false, nil
	}
	f.Workflow = *w
	return true, nil
}

func (s *fakeFormStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.forms[id]; !ok {
		return fmt.Errorf("%w: inspection form %d", models.ErrNotFound, id)
	}
	delete(s.forms, id)
	return nil
}

func (s *fakeFormStore) DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for _, f := range s.forms {
		if strings.HasPrefix(f.DocumentNo, prefix) {
			out = append(out, f.DocumentNo)
		}
	}
	return out, nil
}

func newFormService(store *fakeFormStore) *InspectionFormService {
	svc := NewInspectionFormService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestInspectionFormCreateAllocatesNumber(t *testing.T) {
	svc := newFormService(newFakeFormStore())

	first, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
		Product:  "100ml Amber Bottle",
	})
	require.NoError(t, err)
	assert.Equal(t, "AGI-FAIRC-25-01", first.DocumentNo)
	assert.Equal(t, models.StatusDraft, first.Status)

	second, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
	})
	require.NoError(t, err)
	assert.Equal(t, "AGI-FAIRC-25-02", second.DocumentNo)

	// printing forms count independently of coating forms
	printing, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypePrinting,
	})
	require.NoError(t, err)
	assert.Equal(t, "AGI-FAIRP-25-01", printing.DocumentNo)
}

func TestInspectionFormCreateAppliesDefaults(t *testing.T) {
	svc := newFormService(newFakeFormStore())

	f, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
	})
	require.NoError(t, err)

	assert.Equal(t, "00", f.Revision)
	assert.Equal(t, coatingScope, f.Scope)
	assert.Equal(t, coatingTitle, f.Title)
	assert.Equal(t, defaultUnit, f.Unit)
	require.NotNil(t, f.EffectiveDate)
	require.NotNil(t, f.InspectionDate)
	assert.Equal(t, fixedNow, *f.InspectionDate)
}

func TestInspectionFormCreateKeepsClientHeader(t *testing.T) {
	svc := newFormService(newFakeFormStore())

	f, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypePrinting,
		Header:   models.Header{Revision: "02", Scope: "AGI / DEC / CUSTOM"},
	})
	require.NoError(t, err)

	assert.Equal(t, "02", f.Revision)
	assert.Equal(t, "AGI / DEC / CUSTOM", f.Scope)
	assert.Equal(t, printingTitle, f.Title) // still defaulted
}

func TestInspectionFormCreateForcesDraft(t *testing.T) {
	svc := newFormService(newFakeFormStore())

	f, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
		Workflow: models.Workflow{Status: models.StatusApproved, ReviewedBy: "smuggled"},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusDraft, f.Status)
	assert.Empty(t, f.ReviewedBy)
}

func TestInspectionFormCreateUnknownFormType(t *testing.T) {
	svc := newFormService(newFakeFormStore())

	_, err := svc.Create(context.Background(), &models.InspectionForm{FormType: "WELDING"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestInspectionFormCreateManualNumber(t *testing.T) {
	svc := newFormService(newFakeFormStore())

	f, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
		Header:   models.Header{DocumentNo: "AGI-FAIRC-LEGACY-99"},
	})
	require.NoError(t, err)
	assert.Equal(t, "AGI-FAIRC-LEGACY-99", f.DocumentNo)

	_, err = svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
		Header:   models.Header{DocumentNo: "AGI-FAIRC-LEGACY-99"},
	})
	assert.ErrorIs(t, err, models.ErrDuplicateDocumentNumber)
}

func TestInspectionFormCreateRetriesOnCollision(t *testing.T) {
	store := newFakeFormStore()
	store.collideOnCreate = 2
	svc := newFormService(store)

	f, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.DocumentNo, "AGI-FAIRC-25-"))
	assert.Zero(t, store.collideOnCreate)
}

func TestInspectionFormCreateAllocationExhausted(t *testing.T) {
	store := newFakeFormStore()
	store.collideOnCreate = 3
	svc := newFormService(store)

	_, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
	})
	assert.ErrorIs(t, err, models.ErrAllocationConflict)
}

func TestInspectionFormUpdateCarriesIdentity(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{
		FormType: models.FormTypeCoating,
		Product:  "100ml Amber Bottle",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, &models.InspectionForm{
		Header:   models.Header{DocumentNo: "FORGED-01"},
		Workflow: models.Workflow{Status: models.StatusApproved},
		FormType: models.FormTypePrinting,
		Product:  "200ml Flint Bottle",
		Shift:    "C",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.DocumentNo, updated.DocumentNo)
	assert.Equal(t, models.FormTypeCoating, updated.FormType)
	assert.Equal(t, models.StatusDraft, updated.Status)
	assert.Equal(t, "200ml Flint Bottle", updated.Product)
}

func TestInspectionFormUpdateAfterRejection(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), created.ID, "supervisor.b", "shade off")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, &models.InspectionForm{Shift: "B"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Equal(t, "shade off", updated.Comments) // rejection context survives the edit
}

func TestInspectionFormUpdateBlockedOnceSubmitted(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, &models.InspectionForm{Shift: "B"})
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestInspectionFormLifecycle(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)

	submitted, err := svc.Submit(context.Background(), created.ID, "operator.a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, submitted.Status)
	assert.Equal(t, "operator.a", submitted.SubmittedBy)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, fixedNow, *submitted.SubmittedAt)

	approved, err := svc.Approve(context.Background(), created.ID, "supervisor.b", "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "supervisor.b", approved.ReviewedBy)

	// approved reports are terminal
	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestInspectionFormResubmitAfterRejection(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	require.NoError(t, err)
	rejected, err := svc.Reject(context.Background(), created.ID, "supervisor.b", "redo thickness readings")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	resubmitted, err := svc.Submit(context.Background(), created.ID, "operator.a")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, resubmitted.Status)
}

func TestInspectionFormRejectRequiresComments(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), created.ID, "supervisor.b", "")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestInspectionFormConcurrentTransition(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)

	store.casFail = true
	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "concurrently")
}

func TestInspectionFormDeleteGuard(t *testing.T) {
	store := newFakeFormStore()
	svc := newFormService(store)

	created, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	kept, err := svc.Create(context.Background(), &models.InspectionForm{FormType: models.FormTypeCoating})
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), kept.ID, "operator.a")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), kept.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestInspectionFormGetNotFound(t *testing.T) {
	svc := newFormService(newFakeFormStore())

	_, err := svc.Get(context.Background(), 404)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.GetByDocumentNo(context.Background(), "AGI-FAIRC-25-99")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
