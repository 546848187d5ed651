package services

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inspection-backend/internal/models"
	"inspection-backend/internal/repositories"
)

type fakeIQCStore struct {
	reports         map[int64]*models.IncomingQualityReport
	nextID          int64
	collideOnCreate int
	casFail         bool
}

func newFakeIQCStore() *fakeIQCStore {
	return &fakeIQCStore{reports: make(map[int64]*models.IncomingQualityReport)}
}

func (s *fakeIQCStore) Create(ctx context.Context, rep *models.IncomingQualityReport) error {
	if s.collideOnCreate > 0 {
		s.collideOnCreate--
		return uniqueViolation()
	}
	for _, existing := range s.reports {
		if existing.DocumentNo == rep.DocumentNo {
			return uniqueViolation()
		}
	}
	s.nextID++
	rep.ID = s.nextID
	rep.CreatedAt = fixedNow
	rep.UpdatedAt = fixedNow
	cp := *rep
	s.reports[rep.ID] = &cp
	return nil
}

func (s *fakeIQCStore) Get(ctx context.Context, id int64) (*models.IncomingQualityReport, error) {
	rep, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: IQC report %d", models.ErrNotFound, id)
	}
	cp := *rep
	return &cp, nil
}

func (s *fakeIQCStore) GetByDocumentNo(ctx context.Context, docNo string) (*models.IncomingQualityReport, error) {
	for _, rep := range s.reports {
		if rep.DocumentNo == docNo {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: IQC report %s", models.ErrNotFound, docNo)
}

func (s *fakeIQCStore) List(ctx context.Context, filter repositories.IncomingQualityFilter) ([]*models.IncomingQualityReport, error) {
	var out []*models.IncomingQualityReport
	for _, rep := range s.reports {
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		if filter.QualityDecision != "" && rep.QualityDecision != filter.QualityDecision {
			continue
		}
		cp := *rep
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeIQCStore) Update(ctx context.Context, rep *models.IncomingQualityReport) error {
	if _, ok := s.reports[rep.ID]; !ok {
		return fmt.Errorf("%w: IQC report %d", models.ErrNotFound, rep.ID)
	}
	rep.UpdatedAt = fixedNow.Add(time.Minute)
	cp := *rep
	s.reports[rep.ID] = &cp
	return nil
}

func (s *fakeIQCStore) UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error) {
	rep, ok := s.reports[id]
	if !ok || s.casFail || rep.Status != from {
		return false, nil
	}
	rep.Workflow = *w
	return true, nil
}

func (s *fakeIQCStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.reports[id]; !ok {
		return fmt.Errorf("%w: IQC report %d", models.ErrNotFound, id)
	}
	delete(s.reports, id)
	return nil
}

func (s *fakeIQCStore) DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for _, rep := range s.reports {
		if strings.HasPrefix(rep.DocumentNo, prefix) {
			out = append(out, rep.DocumentNo)
		}
	}
	return out, nil
}

func newIQCService(store *fakeIQCStore) *IncomingQualityService {
	svc := NewIncomingQualityService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestIncomingQualityCreateAllocatesNumber(t *testing.T) {
	svc := newIQCService(newFakeIQCStore())

	first, err := svc.Create(context.Background(), &models.IncomingQualityReport{
		BatchNumber: "B-2305-114",
	})
	require.NoError(t, err)
	assert.Equal(t, "AGI-IQC-25-01", first.DocumentNo)
	assert.Equal(t, models.StatusDraft, first.Status)

	second, err := svc.Create(context.Background(), &models.IncomingQualityReport{})
	require.NoError(t, err)
	assert.Equal(t, "AGI-IQC-25-02", second.DocumentNo)
}

func TestIncomingQualityCreateAppliesDefaults(t *testing.T) {
	svc := newIQCService(newFakeIQCStore())

	rep, err := svc.Create(context.Background(), &models.IncomingQualityReport{})
	require.NoError(t, err)

	assert.Equal(t, "00", rep.Revision)
	assert.Equal(t, incomingQualityScope, rep.Scope)
	assert.Equal(t, incomingQualityTitle, rep.Title)
	assert.Equal(t, defaultUnit, rep.Unit)
	require.NotNil(t, rep.IQCDate)
	assert.Equal(t, fixedNow, *rep.IQCDate)
}

func TestIncomingQualityCreateManualDuplicate(t *testing.T) {
	svc := newIQCService(newFakeIQCStore())

	_, err := svc.Create(context.Background(), &models.IncomingQualityReport{
		Header: models.Header{DocumentNo: "AGI-IQC-LEGACY-01"},
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &models.IncomingQualityReport{
		Header: models.Header{DocumentNo: "AGI-IQC-LEGACY-01"},
	})
	assert.ErrorIs(t, err, models.ErrDuplicateDocumentNumber)
}

func TestIncomingQualityAllocationExhausted(t *testing.T) {
	store := newFakeIQCStore()
	store.collideOnCreate = 3
	svc := newIQCService(store)

	_, err := svc.Create(context.Background(), &models.IncomingQualityReport{})
	assert.ErrorIs(t, err, models.ErrAllocationConflict)
}

func TestIncomingQualityUpdateGuard(t *testing.T) {
	store := newFakeIQCStore()
	svc := newIQCService(store)

	created, err := svc.Create(context.Background(), &models.IncomingQualityReport{
		QualityDecision: models.QualityDecisionPass,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, &models.IncomingQualityReport{
		Header:          models.Header{DocumentNo: "FORGED-01"},
		QualityDecision: models.QualityDecisionConditionalPass,
	})
	require.NoError(t, err)
	assert.Equal(t, created.DocumentNo, updated.DocumentNo)
	assert.Equal(t, models.QualityDecisionConditionalPass, updated.QualityDecision)

	_, err = svc.Submit(context.Background(), created.ID, "inspector.c")
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), created.ID, &models.IncomingQualityReport{})
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestIncomingQualityLifecycle(t *testing.T) {
	store := newFakeIQCStore()
	svc := newIQCService(store)

	created, err := svc.Create(context.Background(), &models.IncomingQualityReport{})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), created.ID, "manager.d", "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.Submit(context.Background(), created.ID, "inspector.c")
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.ID, "manager.d", "release batch")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, "release batch", approved.Comments)

	err = svc.Delete(context.Background(), created.ID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}
