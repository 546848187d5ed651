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

type fakeLCRStore struct {
	reports map[int64]*models.LineClearanceReport
	nextID  int64
	casFail bool
}

func newFakeLCRStore() *fakeLCRStore {
	return &fakeLCRStore{reports: make(map[int64]*models.LineClearanceReport)}
}

func (s *fakeLCRStore) Create(ctx context.Context, rep *models.LineClearanceReport) error {
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

func (s *fakeLCRStore) Get(ctx context.Context, id int64) (*models.LineClearanceReport, error) {
	rep, ok := s.reports[id]
	if !ok {
		return nil, fmt.Errorf("%w: line clearance report %d", models.ErrNotFound, id)
	}
	cp := *rep
	return &cp, nil
}

func (s *fakeLCRStore) GetByDocumentNo(ctx context.Context, docNo string) (*models.LineClearanceReport, error) {
	for _, rep := range s.reports {
		if rep.DocumentNo == docNo {
			cp := *rep
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: line clearance report %s", models.ErrNotFound, docNo)
}

func (s *fakeLCRStore) List(ctx context.Context, filter repositories.LineClearanceFilter) ([]*models.LineClearanceReport, error) {
	var out []*models.LineClearanceReport
	for _, rep := range s.reports {
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		if filter.ProductionArea != "" && rep.ProductionArea != filter.ProductionArea {
			continue
		}
		cp := *rep
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeLCRStore) Update(ctx context.Context, rep *models.LineClearanceReport) error {
	if _, ok := s.reports[rep.ID]; !ok {
		return fmt.Errorf("%w: line clearance report %d", models.ErrNotFound, rep.ID)
	}
	rep.UpdatedAt = fixedNow.Add(time.Minute)
	cp := *rep
	s.reports[rep.ID] = &cp
	return nil
}

func (s *fakeLCRStore) UpdateWorkflow(ctx context.Context, id int64, from models.Status, w *models.Workflow) (bool, error) {
	rep, ok := s.reports[id]
	if !ok || s.casFail || rep.Status != from {
		return false, nil
	}
	rep.Workflow = *w
	return true, nil
}

func (s *fakeLCRStore) Delete(ctx context.Context, id int64) error {
	if _, ok := s.reports[id]; !ok {
		return fmt.Errorf("%w: line clearance report %d", models.ErrNotFound, id)
	}
	delete(s.reports, id)
	return nil
}

func (s *fakeLCRStore) DocumentNumbersByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	for _, rep := range s.reports {
		if strings.HasPrefix(rep.DocumentNo, prefix) {
			out = append(out, rep.DocumentNo)
		}
	}
	return out, nil
}

func newLCRService(store *fakeLCRStore) *LineClearanceService {
	svc := NewLineClearanceService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestLineClearanceCreateMonthlyNumber(t *testing.T) {
	svc := newLCRService(newFakeLCRStore())

	first, err := svc.Create(context.Background(), &models.LineClearanceReport{
		Line:           "Line 2",
		ProductionArea: models.AreaCoating,
	})
	require.NoError(t, err)
	assert.Equal(t, "AGI-LCR-MAY-001", first.DocumentNo)
	assert.Equal(t, models.StatusDraft, first.Status)

	second, err := svc.Create(context.Background(), &models.LineClearanceReport{})
	require.NoError(t, err)
	assert.Equal(t, "AGI-LCR-MAY-002", second.DocumentNo)
}

func TestLineClearanceCreateAppliesDefaults(t *testing.T) {
	svc := newLCRService(newFakeLCRStore())

	rep, err := svc.Create(context.Background(), &models.LineClearanceReport{})
	require.NoError(t, err)

	assert.Equal(t, "00", rep.Revision)
	assert.Equal(t, lineClearanceScope, rep.Scope)
	assert.Equal(t, lineClearanceTitle, rep.Title)
	assert.Equal(t, defaultUnit, rep.Unit)
	require.NotNil(t, rep.ReportDate)
	assert.Equal(t, fixedNow, *rep.ReportDate)
}

func TestLineClearanceCreateValidatesArea(t *testing.T) {
	svc := newLCRService(newFakeLCRStore())

	_, err := svc.Create(context.Background(), &models.LineClearanceReport{
		ProductionArea: "PACKAGING",
	})
	assert.ErrorIs(t, err, models.ErrValidation)

	// an empty area is allowed on a draft
	_, err = svc.Create(context.Background(), &models.LineClearanceReport{})
	assert.NoError(t, err)
}

func TestLineClearanceUpdateValidatesArea(t *testing.T) {
	store := newFakeLCRStore()
	svc := newLCRService(store)

	created, err := svc.Create(context.Background(), &models.LineClearanceReport{
		ProductionArea: models.AreaCoating,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), created.ID, &models.LineClearanceReport{
		ProductionArea: "PACKAGING",
	})
	assert.ErrorIs(t, err, models.ErrValidation)

	updated, err := svc.Update(context.Background(), created.ID, &models.LineClearanceReport{
		ProductionArea: models.AreaBoth,
		NewVariantName: "Rose Gold",
	})
	require.NoError(t, err)
	assert.Equal(t, models.AreaBoth, updated.ProductionArea)
	assert.Equal(t, created.DocumentNo, updated.DocumentNo)
}

func TestLineClearanceLifecycleAndDelete(t *testing.T) {
	store := newFakeLCRStore()
	svc := newLCRService(store)

	created, err := svc.Create(context.Background(), &models.LineClearanceReport{})
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	require.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), created.ID, "supervisor.b", "conveyor not cleared")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Status)

	// rejected reports may be deleted
	require.NoError(t, svc.Delete(context.Background(), created.ID))
	_, err = svc.Get(context.Background(), created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLineClearanceConcurrentTransition(t *testing.T) {
	store := newFakeLCRStore()
	svc := newLCRService(store)

	created, err := svc.Create(context.Background(), &models.LineClearanceReport{})
	require.NoError(t, err)

	store.casFail = true
	_, err = svc.Submit(context.Background(), created.ID, "operator.a")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}
