package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/booking-api/pkg/errors"
)

type countingRepo struct {
	*memory.ServiceRepository
	listCalls int
	getCalls  int
}

func (r *countingRepo) ListActive(ctx context.Context) ([]*model.Service, error) {
	r.listCalls++
	return r.ServiceRepository.ListActive(ctx)
}

func (r *countingRepo) GetByCode(ctx context.Context, code string) (*model.Service, error) {
	r.getCalls++
	return r.ServiceRepository.GetByCode(ctx, code)
}

func testCatalog() *memory.ServiceRepository {
	return memory.NewServiceRepository(
		&model.Service{Code: "tax-declaration", Name: "Φορολογική Δήλωση", Active: true, Position: 1},
		&model.Service{Code: "bookkeeping", Name: "Λογιστική Παρακολούθηση", Active: true, Position: 2},
		&model.Service{Code: "payroll", Name: "Μισθοδοσία", Active: false, Position: 3},
	)
}

func TestListActiveCachesResult(t *testing.T) {
	repo := &countingRepo{ServiceRepository: testCatalog()}
	svc := NewService(repo, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		services, err := svc.ListActive(ctx)
		require.NoError(t, err)
		require.Len(t, services, 2)
		assert.Equal(t, "tax-declaration", services[0].Code)
	}
	assert.Equal(t, 1, repo.listCalls)
}

func TestGetByCodeCachesResult(t *testing.T) {
	repo := &countingRepo{ServiceRepository: testCatalog()}
	svc := NewService(repo, 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		found, err := svc.GetByCode(ctx, "bookkeeping")
		require.NoError(t, err)
		assert.Equal(t, "Λογιστική Παρακολούθηση", found.Name)
	}
	assert.Equal(t, 1, repo.getCalls)
}

func TestGetByCodeUnknown(t *testing.T) {
	svc := NewService(testCatalog(), 0)

	_, err := svc.GetByCode(context.Background(), "auditing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestInvalidateDropsCache(t *testing.T) {
	repo := &countingRepo{ServiceRepository: testCatalog()}
	svc := NewService(repo, 0)
	ctx := context.Background()

	_, err := svc.ListActive(ctx)
	require.NoError(t, err)
	svc.Invalidate()
	_, err = svc.ListActive(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
}
