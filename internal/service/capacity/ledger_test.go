package capacity

import (
	"context"
	"sync"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository/memory"
	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedger(t *testing.T, seats int) (*Ledger, *memory.Store, uuid.UUID) {
	t.Helper()
	store := memory.NewStore()
	sch := &domain.Schedule{PackageID: uuid.New(), Pool: domain.CapacityPool{Total: seats, Available: seats}}
	require.NoError(t, store.Capacity().CreateSchedule(context.Background(), sch))
	logger, _ := logtest.NewNullLogger()
	return NewLedger(store.Capacity(), logger), store, sch.ID
}

func TestLedger_ReserveAndRelease(t *testing.T) {
	ledger, _, id := newLedger(t, 8)
	ctx := context.Background()

	pool, err := ledger.Reserve(ctx, id, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, pool.Available)
	assert.Equal(t, domain.PoolStatusAlmostFull, pool.Status)

	pool, err = ledger.Reserve(ctx, id, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, pool.Available)
	assert.Equal(t, domain.PoolStatusFull, pool.Status)

	pool, err = ledger.Release(ctx, id, 20)
	require.NoError(t, err)
	assert.Equal(t, 8, pool.Available, "release never exceeds total")
	assert.Equal(t, domain.PoolStatusOpen, pool.Status)
}

func TestLedger_RejectsWithoutMutating(t *testing.T) {
	ledger, store, id := newLedger(t, 2)
	ctx := context.Background()

	_, err := ledger.Reserve(ctx, id, 3)
	var capErr *domain.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Available)

	_, err = ledger.Reserve(ctx, id, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.Release(ctx, id, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = ledger.Reserve(ctx, uuid.New(), 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sch, err := store.Capacity().GetSchedule(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, sch.Pool.Available)
}

func TestLedger_ConcurrentReserve(t *testing.T) {
	const seats = 25
	ledger, store, id := newLedger(t, seats)
	ctx := context.Background()

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.Reserve(ctx, id, 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, seats, ok)
	sch, err := store.Capacity().GetSchedule(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, sch.Pool.Available)
}
