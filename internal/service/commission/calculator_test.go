package commission

import (
	"context"
	"testing"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCalculator(t *testing.T) (*Calculator, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	logger, _ := logtest.NewNullLogger()
	return NewCalculator(store.Bookings(), store.Catalog(), store.Commissions(), logger), store
}

func completed(t *testing.T, store *memory.Store, total int64, agent, salesperson *uuid.UUID) uuid.UUID {
	t.Helper()
	b := &domain.Booking{
		CustomerID:    uuid.New(),
		ScheduleID:    uuid.New(),
		Pax:           1,
		AgentID:       agent,
		SalespersonID: salesperson,
		Price:         domain.PriceBreakdown{Total: decimal.NewFromInt(total)},
		Status:        domain.BookingStatusCompleted,
	}
	require.NoError(t, store.Bookings().Create(context.Background(), b))
	return b.ID
}

func TestAmount(t *testing.T) {
	assert.True(t, Amount(decimal.NewFromInt(1_000_000), decimal.NewFromInt(5)).Equal(decimal.NewFromInt(50_000)))
	assert.True(t, Amount(decimal.NewFromInt(1_234_567), decimal.RequireFromString("2.5")).Equal(decimal.NewFromInt(30_864)))
}

func TestCalculator_AgentTakesPrecedence(t *testing.T) {
	calc, store := newCalculator(t)
	agent := domain.Agent{ID: uuid.New(), Name: "Barokah Tour", CommissionRate: decimal.NewFromInt(4)}
	sp := domain.Salesperson{ID: uuid.New(), Name: "Rina", CommissionRate: decimal.NewFromInt(2)}
	store.AddAgent(agent)
	store.AddSalesperson(sp)

	id := completed(t, store, 30_000_000, &agent.ID, &sp.ID)
	rec, err := calc.EnsureCommission(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, domain.RecipientAgent, rec.RecipientKind)
	assert.Equal(t, agent.ID, rec.RecipientID)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(1_200_000)))
	assert.Equal(t, domain.CommissionStatusPending, rec.Status)
}

func TestCalculator_Salesperson(t *testing.T) {
	calc, store := newCalculator(t)
	sp := domain.Salesperson{ID: uuid.New(), Name: "Rina", CommissionRate: decimal.NewFromInt(2)}
	store.AddSalesperson(sp)

	rec, err := calc.EnsureCommission(context.Background(), completed(t, store, 10_000_000, nil, &sp.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.RecipientSalesperson, rec.RecipientKind)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(200_000)))
}

func TestCalculator_NoSeller(t *testing.T) {
	calc, store := newCalculator(t)
	rec, err := calc.EnsureCommission(context.Background(), completed(t, store, 10_000_000, nil, nil))
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCalculator_MissingSellerIsIntegrityFailure(t *testing.T) {
	calc, store := newCalculator(t)
	missing := uuid.New()

	_, err := calc.EnsureCommission(context.Background(), completed(t, store, 10_000_000, &missing, nil))
	require.ErrorIs(t, err, domain.ErrIntegrity)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, domain.IsRejection(err))

	_, err = calc.EnsureCommission(context.Background(), completed(t, store, 10_000_000, nil, &missing))
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestCalculator_Idempotent(t *testing.T) {
	calc, store := newCalculator(t)
	agent := domain.Agent{ID: uuid.New(), CommissionRate: decimal.NewFromInt(3)}
	store.AddAgent(agent)
	id := completed(t, store, 5_000_000, &agent.ID, nil)
	ctx := context.Background()

	first, err := calc.EnsureCommission(ctx, id)
	require.NoError(t, err)
	second, err := calc.EnsureCommission(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}
