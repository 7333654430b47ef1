package main

import (
	"context"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/Domenick1991/tourbooking/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// seedDemo gives the in-memory store one package with two departures, a customer and an
// agent so the API can be exercised locally.
func seedDemo(ctx context.Context, store *memory.Store) error {
	pkg := domain.Package{
		ID:   uuid.MustParse("6f1c2a3e-0000-4000-8000-000000000001"),
		Name: "Umrah Reguler 9 Hari",
		Prices: map[domain.RoomType]decimal.Decimal{
			domain.RoomTypeQuad:   decimal.NewFromInt(28_500_000),
			domain.RoomTypeTriple: decimal.NewFromInt(30_000_000),
			domain.RoomTypeDouble: decimal.NewFromInt(32_500_000),
			domain.RoomTypeSingle: decimal.NewFromInt(38_000_000),
		},
		Active: true,
	}
	store.AddPackage(pkg)
	store.AddAddOn(domain.AddOn{
		ID:    uuid.MustParse("6f1c2a3e-0000-4000-8000-000000000002"),
		Name:  "Travel insurance",
		Price: decimal.NewFromInt(350_000),
	})
	store.AddCustomer(domain.Customer{
		ID:    uuid.MustParse("6f1c2a3e-0000-4000-8000-000000000003"),
		Name:  "Demo Customer",
		Email: "customer@example.com",
		Tier:  domain.CustomerTierBronze,
	})
	store.AddAgent(domain.Agent{
		ID:             uuid.MustParse("6f1c2a3e-0000-4000-8000-000000000004"),
		Name:           "Demo Agent",
		CommissionRate: decimal.NewFromInt(5),
	})

	start := time.Now().AddDate(0, 2, 0).Truncate(24 * time.Hour)
	for i, seats := range []int{45, 12} {
		departure := start.AddDate(0, 0, 14*i)
		err := store.Capacity().CreateSchedule(ctx, &domain.Schedule{
			PackageID:     pkg.ID,
			DepartureDate: departure,
			ReturnDate:    departure.AddDate(0, 0, 9),
			Pool:          domain.CapacityPool{Total: seats, Available: seats},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
