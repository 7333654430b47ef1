package domain

import "github.com/google/uuid"

type CustomerTier string

const (
	CustomerTierBronze   CustomerTier = "BRONZE"
	CustomerTierSilver   CustomerTier = "SILVER"
	CustomerTierGold     CustomerTier = "GOLD"
	CustomerTierPlatinum CustomerTier = "PLATINUM"
)

// TierFor derives a customer's tier from the number of bookings they completed.
func TierFor(completed int) CustomerTier {
	switch {
	case completed >= 10:
		return CustomerTierPlatinum
	case completed >= 5:
		return CustomerTierGold
	case completed >= 2:
		return CustomerTierSilver
	default:
		return CustomerTierBronze
	}
}

type Customer struct {
	ID    uuid.UUID
	Name  string
	Email string
	Tier  CustomerTier
}
