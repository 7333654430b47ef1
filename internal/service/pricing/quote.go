// Package pricing computes the price snapshot stored on a booking.
package pricing

import (
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type QuoteInput struct {
	Package        domain.Package
	RoomType       domain.RoomType
	Pax            int
	AddOns         []domain.AddOn
	Voucher        *domain.Voucher
	AdminFeePerPax decimal.Decimal
}

// Quote prices a reservation. Add-ons and the admin fee are charged per traveller; the
// voucher discount applies to the package and add-ons only and never exceeds them.
func Quote(in QuoteInput) (domain.PriceBreakdown, error) {
	if in.Pax <= 0 {
		return domain.PriceBreakdown{}, domain.InvalidInputf("pax must be positive")
	}
	unit, ok := in.Package.Prices[in.RoomType]
	if !ok || !in.RoomType.Valid() {
		return domain.PriceBreakdown{}, domain.InvalidInputf("package %s has no %s price", in.Package.Name, in.RoomType)
	}
	pax := decimal.NewFromInt(int64(in.Pax))

	base := unit.Mul(pax)
	addOns := decimal.Zero
	for _, a := range in.AddOns {
		addOns = addOns.Add(a.Price.Mul(pax))
	}
	fees := in.AdminFeePerPax.Mul(pax)
	discount := Discount(in.Voucher, base.Add(addOns))

	return domain.PriceBreakdown{
		Base:     base,
		AddOns:   addOns,
		Discount: discount,
		Fees:     fees,
		Total:    base.Add(addOns).Add(fees).Sub(discount),
	}, nil
}

// Discount returns what voucher takes off amount, rounded to whole units.
func Discount(v *domain.Voucher, amount decimal.Decimal) decimal.Decimal {
	if v == nil || !amount.IsPositive() {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch v.Kind {
	case domain.VoucherKindPercent:
		d = amount.Mul(v.Value).Div(hundred).Round(0)
		if v.MaxDiscount.IsPositive() {
			d = decimal.Min(d, v.MaxDiscount)
		}
	case domain.VoucherKindFixed:
		d = v.Value
	default:
		return decimal.Zero
	}

	if d.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(d, amount)
}
