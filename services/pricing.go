package services

import (
	"sort"

	"food-ordering/models"

	"github.com/shopspring/decimal"
)

var DefaultTaxRate = decimal.RequireFromString("0.10")

// Pricing turns quantities into an order draft.
type Pricing struct {
	Shipping decimal.Decimal
	TaxRate  decimal.Decimal
}

func NewPricing(shipping decimal.Decimal) Pricing {
	return Pricing{Shipping: shipping, TaxRate: DefaultTaxRate}
}

// Draft prices q against the catalog lookup. Ids the catalog does not know
// are left out of the draft and returned in missing.
func (p Pricing) Draft(q models.QuantityMap, lookup func(int) (models.FoodItem, bool)) (draft models.OrderDraft, missing []int) {
	ids := make([]int, 0, len(q))
	for id, n := range q {
		if n > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	draft.Subtotal = decimal.Zero
	for _, id := range ids {
		food, ok := lookup(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		line := models.OrderLine{FoodID: id, Name: food.Name, Price: food.Price, Quantity: q[id]}
		draft.Lines = append(draft.Lines, line)
		draft.Subtotal = draft.Subtotal.Add(line.Amount())
	}

	draft.Shipping = decimal.Zero
	if draft.Subtotal.IsPositive() {
		draft.Shipping = p.Shipping
	}
	draft.Tax = draft.Subtotal.Mul(p.TaxRate)
	draft.Total = draft.Subtotal.Add(draft.Shipping).Add(draft.Tax)
	return draft, missing
}
