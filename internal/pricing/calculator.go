package pricing

import "repairflow/internal/domain"

const (
	LineCategory = "category"
	LineRepair   = "repair"
	LineShipping = "shipping"
)

type Line struct {
	Kind      string `json:"kind"`
	Key       string `json:"key"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Amount    int64  `json:"amount"`
}

type Breakdown struct {
	Lines []Line `json:"lines"`
	Total int64  `json:"total"`
}

func ComputeTotal(state domain.FormState, tables Tables) int64 {
	return Compute(state, tables).Total
}

// Compute prices the current selections: category base price, repair price
// (times the unit count for per-unit repairs) and shipping. Empty selections
// produce no line.
func Compute(state domain.FormState, tables Tables) Breakdown {
	b := Breakdown{Lines: []Line{}}

	if state.Category != "" {
		b.add(Line{Kind: LineCategory, Key: state.Category, Quantity: 1, UnitPrice: tables.Category[state.Category]})
	}

	if state.RepairType != "" {
		qty := int64(1)
		if field, ok := tables.PerUnit[state.RepairType]; ok {
			qty = state.Units(field)
		}
		b.add(Line{Kind: LineRepair, Key: state.RepairType, Quantity: qty, UnitPrice: tables.Repair[state.RepairType]})
	}

	if state.DeliveryType != "" {
		tier := state.ShippingTier
		if tier == "" {
			tier = tables.DefaultTier[state.DeliveryType]
		}
		b.add(Line{
			Kind:      LineShipping,
			Key:       state.DeliveryType + "/" + tier,
			Quantity:  1,
			UnitPrice: tables.ShippingPrice(state.DeliveryType, tier),
		})
	}

	return b
}

func (b *Breakdown) add(l Line) {
	l.Amount = l.UnitPrice * l.Quantity
	b.Lines = append(b.Lines, l)
	b.Total += l.Amount
}
