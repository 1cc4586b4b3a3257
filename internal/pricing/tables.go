package pricing

import "maps"

const (
	TierSmallParcel  = "small-parcel"
	TierMediumParcel = "medium-parcel"
	TierLargeParcel  = "large-parcel"
	TierStandard     = "standard"

	DeliveryPickup  = "pickup"
	DeliveryCourier = "courier"
)

// Tables holds every price the calculator can charge, in whole NOK.
// PerUnit maps a repair type to the form field holding its unit count.
type Tables struct {
	Category    map[string]int64            `json:"category" yaml:"category"`
	Repair      map[string]int64            `json:"repair" yaml:"repair"`
	PerUnit     map[string]string           `json:"perUnit" yaml:"perUnit"`
	Shipping    map[string]map[string]int64 `json:"shipping" yaml:"shipping"`
	DefaultTier map[string]string           `json:"defaultTier" yaml:"defaultTier"`
}

func DefaultTables() Tables {
	return Tables{
		Category: map[string]int64{
			"standard": 0,
			"premium":  149,
		},
		Repair: map[string]int64{
			"hemming":       299,
			"zipper":        349,
			"buttons":       39,
			"patch":         249,
			"taking-in":     399,
			"letting-out":   399,
			"other-request": 0,
		},
		PerUnit: map[string]string{
			"buttons": "buttonCount",
		},
		Shipping: map[string]map[string]int64{
			"posten": {
				TierSmallParcel:  158,
				TierMediumParcel: 229,
				TierLargeParcel:  299,
			},
			DeliveryPickup: {
				TierStandard: 0,
			},
			DeliveryCourier: {
				TierStandard: 249,
			},
		},
		DefaultTier: map[string]string{
			"posten":        TierSmallParcel,
			DeliveryPickup:  TierStandard,
			DeliveryCourier: TierStandard,
		},
	}
}

// Merge overlays o on t key by key. Shipping tiers merge per delivery type.
func (t Tables) Merge(o Tables) Tables {
	out := Tables{
		Category:    mergeMap(t.Category, o.Category),
		Repair:      mergeMap(t.Repair, o.Repair),
		PerUnit:     mergeMap(t.PerUnit, o.PerUnit),
		DefaultTier: mergeMap(t.DefaultTier, o.DefaultTier),
		Shipping:    make(map[string]map[string]int64, len(t.Shipping)),
	}
	for delivery, tiers := range t.Shipping {
		out.Shipping[delivery] = maps.Clone(tiers)
	}
	for delivery, tiers := range o.Shipping {
		out.Shipping[delivery] = mergeMap(out.Shipping[delivery], tiers)
	}
	return out
}

// ShippingPrice prices a delivery type at tier, falling back to the delivery
// type's default tier when tier is empty. Unknown keys cost nothing.
func (t Tables) ShippingPrice(deliveryType, tier string) int64 {
	tiers, ok := t.Shipping[deliveryType]
	if !ok {
		return 0
	}
	if tier == "" {
		tier = t.DefaultTier[deliveryType]
	}
	return tiers[tier]
}

func mergeMap[V any](base, over map[string]V) map[string]V {
	out := make(map[string]V, len(base)+len(over))
	maps.Copy(out, base)
	maps.Copy(out, over)
	return out
}
