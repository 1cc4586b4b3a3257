package pricing

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"repairflow/internal/domain"
)

func TestComputeTotal_EmptyState(t *testing.T) {
	assert.Equal(t, int64(0), ComputeTotal(domain.NewFormState("nb"), DefaultTables()))
}

func TestComputeTotal_SumsCategoryRepairAndShipping(t *testing.T) {
	state := domain.FormState{
		Garment:      domain.GarmentOuterWear,
		Category:     domain.CategoryPremium,
		RepairType:   "zipper",
		DeliveryType: domain.DeliveryPosten,
		ShippingTier: TierMediumParcel,
	}

	b := Compute(state, DefaultTables())

	assert.Equal(t, int64(149+349+229), b.Total)
	assert.Len(t, b.Lines, 3)
	assert.Equal(t, LineCategory, b.Lines[0].Kind)
	assert.Equal(t, LineRepair, b.Lines[1].Kind)
	assert.Equal(t, "posten/medium-parcel", b.Lines[2].Key)
}

func TestComputeTotal_PostenDefaultsToSmallParcel(t *testing.T) {
	state := domain.FormState{DeliveryType: domain.DeliveryPosten}

	assert.Equal(t, int64(158), ComputeTotal(state, DefaultTables()))
}

func TestComputeTotal_EachButtonAddsUnitPrice(t *testing.T) {
	tables := DefaultTables()
	unit := tables.Repair[domain.RepairButtons]

	prev := ComputeTotal(domain.FormState{RepairType: domain.RepairButtons, ButtonCount: "0"}, tables)
	for n := 1; n <= 12; n++ {
		state := domain.FormState{
			RepairType:   domain.RepairButtons,
			ButtonCount:  strconv.Itoa(n),
			Category:     domain.CategoryStandard,
			DeliveryType: domain.DeliveryPosten,
		}
		if n == 1 {
			prev += tables.Category[domain.CategoryStandard] + 158
		}
		total := ComputeTotal(state, tables)
		assert.Equal(t, prev+unit, total, "buttons=%d", n)
		prev = total
	}
}

func TestComputeTotal_HugeButtonCountStaysBounded(t *testing.T) {
	tables := DefaultTables()
	unit := tables.Repair[domain.RepairButtons]
	capped := ComputeTotal(domain.FormState{
		RepairType:  domain.RepairButtons,
		ButtonCount: strconv.Itoa(domain.MaxUnits),
	}, tables)

	for _, count := range []string{"101", "300000000000000000", "99999999999999999999"} {
		total := ComputeTotal(domain.FormState{RepairType: domain.RepairButtons, ButtonCount: count}, tables)
		assert.Positive(t, total, "buttons=%s", count)
		assert.Equal(t, capped, total, "buttons=%s", count)
	}
	assert.Equal(t, int64(domain.MaxUnits)*unit, capped)
}

func TestComputeTotal_MissingKeysCostNothing(t *testing.T) {
	state := domain.FormState{
		Category:     "gold",
		RepairType:   "embroidery",
		DeliveryType: "drone",
	}

	b := Compute(state, DefaultTables())

	assert.Equal(t, int64(0), b.Total)
	assert.Len(t, b.Lines, 3)
}

func TestComputeTotal_PerUnitWithoutCount(t *testing.T) {
	state := domain.FormState{RepairType: domain.RepairButtons}

	b := Compute(state, DefaultTables())

	assert.Equal(t, int64(0), b.Total)
	assert.Equal(t, int64(0), b.Lines[0].Quantity)
}

func TestTables_ShippingPrice(t *testing.T) {
	tables := DefaultTables()

	tests := []struct {
		name     string
		delivery string
		tier     string
		want     int64
	}{
		{name: "posten default tier", delivery: "posten", want: 158},
		{name: "posten large", delivery: "posten", tier: TierLargeParcel, want: 299},
		{name: "pickup", delivery: DeliveryPickup, want: 0},
		{name: "courier", delivery: DeliveryCourier, want: 249},
		{name: "unknown tier", delivery: "posten", tier: "pallet", want: 0},
		{name: "unknown delivery", delivery: "drone", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tables.ShippingPrice(tt.delivery, tt.tier))
		})
	}
}

func TestTables_Merge(t *testing.T) {
	base := DefaultTables()
	override := Tables{
		Repair:   map[string]int64{"hemming": 349, "embroidery": 499},
		Shipping: map[string]map[string]int64{"posten": {TierSmallParcel: 169}},
	}

	merged := base.Merge(override)

	assert.Equal(t, int64(349), merged.Repair["hemming"])
	assert.Equal(t, int64(499), merged.Repair["embroidery"])
	assert.Equal(t, int64(349), merged.Repair["zipper"])
	assert.Equal(t, int64(169), merged.ShippingPrice("posten", ""))
	assert.Equal(t, int64(229), merged.ShippingPrice("posten", TierMediumParcel))

	assert.Equal(t, int64(299), base.Repair["hemming"], "base must not change")
	assert.Equal(t, int64(158), base.ShippingPrice("posten", ""), "base must not change")
}
