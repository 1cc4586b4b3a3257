package domain

import "slices"

// Restrictions maps a garment slug to the only repair types it accepts.
// Garments without an entry accept every repair type.
type Restrictions map[string][]string

func (r Restrictions) Allows(garment, repairType string) bool {
	allowed, ok := r[garment]
	if !ok || len(allowed) == 0 {
		return true
	}
	return slices.Contains(allowed, repairType)
}

func (r Restrictions) Candidates(garment string, all []string) []string {
	out := make([]string, 0, len(all))
	for _, repairType := range all {
		if r.Allows(garment, repairType) {
			out = append(out, repairType)
		}
	}
	return out
}
