package membership

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/wallet-sync/internal/types"
)

func TestTierOrderingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every non-terminal tier advances to its immediate successor", prop.ForAll(
		func(i int) bool {
			next := NextLevel(types.TierOrder[i])
			return next != nil && *next == types.TierOrder[i+1]
		},
		gen.IntRange(0, len(types.TierOrder)-2),
	))

	properties.Property("arbitrary labels outside the ordering yield nil", prop.ForAll(
		func(label string) bool {
			for _, known := range types.TierOrder {
				if types.TierLevel(label) == known {
					return true
				}
			}
			return NextLevel(types.TierLevel(label)) == nil
		},
		gen.AlphaString(),
	))

	properties.Property("rule thresholds rise with tier rank", prop.ForAll(
		func(i int) bool {
			rules := Rules()
			lower := rules[types.TierOrder[i]]
			upper := rules[types.TierOrder[i+1]]
			return lower.MinBalance < upper.MinBalance && lower.MinUsers < upper.MinUsers
		},
		gen.IntRange(1, len(types.TierOrder)-2),
	))

	properties.TestingRun(t)
}
