package derive

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: a percentage meter never renders outside [0,100], whatever the
// raw ratio is.
func TestProperty_ClampPctStaysInRange(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("clamped percentage in [0,100]", prop.ForAll(
		func(used, total float64) bool {
			pct := ClampPct(used, total)
			return pct >= 0 && pct <= 100
		},
		gen.Float64Range(-1e9, 1e9),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// Property: raising margin or loss never lowers the risk level.
func TestProperty_RiskLevelMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)
	cfg := testRiskConfig()

	rank := func(l RiskLevel) int {
		switch l {
		case RiskDanger:
			return 2
		case RiskWarn:
			return 1
		default:
			return 0
		}
	}

	properties.Property("risk level monotonic in margin and loss", prop.ForAll(
		func(margin, loss, bumpMargin, bumpLoss float64) bool {
			before := rank(Risk(margin, loss, cfg))
			after := rank(Risk(margin+bumpMargin, loss+bumpLoss, cfg))
			return after >= before
		},
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 100),
		gen.Float64Range(0, 50),
		gen.Float64Range(0, 50),
	))

	properties.TestingRun(t)
}

// Property: lots are always non-negative.
func TestProperty_LotsNonNegative(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("lots never negative", prop.ForAll(
		func(qty, lotSize int) bool {
			return Lots(qty, lotSize) >= 0
		},
		gen.IntRange(-1_000_000, 1_000_000),
		gen.IntRange(-100, 1000),
	))

	properties.TestingRun(t)
}
