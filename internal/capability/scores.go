package capability

import (
	"github.com/racksmith/racksmith/internal/rig"
)

// Score policy v1. Each score is a fixed linear formula over category counts
// clamped to [0,1]. The learning-gradient sub-metric belongs to the layout
// suggester, not to this packet.
const ScorePolicyVersion = 1

// Formula weights, policy v1.
const (
	modBudgetModulatorWeight  = 2.0
	modBudgetControllerWeight = 1.0
	modBudgetTargetWeight     = 3.0

	routingRouterWeight = 2.0
	routingNormalWeight = 1.0

	clockWeight = 3.0

	chaosModulatorWeight = 1.0
	chaosFXWeight        = 1.0
	chaosNormalWeight    = 2.0

	perfControllerWeight = 2.0
	perfRouterWeight     = 1.0
)

// Scores are the five derived rig scores, each in [0,1].
type Scores struct {
	ModulationBudget   float64 `json:"modulation_budget"`
	RoutingFlexibility float64 `json:"routing_flexibility"`
	ClockCoherence     float64 `json:"clock_coherence"`
	ChaosHeadroom      float64 `json:"chaos_headroom"`
	PerformanceDensity float64 `json:"performance_density"`
}

// MetricsPacket is the aggregate capability picture of one canonical rig.
// It is a pure function of the rig: same rig, same packet.
type MetricsPacket struct {
	PolicyVersion int            `json:"policy_version"`
	RigHash       string         `json:"rig_hash"`
	ModuleCount   int            `json:"module_count"`
	Counts        map[string]int `json:"counts"`
	Scores        Scores         `json:"scores"`
}

// Map computes the metrics packet for a canonical rig.
func Map(r *rig.Rig) (*MetricsPacket, error) {
	hash, err := r.Hash()
	if err != nil {
		return nil, err
	}

	counts := Counts(r)
	n := float64(len(r.Modules))
	if n == 0 {
		n = 1
	}
	c := func(cat Category) float64 { return float64(counts[cat]) }
	denom := func(v float64) float64 {
		if v < 1 {
			return 1
		}
		return v
	}

	scores := Scores{
		ModulationBudget: clamp01(
			(modBudgetModulatorWeight*c(CategoryModulators) + modBudgetControllerWeight*c(CategoryControllers)) /
				(modBudgetTargetWeight * denom(c(CategorySources)+c(CategoryShapers)))),
		RoutingFlexibility: clamp01(
			(routingRouterWeight*c(CategoryRouters) + routingNormalWeight*c(CategoryNormals)) / n),
		ClockCoherence: clamp01(clockWeight * c(CategoryClock) / n),
		ChaosHeadroom: clamp01(
			(chaosModulatorWeight*c(CategoryModulators) + chaosFXWeight*c(CategoryFX) + chaosNormalWeight*c(CategoryNormals)) / n),
		PerformanceDensity: clamp01(
			(perfControllerWeight*c(CategoryControllers) + perfRouterWeight*c(CategoryRouters)) / n),
	}

	return &MetricsPacket{
		PolicyVersion: ScorePolicyVersion,
		RigHash:       hash,
		ModuleCount:   len(r.Modules),
		Counts:        fullCounts(counts),
		Scores:        scores,
	}, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
