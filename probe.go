package refdex

import "context"

// Strategy selects how a query is expanded into retrieval probes.
type Strategy string

// Expansion strategies. HyDE generates hypothetical answer passages; HyQE
// generates hypothetical questions searched against question vectors; none
// uses the raw query only and is the degradation path when generation
// fails.
const (
	StrategyNone Strategy = "none"
	StrategyHyDE Strategy = "hyde"
	StrategyHyQE Strategy = "hyqe"
)

// Valid returns true if s is a known expansion strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyNone, StrategyHyDE, StrategyHyQE:
		return true
	}
	return false
}

// ProbeType tags what produced a retrieval probe.
type ProbeType string

// Probe types.
const (
	ProbeRaw  ProbeType = "raw"
	ProbeHyDE ProbeType = "hyde"
	ProbeHyQE ProbeType = "hyqe"
)

// Probe is one piece of text embedded and searched on behalf of a query.
// Probes are ephemeral; they live within a single query.
type Probe struct {
	ID   string    `json:"id"`
	Type ProbeType `json:"type"`
	Text string    `json:"text"`
}

// Expander turns a user query into retrieval probes. The strategy and
// fan-out are implementation configuration.
type Expander interface {
	// Expand returns at least one probe. The raw query is always included;
	// generation failures degrade to the raw query alone rather than
	// failing the call.
	Expand(ctx context.Context, query string) ([]Probe, error)
}
