package coinselect

import (
	"log"
	"math"
)

// registeredAlgorithm pairs a name with its selection function, forming the
// static algorithm table the meta-selector iterates. Adding an algorithm
// here must not change the tie-break semantics in lessCandidate.
type registeredAlgorithm struct {
	name string
	fn   CoinSelectionFunc
}

var algorithms = []registeredAlgorithm{
	{"bnb", SelectCoinBnB},
	{"leastchange", SelectCoinBnBLeastChange},
	{"lowestlarger", SelectCoinLowestLarger},
	{"fifo", SelectCoinFIFO},
	{"knapsack", SelectCoinKnapsack},
}

type candidateResult struct {
	name   string
	output SelectionOutput
	change uint64
}

// SelectCoin is the global coin selection entry point. It runs every
// registered algorithm against the same (inputs, opts), discards failures,
// and returns the result minimizing the lexicographic tuple
// (change, waste, input count). If every algorithm fails it returns
// ErrInsufficientFunds; a zero target returns ErrNonPositiveTarget without
// running anything.
func SelectCoin(inputs []OutputGroup, opts CoinSelectionOpt) (SelectionOutput, error) {
	if opts.TargetValue == 0 {
		return SelectionOutput{}, ErrNonPositiveTarget
	}

	results := make([]candidateResult, 0, len(algorithms))
	for _, algo := range algorithms {
		output, err := algo.fn(inputs, opts)
		if err != nil {
			log.Printf("[select-coin] algorithm %q failed: %v", algo.name, err)
			continue
		}

		var totalValue uint64
		for _, idx := range output.SelectedInputs {
			totalValue += inputs[idx].Value
		}
		var change uint64
		if totalValue > opts.TargetValue {
			change = totalValue - opts.TargetValue
		}

		results = append(results, candidateResult{name: algo.name, output: output, change: change})
	}

	if len(results) == 0 {
		return SelectionOutput{}, ErrInsufficientFunds
	}

	best := results[0]
	for _, r := range results[1:] {
		if lessCandidate(r, best) {
			best = r
		}
	}
	return best.output, nil
}

// lessCandidate orders two successful results by (change asc, waste asc,
// cardinality asc). NaN waste compares equal to everything, falling
// through to cardinality.
func lessCandidate(a, b candidateResult) bool {
	if a.change != b.change {
		return a.change < b.change
	}
	if !wasteEqual(a.output.Waste, b.output.Waste) {
		return a.output.Waste < b.output.Waste
	}
	return len(a.output.SelectedInputs) < len(b.output.SelectedInputs)
}

func wasteEqual(a, b WasteMetric) bool {
	fa, fb := float64(a), float64(b)
	if math.IsNaN(fa) || math.IsNaN(fb) {
		return true
	}
	return fa == fb
}
