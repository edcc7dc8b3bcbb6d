package coinselect

import (
	"log"
	"sort"
)

// bnbTryBudget bounds total node visits for the exact matcher, mirroring
// the hard guardrails dp_solver.go and cpsat_solver.go use to refuse
// unbounded search rather than hang.
const bnbTryBudget = 1_000_000

// bnbCandidate pairs a group with its original index so the search can
// report positions back into the caller's slice after sorting.
type bnbCandidate struct {
	index int
	group OutputGroup
}

// bnbContext is the mutable search state threaded through the recursion:
// the match window, the decrementing try-budget, and the best solution
// found so far.
type bnbContext struct {
	opts           CoinSelectionOpt
	targetForMatch uint64
	matchRange     uint64
	tries          int
	bestSelection  []int
	bestWaste      float32
	found          bool
}

// SelectCoinBnB runs the branch-and-bound exact matcher: it only accepts a
// solution whose accumulated effective value lands inside
// [targetForMatch, targetForMatch+matchRange], and among those minimizes
// waste. It explores include before exclude at each depth, so the
// smaller-subset direction is tried first on ties.
func SelectCoinBnB(inputs []OutputGroup, opts CoinSelectionOpt) (SelectionOutput, error) {
	costPerInput, err := CalculateFee(opts.AvgInputWeight, opts.TargetFeerate)
	if err != nil {
		return SelectionOutput{}, err
	}
	costPerOutput, err := CalculateFee(opts.AvgOutputWeight, opts.TargetFeerate)
	if err != nil {
		return SelectionOutput{}, err
	}
	baseFee, err := CalculateFee(opts.BaseWeight, opts.TargetFeerate)
	if err != nil {
		return SelectionOutput{}, err
	}

	floor := maxU64(baseFee, opts.MinAbsoluteFee)
	targetForMatch, err := Sum(opts.TargetValue, opts.MinChangeValue)
	if err != nil {
		return SelectionOutput{}, err
	}
	targetForMatch, err = Sum(targetForMatch, floor)
	if err != nil {
		return SelectionOutput{}, err
	}

	matchRange, err := Sum(costPerInput, costPerOutput)
	if err != nil {
		return SelectionOutput{}, err
	}

	sorted := make([]bnbCandidate, len(inputs))
	for i, g := range inputs {
		sorted[i] = bnbCandidate{index: i, group: g}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].group.Value < sorted[j].group.Value
	})

	ctx := &bnbContext{
		opts:           opts,
		targetForMatch: targetForMatch,
		matchRange:     matchRange,
		tries:          bnbTryBudget,
	}

	selected := make([]int, 0, len(sorted))
	bnbSearch(sorted, &selected, 0, 0, 0, ctx)

	if !ctx.found {
		if ctx.tries == 0 {
			log.Printf("[bnb] try-budget exhausted after %d nodes without a match in [%d, %d]",
				bnbTryBudget-ctx.tries, ctx.targetForMatch, ctx.targetForMatch+ctx.matchRange)
		} else {
			log.Printf("[bnb] search finished after %d nodes without a match in [%d, %d]",
				bnbTryBudget-ctx.tries, ctx.targetForMatch, ctx.targetForMatch+ctx.matchRange)
		}
		return SelectionOutput{}, ErrNoSolutionFound
	}

	return SelectionOutput{SelectedInputs: ctx.bestSelection, Waste: WasteMetric(ctx.bestWaste)}, nil
}

// bnbSearch explores include/exclude at depth. accValue/accWeight are the
// raw (not fee-adjusted) sum of the included groups' values and weights;
// the node's effective value is derived once per node as
// accValue - fee_for(accWeight), per spec.
func bnbSearch(sorted []bnbCandidate, selected *[]int, accValue, accWeight uint64, depth int, ctx *bnbContext) {
	if ctx.tries == 0 || depth >= len(sorted) {
		return
	}
	ctx.tries--

	fee := feeOrFloor(accWeight, ctx.opts.TargetFeerate, ctx.opts.MinAbsoluteFee)

	var effective uint64
	if accValue > fee {
		effective = accValue - fee
	}

	if effective > ctx.targetForMatch+ctx.matchRange {
		return
	}

	if effective >= ctx.targetForMatch {
		waste := Waste(ctx.opts, accValue, accWeight, fee)
		if !ctx.found || waste < ctx.bestWaste {
			ctx.found = true
			ctx.bestWaste = waste
			ctx.bestSelection = append([]int(nil), (*selected)...)
		}
		return
	}

	entry := sorted[depth]

	// Branch 1: include.
	*selected = append(*selected, entry.index)
	bnbSearch(sorted, selected, accValue+entry.group.Value, accWeight+entry.group.Weight, depth+1, ctx)
	*selected = (*selected)[:len(*selected)-1]

	// Branch 2: exclude.
	bnbSearch(sorted, selected, accValue, accWeight, depth+1, ctx)
}
