package coinselect

import "sort"

// leastChangeCandidate is a filtered input paired with its effective value.
type leastChangeCandidate struct {
	index    int
	netValue uint64
}

// leastChangeState is one node of the explicit-stack DFS: the next index to
// consider, the accumulated effective value and weight, the selection so
// far, and its cardinality.
type leastChangeState struct {
	index        int
	accEffective uint64
	accWeight    uint64
	selection    []int
	count        int
}

type leastChangeBest struct {
	selection []int
	change    uint64
	count     int
	found     bool
}

// SelectCoinBnBLeastChange searches for the selection that minimizes
// change (accumulated effective value over the required target), breaking
// ties by input count. It prunes with a suffix sum of effective values and
// recomputes the admission fee from the candidate selection's actual
// weight rather than a fixed estimate — the most conservative of the
// least-change variants.
func SelectCoinBnBLeastChange(inputs []OutputGroup, opts CoinSelectionOpt) (SelectionOutput, error) {
	baseFee, err := CalculateFee(opts.BaseWeight, opts.TargetFeerate)
	if err != nil {
		return SelectionOutput{}, err
	}
	floor := maxU64(baseFee, opts.MinAbsoluteFee)

	targetTotal, err := Sum(opts.TargetValue, opts.MinChangeValue)
	if err != nil {
		return SelectionOutput{}, err
	}
	targetTotal, err = Sum(targetTotal, floor)
	if err != nil {
		return SelectionOutput{}, err
	}

	filtered := make([]leastChangeCandidate, 0, len(inputs))
	for i, g := range inputs {
		netValue, ferr := EffectiveValue(g, opts.TargetFeerate)
		if ferr != nil {
			return SelectionOutput{}, ferr
		}
		if netValue > 0 {
			filtered = append(filtered, leastChangeCandidate{index: i, netValue: netValue})
		}
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].netValue > filtered[j].netValue
	})

	n := len(filtered)
	remaining := make([]uint64, n+1)
	for i := n - 1; i >= 0; i-- {
		remaining[i] = remaining[i+1] + filtered[i].netValue
	}

	var best leastChangeBest
	stack := []leastChangeState{{index: 0}}

	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if state.index >= n {
			continue
		}
		if state.accEffective+remaining[state.index] < targetTotal {
			continue
		}

		// Push "skip" first so "include" is evaluated next (popped first).
		stack = append(stack, leastChangeState{
			index:        state.index + 1,
			accEffective: state.accEffective,
			accWeight:    state.accWeight,
			selection:    state.selection,
			count:        state.count,
		})

		cand := filtered[state.index]
		newEffective := state.accEffective + cand.netValue
		newWeight := state.accWeight + inputs[cand.index].Weight
		newSelection := make([]int, len(state.selection)+1)
		copy(newSelection, state.selection)
		newSelection[len(state.selection)] = cand.index
		newCount := state.count + 1

		if newEffective < targetTotal {
			stack = append(stack, leastChangeState{
				index:        state.index + 1,
				accEffective: newEffective,
				accWeight:    newWeight,
				selection:    newSelection,
				count:        newCount,
			})
			continue
		}

		admitFee := feeOrFloor(newWeight, opts.TargetFeerate, opts.MinAbsoluteFee)
		admitFloor := maxU64(admitFee, opts.MinAbsoluteFee)
		required, serr := Sum(opts.TargetValue, opts.MinChangeValue)
		if serr != nil {
			return SelectionOutput{}, serr
		}
		required, serr = Sum(required, admitFloor)
		if serr != nil {
			return SelectionOutput{}, serr
		}

		if newEffective >= required {
			change := newEffective - required
			if !best.found || change < best.change || (change == best.change && newCount < best.count) {
				best = leastChangeBest{selection: newSelection, change: change, count: newCount, found: true}
			}
		} else {
			stack = append(stack, leastChangeState{
				index:        state.index + 1,
				accEffective: newEffective,
				accWeight:    newWeight,
				selection:    newSelection,
				count:        newCount,
			})
		}
	}

	if !best.found {
		return SelectionOutput{}, ErrInsufficientFunds
	}

	var totalValue, totalWeight uint64
	for _, idx := range best.selection {
		totalValue += inputs[idx].Value
		totalWeight += inputs[idx].Weight
	}
	estimatedFee := feeOrFloor(totalWeight, opts.TargetFeerate, 0)
	waste := Waste(opts, totalValue, totalWeight, estimatedFee)

	return SelectionOutput{SelectedInputs: best.selection, Waste: WasteMetric(waste)}, nil
}
