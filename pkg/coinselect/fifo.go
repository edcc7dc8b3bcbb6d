package coinselect

import "sort"

type fifoCandidate struct {
	index int
	group OutputGroup
}

// SelectCoinFIFO accumulates groups oldest-first (ascending
// CreationSequence, with nil sorting last as the youngest) until the
// accumulated value covers target + max(current fee, min absolute fee) +
// min change value.
func SelectCoinFIFO(inputs []OutputGroup, opts CoinSelectionOpt) (SelectionOutput, error) {
	sorted := make([]fifoCandidate, len(inputs))
	for i, g := range inputs {
		sorted[i] = fifoCandidate{index: i, group: g}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].group.CreationSequence, sorted[j].group.CreationSequence
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})

	selected := make([]int, 0, len(sorted))
	var accValue, accWeight uint64

	for _, entry := range sorted {
		var err error
		accValue, err = Sum(accValue, entry.group.Value)
		if err != nil {
			return SelectionOutput{}, err
		}
		accWeight, err = Sum(accWeight, entry.group.Weight)
		if err != nil {
			return SelectionOutput{}, err
		}
		selected = append(selected, entry.index)

		currentFee, ferr := CalculateFee(accWeight, opts.TargetFeerate)
		if ferr != nil {
			return SelectionOutput{}, ferr
		}
		floor := maxU64(currentFee, opts.MinAbsoluteFee)

		required, serr := Sum(opts.TargetValue, floor)
		if serr != nil {
			return SelectionOutput{}, serr
		}
		required, serr = Sum(required, opts.MinChangeValue)
		if serr != nil {
			return SelectionOutput{}, serr
		}

		if accValue >= required {
			waste := Waste(opts, accValue, accWeight, currentFee)
			return SelectionOutput{SelectedInputs: selected, Waste: WasteMetric(waste)}, nil
		}
	}

	return SelectionOutput{}, ErrInsufficientFunds
}
