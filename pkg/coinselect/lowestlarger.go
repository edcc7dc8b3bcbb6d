package coinselect

import "sort"

type lowestLargerCandidate struct {
	index     int
	group     OutputGroup
	effective uint64
}

// SelectCoinLowestLarger sorts by effective value ascending, finds the
// partition point of groups whose raw value fits within target+fee, and
// walks that prefix largest-first before falling back to the ascending
// suffix of larger groups if still short.
func SelectCoinLowestLarger(inputs []OutputGroup, opts CoinSelectionOpt) (SelectionOutput, error) {
	baseFee, err := CalculateFee(opts.BaseWeight, opts.TargetFeerate)
	if err != nil {
		return SelectionOutput{}, err
	}
	floor := maxU64(baseFee, opts.MinAbsoluteFee)

	target, err := Sum(opts.TargetValue, opts.MinChangeValue)
	if err != nil {
		return SelectionOutput{}, err
	}
	target, err = Sum(target, floor)
	if err != nil {
		return SelectionOutput{}, err
	}

	sorted := make([]lowestLargerCandidate, len(inputs))
	for i, g := range inputs {
		effective, eerr := EffectiveValue(g, opts.TargetFeerate)
		if eerr != nil {
			return SelectionOutput{}, eerr
		}
		sorted[i] = lowestLargerCandidate{index: i, group: g, effective: effective}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].effective < sorted[j].effective
	})

	partition := sort.Search(len(sorted), func(i int) bool {
		entry := sorted[i]
		fee, ferr := CalculateFee(entry.group.Weight, opts.TargetFeerate)
		if ferr != nil {
			return true
		}
		targetAndFee, serr := Sum(target, fee)
		if serr != nil {
			return true
		}
		return entry.group.Value > targetAndFee
	})

	selected := make([]int, 0, len(sorted))
	var accValue, accWeight, estimatedFees uint64

	for i := partition - 1; i >= 0; i-- {
		entry := sorted[i]
		accValue, err = Sum(accValue, entry.group.Value)
		if err != nil {
			return SelectionOutput{}, err
		}
		accWeight, err = Sum(accWeight, entry.group.Weight)
		if err != nil {
			return SelectionOutput{}, err
		}
		estimatedFees, err = CalculateFee(accWeight, opts.TargetFeerate)
		if err != nil {
			return SelectionOutput{}, err
		}
		selected = append(selected, entry.index)

		required, serr := Sum(target, estimatedFees)
		if serr != nil {
			return SelectionOutput{}, serr
		}
		if accValue >= required {
			break
		}
	}

	if required, rerr := Sum(target, estimatedFees); rerr != nil {
		return SelectionOutput{}, rerr
	} else if accValue < required {
		for i := partition; i < len(sorted); i++ {
			entry := sorted[i]
			accValue, err = Sum(accValue, entry.group.Value)
			if err != nil {
				return SelectionOutput{}, err
			}
			accWeight, err = Sum(accWeight, entry.group.Weight)
			if err != nil {
				return SelectionOutput{}, err
			}
			estimatedFees, err = CalculateFee(accWeight, opts.TargetFeerate)
			if err != nil {
				return SelectionOutput{}, err
			}
			selected = append(selected, entry.index)

			floorFee := maxU64(estimatedFees, opts.MinAbsoluteFee)
			required2, serr := Sum(target, floorFee)
			if serr != nil {
				return SelectionOutput{}, serr
			}
			if accValue >= required2 {
				break
			}
		}
	}

	required, rerr := Sum(target, estimatedFees)
	if rerr != nil {
		return SelectionOutput{}, rerr
	}
	if accValue < required {
		return SelectionOutput{}, ErrInsufficientFunds
	}

	waste := Waste(opts, accValue, accWeight, estimatedFees)
	return SelectionOutput{SelectedInputs: selected, Waste: WasteMetric(waste)}, nil
}
