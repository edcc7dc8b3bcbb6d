package coinselect

// Waste computes the selection's waste score: the fee paid now minus the
// fee that weight would cost at the long-term feerate, plus either the
// change output's cost (when a change output is actually created) or the
// excess value otherwise.
func Waste(opts CoinSelectionOpt, totalValue, totalWeight, currentFee uint64) float32 {
	var longTermFee float64
	if opts.LongTermFeerate != nil {
		longTermFee = float64(totalWeight) * float64(*opts.LongTermFeerate)
	}
	wasteInputs := float64(currentFee) - longTermFee

	excess := int64(totalValue) - int64(opts.TargetValue) - int64(currentFee)
	hasChange := opts.ExcessStrategy == ExcessToChange && excess >= int64(opts.MinChangeValue)

	var tail float64
	if hasChange {
		tail = float64(opts.ChangeCost)
	} else {
		tail = float64(excess)
	}

	return float32(wasteInputs + tail)
}
