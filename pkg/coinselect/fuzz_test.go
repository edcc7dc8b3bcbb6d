package coinselect

import "testing"

// FuzzSelectCoin feeds SelectCoin arbitrary, possibly-degenerate inputs and
// requires only that it never panics. Arithmetic overflow, non-positive
// targets, and unreachable goals are all expected outcomes surfaced as
// errors, not crashes.
func FuzzSelectCoin(f *testing.F) {
	f.Add(uint64(1000), uint64(200), uint64(195782), float32(5), float32(1))
	f.Add(uint64(0), uint64(0), uint64(0), float32(0), float32(0))
	f.Add(^uint64(0), uint64(1), uint64(1), float32(1e10), float32(-1))

	f.Fuzz(func(t *testing.T, value, weight, target uint64, feerate, ltf float32) {
		inputs := []OutputGroup{
			{Value: value, Weight: weight},
			{Value: value / 3, Weight: weight / 2},
			{Value: value / 7, Weight: weight},
		}
		opts := CoinSelectionOpt{
			TargetValue:     target,
			TargetFeerate:   feerate,
			LongTermFeerate: &ltf,
			MinAbsoluteFee:  weight,
			BaseWeight:      weight,
			ChangeWeight:    weight,
			ChangeCost:      value,
			AvgInputWeight:  weight,
			AvgOutputWeight: weight,
			MinChangeValue:  value,
			ExcessStrategy:  ExcessToChange,
		}

		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("SelectCoin panicked: %v", r)
			}
		}()
		_, _ = SelectCoin(inputs, opts)
	})
}
