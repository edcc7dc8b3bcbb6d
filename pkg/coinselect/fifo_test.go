package coinselect

import (
	"errors"
	"testing"
)

func seqPtr(v uint32) *uint32 { return &v }

func TestSelectCoinFIFOOldestFirst(t *testing.T) {
	values := []uint64{80000, 70000, 60000, 50000, 40000, 30000}
	inputs := make([]OutputGroup, len(values))
	for i, v := range values {
		inputs[i] = OutputGroup{Value: v, Weight: 100, CreationSequence: seqPtr(uint32(i))}
	}
	opts := CoinSelectionOpt{
		TargetValue:    250000,
		TargetFeerate:  1,
		MinChangeValue: 400,
	}

	out, err := SelectCoinFIFO(inputs, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []int{0, 1, 2, 3}
	if len(out.SelectedInputs) != len(want) {
		t.Fatalf("selected = %v, want %v", out.SelectedInputs, want)
	}
	for i, idx := range want {
		if out.SelectedInputs[i] != idx {
			t.Fatalf("selected = %v, want %v", out.SelectedInputs, want)
		}
	}
}

func TestSelectCoinFIFONilSequenceSortsLast(t *testing.T) {
	inputs := []OutputGroup{
		{Value: 100, Weight: 0, CreationSequence: nil},
		{Value: 100, Weight: 0, CreationSequence: seqPtr(5)},
		{Value: 100, Weight: 0, CreationSequence: seqPtr(1)},
	}
	opts := CoinSelectionOpt{TargetValue: 250}

	out, err := SelectCoinFIFO(inputs, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Oldest first: sequence 1, then 5, then the nil (youngest) group.
	want := []int{2, 1, 0}
	if len(out.SelectedInputs) != len(want) {
		t.Fatalf("selected = %v, want %v", out.SelectedInputs, want)
	}
	for i := range want {
		if out.SelectedInputs[i] != want[i] {
			t.Fatalf("selected = %v, want %v", out.SelectedInputs, want)
		}
	}
}

func TestSelectCoinFIFOInsufficientFunds(t *testing.T) {
	inputs := []OutputGroup{
		{Value: 100, Weight: 0, CreationSequence: seqPtr(0)},
	}
	opts := CoinSelectionOpt{TargetValue: 10_000}

	_, err := SelectCoinFIFO(inputs, opts)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}
