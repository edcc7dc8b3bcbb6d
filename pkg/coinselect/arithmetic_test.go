package coinselect

import (
	"errors"
	"math"
	"testing"
)

func TestSum(t *testing.T) {
	got, err := Sum(2, 3)
	if err != nil || got != 5 {
		t.Fatalf("Sum(2,3) = %d, %v; want 5, nil", got, err)
	}

	_, err = Sum(math.MaxUint64, 1)
	if !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("Sum(MaxUint64,1) err = %v; want ErrArithmeticOverflow", err)
	}
}

func TestCalculateFee(t *testing.T) {
	cases := []struct {
		weight  uint64
		feerate float32
		want    uint64
	}{
		{0, 1.5, 0},
		{100, 0, 0},
		{100, 1.0, 100},
		{100, 1.5, 150},
		{3, 1.1, 4}, // 3.3 -> ceil -> 4
		{1, 0.1, 1}, // 0.1 -> ceil -> 1
	}
	for _, c := range cases {
		got, err := CalculateFee(c.weight, c.feerate)
		if err != nil {
			t.Fatalf("CalculateFee(%d,%v) unexpected error: %v", c.weight, c.feerate, err)
		}
		if got != c.want {
			t.Errorf("CalculateFee(%d,%v) = %d, want %d", c.weight, c.feerate, got, c.want)
		}
	}
}

func TestCalculateFeeInvalidRate(t *testing.T) {
	for _, rate := range []float32{-1, float32(math.NaN()), float32(math.Inf(1))} {
		if _, err := CalculateFee(10, rate); !errors.Is(err, ErrInvalidFeeRate) {
			t.Errorf("CalculateFee(10, %v) err = %v; want ErrInvalidFeeRate", rate, err)
		}
	}
}

func TestCalculateFeeMonotonic(t *testing.T) {
	// Fee monotonicity (spec.md §8 property 5): non-decreasing in both
	// weight and feerate.
	prevByWeight, _ := CalculateFee(0, 2.0)
	for w := uint64(1); w <= 50; w++ {
		fee, err := CalculateFee(w, 2.0)
		if err != nil {
			t.Fatalf("CalculateFee(%d, 2.0) error: %v", w, err)
		}
		if fee < prevByWeight {
			t.Fatalf("fee decreased with weight: weight=%d fee=%d prev=%d", w, fee, prevByWeight)
		}
		prevByWeight = fee
	}

	prevByRate, _ := CalculateFee(100, 0)
	for i := 1; i <= 50; i++ {
		rate := float32(i) * 0.1
		fee, err := CalculateFee(100, rate)
		if err != nil {
			t.Fatalf("CalculateFee(100, %v) error: %v", rate, err)
		}
		if fee < prevByRate {
			t.Fatalf("fee decreased with feerate: rate=%v fee=%d prev=%d", rate, fee, prevByRate)
		}
		prevByRate = fee
	}
}

func TestEffectiveValueSaturatesAtZero(t *testing.T) {
	g := OutputGroup{Value: 100, Weight: 1000}
	got, err := EffectiveValue(g, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("EffectiveValue = %d, want 0 (saturated)", got)
	}

	g2 := OutputGroup{Value: 1000, Weight: 100}
	got2, err := EffectiveValue(g2, 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got2 != 900 {
		t.Errorf("EffectiveValue = %d, want 900", got2)
	}
}
