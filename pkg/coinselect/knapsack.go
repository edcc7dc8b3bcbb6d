package coinselect

import (
	"math/rand/v2"
	"sort"
)

// srdTrials bounds the number of randomized attempts, matching the
// reference implementation's convention. Like the try-budgets in the
// exact matchers, exhausting it without a hit is a normal outcome, not a
// bug: the meta-selector simply falls back to the other algorithms.
const srdTrials = 100_000

// defaultKnapsackSeed seeds the uniform (inputs, options) -> (output,
// error) entry point used by the algorithm registry. Callers that need
// independent randomness across calls should use SelectCoinKnapsackSeeded
// directly with their own seed.
const defaultKnapsackSeed uint64 = 0xC01D_5EED_F00D_BA5E

// SelectCoinKnapsack is the registry entry point: a single-random-draw
// knapsack approximation seeded deterministically so repeated calls on the
// same inputs return the same result.
func SelectCoinKnapsack(inputs []OutputGroup, opts CoinSelectionOpt) (SelectionOutput, error) {
	return SelectCoinKnapsackSeeded(inputs, opts, defaultKnapsackSeed)
}

// SelectCoinKnapsackSeeded runs the randomized subset-accumulation
// approximation: each of srdTrials trials shuffles the candidate order
// with the seeded PRNG, accumulates groups until the target is met, trims
// inputs that can be dropped without falling back under target (reducing
// excess), and scores the result by waste. The best-scoring trial wins.
func SelectCoinKnapsackSeeded(inputs []OutputGroup, opts CoinSelectionOpt, seed uint64) (SelectionOutput, error) {
	if len(inputs) == 0 {
		return SelectionOutput{}, ErrInsufficientFunds
	}

	baseFee, err := CalculateFee(opts.BaseWeight, opts.TargetFeerate)
	if err != nil {
		return SelectionOutput{}, err
	}
	floor := maxU64(baseFee, opts.MinAbsoluteFee)

	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))

	order := make([]int, len(inputs))
	for i := range order {
		order[i] = i
	}

	var bestSelection []int
	var bestWaste float32
	found := false

	for trial := 0; trial < srdTrials; trial++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		selection := make([]int, 0, len(order))
		var accValue, accWeight uint64
		met := false

		for _, idx := range order {
			g := inputs[idx]
			nextValue, verr := Sum(accValue, g.Value)
			if verr != nil {
				continue
			}
			nextWeight, werr := Sum(accWeight, g.Weight)
			if werr != nil {
				continue
			}
			accValue, accWeight = nextValue, nextWeight
			selection = append(selection, idx)

			fee := feeOrFloor(accWeight, opts.TargetFeerate, floor)
			need, serr := Sum(opts.TargetValue, maxU64(fee, opts.MinAbsoluteFee))
			if serr != nil {
				continue
			}
			if accValue >= need {
				met = true
				break
			}
		}

		if !met {
			continue
		}

		selection = trimKnapsackExcess(inputs, selection, opts)

		var totalValue, totalWeight uint64
		for _, idx := range selection {
			totalValue += inputs[idx].Value
			totalWeight += inputs[idx].Weight
		}
		fee := feeOrFloor(totalWeight, opts.TargetFeerate, floor)
		waste := Waste(opts, totalValue, totalWeight, fee)

		if !found || waste < bestWaste {
			found = true
			bestWaste = waste
			bestSelection = selection
		}
	}

	if !found {
		return SelectionOutput{}, ErrInsufficientFunds
	}
	return SelectionOutput{SelectedInputs: bestSelection, Waste: WasteMetric(bestWaste)}, nil
}

// trimKnapsackExcess greedily drops the largest-value groups from the
// selection, one at a time, as long as the remainder still covers the
// target. This reduces the excess (and therefore waste) a purely random
// accumulation tends to overshoot by.
func trimKnapsackExcess(inputs []OutputGroup, selected []int, opts CoinSelectionOpt) []int {
	kept := append([]int(nil), selected...)
	sort.SliceStable(kept, func(i, j int) bool {
		return inputs[kept[i]].Value > inputs[kept[j]].Value
	})

	for i := 0; i < len(kept); {
		candidate := make([]int, 0, len(kept)-1)
		candidate = append(candidate, kept[:i]...)
		candidate = append(candidate, kept[i+1:]...)

		var value, weight uint64
		for _, idx := range candidate {
			value += inputs[idx].Value
			weight += inputs[idx].Weight
		}
		fee, ferr := CalculateFee(weight, opts.TargetFeerate)
		if ferr != nil {
			i++
			continue
		}
		need := opts.TargetValue + maxU64(fee, opts.MinAbsoluteFee)
		if value >= need {
			kept = candidate
			continue
		}
		i++
	}

	return kept
}
