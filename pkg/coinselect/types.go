// Package coinselect implements UTXO coin selection for Bitcoin-style
// wallets: given a set of spendable candidate outputs and a payment target,
// it chooses a subset whose effective value covers the target while
// minimizing a waste metric that balances current fees against the
// long-term cost of a change output.
package coinselect

import "errors"

// Sentinel errors returned by the algorithms and the meta-selector. Wrap
// with fmt.Errorf("%w", ...) at call boundaries rather than introducing a
// custom error type hierarchy.
var (
	// ErrInsufficientFunds means the effective value of the candidate set
	// cannot cover the target under the current fee rate.
	ErrInsufficientFunds = errors.New("coinselect: insufficient funds")

	// ErrNoSolutionFound means the branch-and-bound matcher exhausted its
	// try-budget or search window without landing inside the match range.
	// Other algorithms may still succeed.
	ErrNoSolutionFound = errors.New("coinselect: no solution found")

	// ErrNonPositiveTarget means target_value was zero. This is a caller
	// bug, not a condition to retry against.
	ErrNonPositiveTarget = errors.New("coinselect: target value must be positive")

	// ErrArithmeticOverflow means a u64 accumulation overflowed.
	ErrArithmeticOverflow = errors.New("coinselect: arithmetic overflow")

	// ErrInvalidFeeRate means a feerate was negative or not finite.
	ErrInvalidFeeRate = errors.New("coinselect: invalid fee rate")
)

// ExcessStrategy selects where surplus value beyond the target goes.
type ExcessStrategy int

const (
	// ExcessToFee absorbs the surplus into the transaction fee.
	ExcessToFee ExcessStrategy = iota
	// ExcessToRecipient sends the surplus to the payment recipient.
	ExcessToRecipient
	// ExcessToChange returns the surplus to the spender as a change output,
	// subject to MinChangeValue.
	ExcessToChange
)

func (s ExcessStrategy) String() string {
	switch s {
	case ExcessToFee:
		return "to_fee"
	case ExcessToRecipient:
		return "to_recipient"
	case ExcessToChange:
		return "to_change"
	default:
		return "unknown"
	}
}

// OutputGroup is a spendable candidate, possibly aggregating several raw
// inputs (e.g. dust consolidation). Group identity is positional: callers
// identify a group by its index in the input slice. No algorithm mutates a
// group.
type OutputGroup struct {
	// Value is the absolute amount in the smallest unit (satoshis).
	Value uint64

	// Weight is this group's contribution to transaction weight
	// (witness + scriptSig), used to price its own inclusion.
	Weight uint64

	// InputCount is how many raw inputs this group represents.
	InputCount int

	// CreationSequence is a monotonically increasing age indicator. nil
	// means unknown/untracked; such groups sort last (youngest) among
	// FIFO candidates.
	CreationSequence *uint32
}

// CoinSelectionOpt carries the parameters of a single selection call.
type CoinSelectionOpt struct {
	// TargetValue is the required payment amount. Must be > 0.
	TargetValue uint64

	// TargetFeerate prices inputs/outputs now, in units per weight.
	TargetFeerate float32

	// LongTermFeerate is the expected future fee rate used by the waste
	// metric. nil disables the long-term component.
	LongTermFeerate *float32

	// MinAbsoluteFee floors the total transaction fee.
	MinAbsoluteFee uint64

	// BaseWeight is fixed transaction overhead (version, locktime, ...).
	BaseWeight uint64

	// ChangeWeight is the weight added if a change output is created.
	ChangeWeight uint64

	// ChangeCost is the absolute cost of emitting a change output (its fee
	// now plus its future spending fee).
	ChangeCost uint64

	// AvgInputWeight and AvgOutputWeight are typical per-input/output
	// weights, used by BnB to size its match window.
	AvgInputWeight  uint64
	AvgOutputWeight uint64

	// MinChangeValue is the minimum amount a change output must have to be
	// worth creating.
	MinChangeValue uint64

	// ExcessStrategy selects where surplus beyond the target goes.
	ExcessStrategy ExcessStrategy
}

// WasteMetric is a scalar selection score. Lower is better; it may be
// negative. NaN is only possible when LongTermFeerate is NaN, and is
// treated as equal to everything by the meta-selector's tie-break.
type WasteMetric float32

// SelectionOutput is the result of a successful selection: the indices of
// the chosen groups (into the original input slice) plus the waste score
// that selection achieved.
type SelectionOutput struct {
	SelectedInputs []int
	Waste          WasteMetric
}

// CoinSelectionFunc is the signature shared by every selection algorithm
// and by the meta-selector itself.
type CoinSelectionFunc func(inputs []OutputGroup, opts CoinSelectionOpt) (SelectionOutput, error)
