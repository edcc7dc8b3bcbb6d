// Package selectservice orchestrates a single coin-selection call: it runs
// the pure coinselect.SelectCoin algorithm, stamps the outcome with an
// audit-correlatable run ID, and (when a store is configured) persists the
// result for later inspection.
package selectservice

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/rawblock/coinselect-engine/pkg/coinselect"
)

// Result is a selection run's outcome, including bookkeeping the pure
// algorithm layer has no business knowing about.
type Result struct {
	RunID          string
	SelectedInputs []int
	Waste          coinselect.WasteMetric
	Change         int64
	RanAt          time.Time
}

// Store persists completed selection runs. Implemented by db.PostgresStore
// (Postgres-backed) in internal/db; nil is a valid "don't persist" store.
type Store interface {
	SaveSelectionRun(ctx context.Context, run Result, inputCount int, targetValue uint64) error
}

// Service wraps coinselect.SelectCoin with run-ID stamping and optional
// persistence. It holds no selection state itself between calls.
type Service struct {
	store Store
}

// New builds a Service. Passing a nil store disables persistence; the
// service still runs and returns selections.
func New(store Store) *Service {
	return &Service{store: store}
}

// Select runs the meta-selector over inputs/opts, stamps the result with a
// fresh run ID, and persists it via the configured Store (logging rather
// than failing the call if persistence errors, since the selection itself
// already succeeded).
func (s *Service) Select(ctx context.Context, inputs []coinselect.OutputGroup, opts coinselect.CoinSelectionOpt) (Result, error) {
	out, err := coinselect.SelectCoin(inputs, opts)
	if err != nil {
		return Result{}, fmt.Errorf("selectservice: %w", err)
	}

	var totalSelected uint64
	for _, idx := range out.SelectedInputs {
		totalSelected += inputs[idx].Value
	}
	change := int64(totalSelected) - int64(opts.TargetValue)

	result := Result{
		RunID:          uuid.NewString(),
		SelectedInputs: out.SelectedInputs,
		Waste:          out.Waste,
		Change:         change,
		RanAt:          time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveSelectionRun(ctx, result, len(inputs), opts.TargetValue); err != nil {
			log.Printf("selectservice: failed to persist run %s: %v", result.RunID, err)
		}
	}

	return result, nil
}
