package selectservice

import (
	"context"
	"errors"
	"testing"

	"github.com/rawblock/coinselect-engine/pkg/coinselect"
)

type fakeStore struct {
	saved   []Result
	failErr error
}

func (f *fakeStore) SaveSelectionRun(ctx context.Context, run Result, inputCount int, targetValue uint64) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.saved = append(f.saved, run)
	return nil
}

func testInputs() []coinselect.OutputGroup {
	return []coinselect.OutputGroup{
		{Value: 60_000, Weight: 300, InputCount: 1},
		{Value: 50_000, Weight: 300, InputCount: 1},
	}
}

func testOpts() coinselect.CoinSelectionOpt {
	return coinselect.CoinSelectionOpt{
		TargetValue:     100_000,
		TargetFeerate:   1,
		MinAbsoluteFee:  0,
		BaseWeight:      10,
		ChangeWeight:    50,
		ChangeCost:      10,
		AvgInputWeight:  300,
		AvgOutputWeight: 150,
		MinChangeValue:  1_000,
		ExcessStrategy:  coinselect.ExcessToChange,
	}
}

func TestServiceSelectStampsRunIDAndPersists(t *testing.T) {
	store := &fakeStore{}
	svc := New(store)

	result, err := svc.Select(context.Background(), testInputs(), testOpts())
	if err != nil {
		t.Fatalf("Select: unexpected error: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected a non-empty run ID")
	}
	if len(result.SelectedInputs) == 0 {
		t.Fatal("expected at least one selected input")
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected 1 persisted run, got %d", len(store.saved))
	}
	if store.saved[0].RunID != result.RunID {
		t.Errorf("persisted run ID %q does not match returned run ID %q", store.saved[0].RunID, result.RunID)
	}
}

func TestServiceSelectWithNilStoreDoesNotPersist(t *testing.T) {
	svc := New(nil)

	result, err := svc.Select(context.Background(), testInputs(), testOpts())
	if err != nil {
		t.Fatalf("Select: unexpected error: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected a non-empty run ID even without a store")
	}
}

func TestServiceSelectPersistenceFailureDoesNotFailCall(t *testing.T) {
	store := &fakeStore{failErr: errors.New("connection refused")}
	svc := New(store)

	result, err := svc.Select(context.Background(), testInputs(), testOpts())
	if err != nil {
		t.Fatalf("Select: a persistence failure must not fail the call, got: %v", err)
	}
	if result.RunID == "" {
		t.Fatal("expected a run ID despite the persistence failure")
	}
}

func TestServiceSelectPropagatesAlgorithmError(t *testing.T) {
	svc := New(nil)
	opts := testOpts()
	opts.TargetValue = 1_000_000_000

	_, err := svc.Select(context.Background(), testInputs(), opts)
	if err == nil {
		t.Fatal("expected an error when no algorithm can reach the target")
	}
}
