package shares

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

func testIDs(t *testing.T, n int) []uuid.UUID {
	t.Helper()
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func mustLedger(t *testing.T, ids []uuid.UUID) *Ledger {
	t.Helper()
	l, err := NewLedger(999, 1, ids)
	if err != nil {
		t.Fatalf("NewLedger: %v", err)
	}
	return l
}

func TestNewLedgerValidation(t *testing.T) {
	if _, err := NewLedger(1, 1, nil); err == nil {
		t.Fatalf("expected error for empty participants")
	}
	id := uuid.New()
	if _, err := NewLedger(1, 1, []uuid.UUID{id, id}); err == nil {
		t.Fatalf("expected error for duplicate participant")
	}
	if _, err := NewLedger(1, 1, []uuid.UUID{uuid.Nil}); err == nil {
		t.Fatalf("expected error for nil participant")
	}
}

func TestReconstructReportsExactAbsentees(t *testing.T) {
	ids := testIDs(t, 3)
	l := mustLedger(t, ids)

	if err := l.Put(wire.StateFlop, ids[1], 18); err != nil {
		t.Fatalf("Put: %v", err)
	}

	_, err := l.Reconstruct(wire.StateFlop)
	var missing *MissingSharesError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingSharesError, got %v", err)
	}
	if missing.Phase != wire.StateFlop {
		t.Fatalf("phase=%q", missing.Phase)
	}
	if len(missing.Absent) != 2 {
		t.Fatalf("absent=%v want exactly the 2 non-contributors", missing.Absent)
	}
	for _, id := range missing.Absent {
		if id == ids[1] {
			t.Fatalf("contributor %s reported absent", id)
		}
	}
	for i := 1; i < len(missing.Absent); i++ {
		if missing.Absent[i-1].String() >= missing.Absent[i].String() {
			t.Fatalf("absent ids not sorted: %v", missing.Absent)
		}
	}
}

func TestReconstructFlipsOnLastShare(t *testing.T) {
	ids := testIDs(t, 3)
	l := mustLedger(t, ids)

	if err := l.Put(wire.StateFlop, ids[0], 3); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := l.Put(wire.StateFlop, ids[1], 18); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if l.IsComplete(wire.StateFlop) {
		t.Fatalf("phase should not be complete with 2 of 3 shares")
	}
	if _, err := l.Reconstruct(wire.StateFlop); err == nil {
		t.Fatalf("expected missing-shares failure")
	}

	if err := l.Put(wire.StateFlop, ids[2], math.MaxUint64-4); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !l.IsComplete(wire.StateFlop) {
		t.Fatalf("phase should be complete")
	}
	got, err := l.Reconstruct(wire.StateFlop)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if got != 16 {
		t.Fatalf("Reconstruct=%d want 16", got)
	}
	if len(l.Missing(wire.StateFlop)) != 0 {
		t.Fatalf("nothing should be missing")
	}
}

func TestPutRules(t *testing.T) {
	ids := testIDs(t, 2)
	l := mustLedger(t, ids)

	if err := l.Put(wire.StatePreFlop, ids[0], 1); err == nil {
		t.Fatalf("expected error for pre_flop share")
	}
	if err := l.Put(wire.StateFlop, uuid.New(), 1); err == nil {
		t.Fatalf("expected error for unknown participant")
	}

	if err := l.Put(wire.StateTurn, ids[0], 7); err != nil {
		t.Fatalf("Put: %v", err)
	}
	// Same value again is fine, a different value is not.
	if err := l.Put(wire.StateTurn, ids[0], 7); err != nil {
		t.Fatalf("idempotent Put: %v", err)
	}
	if err := l.Put(wire.StateTurn, ids[0], 8); err == nil {
		t.Fatalf("expected error for conflicting share")
	}
	if !l.Has(wire.StateTurn, ids[0]) {
		t.Fatalf("Has should report the stored share")
	}
	if l.Has(wire.StateRiver, ids[0]) {
		t.Fatalf("Has must be phase-scoped")
	}
}

func TestPhasesAreIndependent(t *testing.T) {
	ids := testIDs(t, 2)
	l := mustLedger(t, ids)

	for _, id := range ids {
		if err := l.Put(wire.StateFlop, id, 5); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if !l.IsComplete(wire.StateFlop) {
		t.Fatalf("flop should be complete")
	}
	if l.IsComplete(wire.StateTurn) {
		t.Fatalf("turn must not inherit flop shares")
	}
}

func TestConcurrentPuts(t *testing.T) {
	ids := testIDs(t, 9)
	l := mustLedger(t, ids)

	parts, err := Split(77, len(ids))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID, share uint64) {
			defer wg.Done()
			for _, phase := range []wire.GameState{wire.StateFlop, wire.StateTurn, wire.StateRiver} {
				if err := l.Put(phase, id, share); err != nil {
					t.Errorf("Put(%s,%s): %v", phase, id, err)
				}
			}
		}(id, parts[i])
	}
	wg.Wait()

	for _, phase := range []wire.GameState{wire.StateFlop, wire.StateTurn, wire.StateRiver} {
		got, err := l.Reconstruct(phase)
		if err != nil {
			t.Fatalf("Reconstruct(%s): %v", phase, err)
		}
		if got != 77 {
			t.Fatalf("Reconstruct(%s)=%d want 77", phase, got)
		}
	}
}
