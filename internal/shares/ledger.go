package shares

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/FoundationOfBabylone/secret-poker/internal/wire"
)

// MissingSharesError reports a reconstruction attempted before every
// participant contributed. Absent is sorted and names exactly the
// participants without a share for the phase.
type MissingSharesError struct {
	Phase  wire.GameState
	Absent []uuid.UUID
}

func (e *MissingSharesError) Error() string {
	ids := make([]string, len(e.Absent))
	for i, id := range e.Absent {
		ids[i] = id.String()
	}
	return fmt.Sprintf("missing %s shares from %s", e.Phase, strings.Join(ids, ", "))
}

// Ledger collects one hand's phase-secret shares, keyed by board state and
// owner. Shares append only: a participant cannot retract or replace a
// submitted share. Safe for concurrent use.
type Ledger struct {
	tableID uint32
	handRef uint32

	mu       sync.Mutex
	expected []uuid.UUID
	got      map[wire.GameState]map[uuid.UUID]uint64
}

func NewLedger(tableID, handRef uint32, participants []uuid.UUID) (*Ledger, error) {
	if len(participants) == 0 {
		return nil, fmt.Errorf("no participants")
	}
	seen := make(map[uuid.UUID]bool, len(participants))
	expected := make([]uuid.UUID, 0, len(participants))
	for _, id := range participants {
		if id == uuid.Nil {
			return nil, fmt.Errorf("nil participant id")
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate participant %s", id)
		}
		seen[id] = true
		expected = append(expected, id)
	}
	sortIDs(expected)
	return &Ledger{
		tableID:  tableID,
		handRef:  handRef,
		expected: expected,
		got:      map[wire.GameState]map[uuid.UUID]uint64{},
	}, nil
}

func (l *Ledger) TableID() uint32 { return l.tableID }
func (l *Ledger) HandRef() uint32 { return l.handRef }

// Participants returns the expected contributor set, sorted.
func (l *Ledger) Participants() []uuid.UUID {
	return append([]uuid.UUID(nil), l.expected...)
}

// Put records owner's share for a board state. Re-submitting the same value
// is a no-op; a conflicting value is an error.
func (l *Ledger) Put(phase wire.GameState, owner uuid.UUID, share uint64) error {
	if !phase.CommunityState() {
		return fmt.Errorf("state %q has no phase secret", phase)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.isExpected(owner) {
		return fmt.Errorf("unknown participant %s", owner)
	}
	m := l.got[phase]
	if m == nil {
		m = map[uuid.UUID]uint64{}
		l.got[phase] = m
	}
	if prev, ok := m[owner]; ok {
		if prev != share {
			return fmt.Errorf("conflicting %s share from %s", phase, owner)
		}
		return nil
	}
	m[owner] = share
	return nil
}

// Has reports whether owner already contributed for phase.
func (l *Ledger) Has(phase wire.GameState, owner uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.got[phase][owner]
	return ok
}

// IsComplete reports whether every participant contributed for phase.
func (l *Ledger) IsComplete(phase wire.GameState) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.got[phase]) == len(l.expected)
}

// Missing returns the participants without a share for phase, sorted.
func (l *Ledger) Missing(phase wire.GameState) []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.missingLocked(phase)
}

func (l *Ledger) missingLocked(phase wire.GameState) []uuid.UUID {
	var absent []uuid.UUID
	for _, id := range l.expected {
		if _, ok := l.got[phase][id]; !ok {
			absent = append(absent, id)
		}
	}
	return absent
}

// Reconstruct combines the phase's shares into the secret. Incomplete phases
// return a *MissingSharesError naming the absent participants.
func (l *Ledger) Reconstruct(phase wire.GameState) (uint64, error) {
	if !phase.CommunityState() {
		return 0, fmt.Errorf("state %q has no phase secret", phase)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if absent := l.missingLocked(phase); len(absent) > 0 {
		return 0, &MissingSharesError{Phase: phase, Absent: absent}
	}
	vals := make([]uint64, 0, len(l.expected))
	for _, id := range l.expected {
		vals = append(vals, l.got[phase][id])
	}
	return Combine(vals), nil
}

func (l *Ledger) isExpected(owner uuid.UUID) bool {
	for _, id := range l.expected {
		if id == owner {
			return true
		}
	}
	return false
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}
