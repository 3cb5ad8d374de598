package game

import (
	"fmt"
	"sort"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/google/uuid"
)

const ModuleName = "game"

// Controller sentinel errors.
var (
	ErrPhaseOrder         = errorsmod.Register(ModuleName, 1, "operation out of phase order")
	ErrNoHand             = errorsmod.Register(ModuleName, 2, "no hand in progress")
	ErrHandResolved       = errorsmod.Register(ModuleName, 3, "hand already resolved")
	ErrUnknownParticipant = errorsmod.Register(ModuleName, 4, "unknown participant")
	ErrFallbackExhausted  = errorsmod.Register(ModuleName, 5, "execute fallback already attempted")
	ErrBadParticipants    = errorsmod.Register(ModuleName, 6, "invalid participant set")
)

// IncompleteShowdownError reports which participants have not submitted a
// hand secret. The resolver needs one from everyone before it can act.
type IncompleteShowdownError struct {
	Absent []uuid.UUID
}

func (e *IncompleteShowdownError) Error() string {
	ids := make([]string, 0, len(e.Absent))
	for _, id := range e.Absent {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	return fmt.Sprintf("showdown missing hand secrets from %d participants: %s",
		len(e.Absent), strings.Join(ids, ", "))
}
