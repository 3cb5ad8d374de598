package compute

import errorsmod "cosmossdk.io/errors"

const ModuleName = "compute"

// Client sentinel errors. Contract result codes map onto these so callers
// can route on errors.Is without parsing log strings.
var (
	ErrUnavailable       = errorsmod.Register(ModuleName, 1, "node unavailable")
	ErrTimeout           = errorsmod.Register(ModuleName, 2, "request timed out")
	ErrTxFailed          = errorsmod.Register(ModuleName, 3, "transaction failed")
	ErrMalformedResponse = errorsmod.Register(ModuleName, 4, "malformed contract response")
	ErrUnauthorized      = errorsmod.Register(ModuleName, 5, "unauthorized")
	ErrNotFound          = errorsmod.Register(ModuleName, 6, "not found")
	ErrInvalidSecret     = errorsmod.Register(ModuleName, 7, "invalid secret")
	ErrAlreadyRetrieved  = errorsmod.Register(ModuleName, 8, "cards already retrieved")
	ErrInvalidGameState  = errorsmod.Register(ModuleName, 9, "invalid game state")
	ErrContract          = errorsmod.Register(ModuleName, 10, "contract error")
)
