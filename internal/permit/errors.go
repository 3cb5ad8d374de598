package permit

import errorsmod "cosmossdk.io/errors"

const ModuleName = "permit"

// Permit sentinel errors.
var (
	ErrInvalidPermit   = errorsmod.Register(ModuleName, 1, "invalid permit")
	ErrNonZeroFee      = errorsmod.Register(ModuleName, 2, "permit fee must be zero")
	ErrNonZeroSequence = errorsmod.Register(ModuleName, 3, "permit sequence must be zero")
	ErrBadSignature    = errorsmod.Register(ModuleName, 4, "invalid permit signature")
)
