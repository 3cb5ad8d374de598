package wire

// The contract returns execute results as plaintext attributes on the wasm
// event, not in tx data. Clients that miss the query path recover payloads by
// scanning these.
const (
	EventTypeWasm = "wasm"

	// AttrKeyResponse carries the serialized ResponsePayload.
	AttrKeyResponse = "response"

	// AttrKeyPreviousHandLog carries a last_hand payload on start-game
	// transactions when the table already played a hand.
	AttrKeyPreviousHandLog = "previous_hand_log"
)

// ABCI result codes shared with the contract. 0 is success.
const (
	CodeInternal         uint32 = 2
	CodeNotFound         uint32 = 3
	CodeUnauthorized     uint32 = 4
	CodeInvalidSecret    uint32 = 5
	CodeAlreadyRetrieved uint32 = 6
	CodeInvalidGameState uint32 = 7
)
