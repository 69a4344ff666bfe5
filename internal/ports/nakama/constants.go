package nakama

const (
	// RpcEvaluateTurn is the stateless scoring RPC for clients that keep their own state.
	RpcEvaluateTurn = "x01_evaluate_turn"

	// RpcCreateSession creates a scorer session owned by the caller.
	RpcCreateSession = "x01_create_session"

	// MatchNameScorer is the authoritative match handler name registered with Nakama.
	MatchNameScorer = "x01_scorer"

	// LegArchiveCollection is the storage collection holding finished legs.
	LegArchiveCollection = "x01_legs"

	// RulesConfigPath is the rules file loaded at module init.
	RulesConfigPath = "data/x01_rules.json"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpAddGuest     int64 = 1
	OpRemovePlayer int64 = 2
	OpStartMatch   int64 = 3
	OpSubmitVisit  int64 = 4
	OpNextLeg      int64 = 5

	// Server -> Client events
	OpState          int64 = 100
	OpLegStarted     int64 = 101
	OpVisitPlayed    int64 = 102
	OpLegWon         int64 = 103
	OpMatchCompleted int64 = 104
	OpError          int64 = 110
)

// Error codes carried in OpError payloads.
const (
	ErrCodeBadRequest = 400
	ErrCodeConflict   = 409
	ErrCodeInternal   = 500
)

// gRPC status codes used for RPC errors.
const (
	rpcCodeInvalidArgument = 3
	rpcCodeInternal        = 13
	rpcCodeUnauthenticated = 16
)
