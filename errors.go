package pokerorchestrator

import "errors"

var (
	// Storage
	ErrStorage = errors.New("store: operation failed")

	// Table
	ErrTableNotFound         = errors.New("table: not found")
	ErrTableAlreadyExists    = errors.New("table: already exists")
	ErrInvalidSeat           = errors.New("table: invalid seat index")
	ErrSeatNotEmpty          = errors.New("table: seat is not empty")
	ErrNoPlayerAtSeat        = errors.New("table: no player at seat")
	ErrPlayerAlreadySeated   = errors.New("table: player already seated at this table")
	ErrNotEnoughPlayers      = errors.New("table: not enough players to start a hand")
	ErrHandAlreadyInProgress = errors.New("table: hand already in progress")
	ErrNoActiveHand          = errors.New("table: no active hand")

	// Engine
	ErrEngine = errors.New("engine: action rejected")

	// Authorization
	ErrUnauthenticated  = errors.New("auth: unauthenticated signer")
	ErrUnauthorized     = errors.New("auth: only the configured owner can do this")
	ErrPlayerIDMismatch = errors.New("auth: player id mismatch for this signer")

	// Tournament
	ErrTournamentNotFound      = errors.New("tournament: not found")
	ErrTournamentAlreadyExists = errors.New("tournament: already exists")
	ErrTournamentInvalidStatus = errors.New("tournament: invalid status for this operation")
	ErrTournamentNotRunning    = errors.New("tournament: not running")
	ErrNotRegistered           = errors.New("tournament: player not registered")
	ErrAlreadyRegistered       = errors.New("tournament: player already registered")
	ErrTournamentFull          = errors.New("tournament: registration is full")
	ErrCannotBustLastPlayer    = errors.New("tournament: cannot bust the last remaining player")
	ErrInvalidTournamentConfig = errors.New("tournament: invalid configuration")

	// Command router
	ErrUnknownCommand = errors.New("command: unknown or malformed command")
)
