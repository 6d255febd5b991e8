package pokerorchestrator

// Identifier types shared by every component. Tables created for a tournament
// pack the tournament id into the high 32 bits of the table id, so TableID is
// always 64-bit even though admin-created cash tables stay in the low range.
type (
	TableID      uint64
	TournamentID uint32
	PlayerID     uint64
)

const (
	// General
	UnsetValue = -1

	// Street
	Street_Preflop = "preflop"
	Street_Flop    = "flop"
	Street_Turn    = "turn"
	Street_River   = "river"

	// AnteType
	AnteType_None     = "none"
	AnteType_Classic  = "classic"
	AnteType_BigBlind = "big_blind"

	// TableType
	TableType_Cash       = "cash"
	TableType_Tournament = "tournament"

	// PlayerStatus
	PlayerStatus_Active     = "active"
	PlayerStatus_Folded     = "folded"
	PlayerStatus_AllIn      = "allin"
	PlayerStatus_SittingOut = "sitting_out"

	// TournamentStatus
	TournamentStatus_Registering = "registering"
	TournamentStatus_Running     = "running"
	TournamentStatus_OnBreak     = "on_break"
	TournamentStatus_Finished    = "finished"

	// HandStatus
	HandStatus_Ongoing  = "ongoing"
	HandStatus_Finished = "finished"

	// PlayerActionKind
	ActionKind_Fold  = "fold"
	ActionKind_Check = "check"
	ActionKind_Call  = "call"
	ActionKind_Bet   = "bet"
	ActionKind_Raise = "raise"
	ActionKind_AllIn = "allin"

	// Position
	Position_Unknown = "unknown"
	Position_Dealer  = "dealer"
	Position_SB      = "sb"
	Position_BB      = "bb"
	Position_UG      = "ug"
)
