package pokerorchestrator

type CommandType string

const (
	CommandType_CreateTable  CommandType = "CreateTable"
	CommandType_SeatPlayer   CommandType = "SeatPlayer"
	CommandType_UnseatPlayer CommandType = "UnseatPlayer"
	CommandType_AdjustStack  CommandType = "AdjustStack"
	CommandType_StartHand    CommandType = "StartHand"
	CommandType_PlayerAction CommandType = "PlayerAction"
	CommandType_TickTable    CommandType = "TickTable"

	CommandType_CreateTournament CommandType = "CreateTournament"
	CommandType_RegisterPlayer   CommandType = "RegisterPlayer"
	CommandType_UnregisterPlayer CommandType = "UnregisterPlayer"
	CommandType_StartTournament  CommandType = "StartTournament"
	CommandType_AdvanceLevel     CommandType = "AdvanceLevel"
	CommandType_CloseTournament  CommandType = "CloseTournament"
)

// Command is the tagged union accepted by Orchestrator.Execute. Exactly one
// payload pointer matching Type must be non-nil.
type Command struct {
	Type CommandType `json:"type"`

	CreateTable  *CreateTableCommand  `json:"create_table,omitempty"`
	SeatPlayer   *SeatPlayerCommand   `json:"seat_player,omitempty"`
	UnseatPlayer *UnseatPlayerCommand `json:"unseat_player,omitempty"`
	AdjustStack  *AdjustStackCommand  `json:"adjust_stack,omitempty"`
	StartHand    *StartHandCommand    `json:"start_hand,omitempty"`
	PlayerAction *PlayerActionCommand `json:"player_action,omitempty"`
	TickTable    *TickTableCommand    `json:"tick_table,omitempty"`

	CreateTournament *CreateTournamentCommand `json:"create_tournament,omitempty"`
	RegisterPlayer   *RegisterPlayerCommand   `json:"register_player,omitempty"`
	UnregisterPlayer *UnregisterPlayerCommand `json:"unregister_player,omitempty"`
	StartTournament  *StartTournamentCommand  `json:"start_tournament,omitempty"`
	AdvanceLevel     *AdvanceLevelCommand     `json:"advance_level,omitempty"`
	CloseTournament  *CloseTournamentCommand  `json:"close_tournament,omitempty"`
}

type CreateTableCommand struct {
	TableID    TableID `json:"table_id"`
	Name       string  `json:"name"`
	MaxSeats   int     `json:"max_seats"`
	SmallBlind int64   `json:"small_blind"`
	BigBlind   int64   `json:"big_blind"`
	Ante       int64   `json:"ante"`
	AnteType   string  `json:"ante_type"`
}

type SeatPlayerCommand struct {
	TableID      TableID  `json:"table_id"`
	PlayerID     PlayerID `json:"player_id"`
	SeatIndex    int      `json:"seat_index"`
	DisplayName  string   `json:"display_name"`
	InitialStack int64    `json:"initial_stack"`
}

type UnseatPlayerCommand struct {
	TableID   TableID `json:"table_id"`
	SeatIndex int     `json:"seat_index"`
}

type AdjustStackCommand struct {
	TableID   TableID `json:"table_id"`
	SeatIndex int     `json:"seat_index"`
	Delta     int64   `json:"delta"`
}

type StartHandCommand struct {
	TableID TableID `json:"table_id"`
}

// PlayerAction describes one action taken from a seat during a hand. Amount is
// meaningful for bet and raise only.
type PlayerAction struct {
	Seat     int      `json:"seat"`
	PlayerID PlayerID `json:"player_id"`
	Kind     string   `json:"kind"`
	Amount   int64    `json:"amount"`
}

type PlayerActionCommand struct {
	TableID TableID      `json:"table_id"`
	Action  PlayerAction `json:"action"`
}

type TickTableCommand struct {
	TableID   TableID `json:"table_id"`
	DeltaSecs int     `json:"delta_secs"`
}

type CreateTournamentCommand struct {
	TournamentID TournamentID     `json:"tournament_id"`
	Config       TournamentConfig `json:"config"`
}

type RegisterPlayerCommand struct {
	TournamentID TournamentID `json:"tournament_id"`
	PlayerID     PlayerID     `json:"player_id"`
	DisplayName  string       `json:"display_name"`
}

type UnregisterPlayerCommand struct {
	TournamentID TournamentID `json:"tournament_id"`
	PlayerID     PlayerID     `json:"player_id"`
}

type StartTournamentCommand struct {
	TournamentID TournamentID `json:"tournament_id"`
}

type AdvanceLevelCommand struct {
	TournamentID TournamentID `json:"tournament_id"`
}

type CloseTournamentCommand struct {
	TournamentID TournamentID `json:"tournament_id"`
}
