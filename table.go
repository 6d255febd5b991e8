package pokerorchestrator

import (
	"encoding/json"

	"github.com/thoas/go-funk"
)

type TableStakes struct {
	SmallBlind int64  `json:"small_blind"`
	BigBlind   int64  `json:"big_blind"`
	AnteType   string `json:"ante_type"`
	Ante       int64  `json:"ante"`
}

func NewTableStakes(sb, bb int64, anteType string, ante int64) TableStakes {
	return TableStakes{
		SmallBlind: sb,
		BigBlind:   bb,
		AnteType:   anteType,
		Ante:       ante,
	}
}

type TableConfig struct {
	MaxSeats        int         `json:"max_seats"`
	TableType       string      `json:"table_type"`
	Stakes          TableStakes `json:"stakes"`
	AllowStraddle   bool        `json:"allow_straddle"`
	AllowRunItTwice bool        `json:"allow_run_it_twice"`
}

// PlayerAtTable is one seat occupant. A seat slot is either nil or holds
// exactly one occupant.
type PlayerAtTable struct {
	PlayerID   PlayerID `json:"player_id"`
	Stack      int64    `json:"stack"`
	CurrentBet int64    `json:"current_bet"`
	Status     string   `json:"status"`
}

func NewPlayerAtTable(playerID PlayerID, stack int64) *PlayerAtTable {
	return &PlayerAtTable{
		PlayerID:   playerID,
		Stack:      stack,
		CurrentBet: 0,
		Status:     PlayerStatus_Active,
	}
}

type Table struct {
	ID             TableID          `json:"id"`
	Name           string           `json:"name"`
	Config         TableConfig      `json:"config"`
	Seats          []*PlayerAtTable `json:"seats"`
	HandInProgress bool             `json:"hand_in_progress"`
	Street         string           `json:"street"`
	DealerButton   int              `json:"dealer_button"` // UnsetValue before the first hand
	TotalPot       int64            `json:"total_pot"`
	Board          []string         `json:"board"`
}

func NewTable(id TableID, name string, config TableConfig) *Table {
	return &Table{
		ID:             id,
		Name:           name,
		Config:         config,
		Seats:          make([]*PlayerAtTable, config.MaxSeats),
		HandInProgress: false,
		Street:         Street_Preflop,
		DealerButton:   UnsetValue,
		TotalPot:       0,
		Board:          make([]string, 0),
	}
}

func (t *Table) IsValidSeat(seat int) bool {
	return seat >= 0 && seat < len(t.Seats)
}

func (t *Table) IsSeatEmpty(seat int) bool {
	return t.IsValidSeat(seat) && t.Seats[seat] == nil
}

func (t *Table) SeatedCount() int {
	count := 0
	for _, seat := range t.Seats {
		if seat != nil {
			count++
		}
	}
	return count
}

func (t *Table) SeatedPlayers() []*PlayerAtTable {
	return funk.Filter(t.Seats, func(p *PlayerAtTable) bool {
		return p != nil
	}).([]*PlayerAtTable)
}

func (t *Table) AlivePlayers() []*PlayerAtTable {
	return funk.Filter(t.Seats, func(p *PlayerAtTable) bool {
		return p != nil && p.Stack > 0
	}).([]*PlayerAtTable)
}

// FindSeatByPlayer returns the seat index holding playerID, or UnsetValue.
func (t *Table) FindSeatByPlayer(playerID PlayerID) int {
	for idx, seat := range t.Seats {
		if seat != nil && seat.PlayerID == playerID {
			return idx
		}
	}
	return UnsetValue
}

// FirstFreeSeat returns the lowest empty seat index, or UnsetValue when full.
func (t *Table) FirstFreeSeat() int {
	for idx, seat := range t.Seats {
		if seat == nil {
			return idx
		}
	}
	return UnsetValue
}

// SeatPlayer places a new occupant. Seat occupancy stays injective: the same
// player id can never hold two seats of one table.
func (t *Table) SeatPlayer(seat int, player *PlayerAtTable) error {
	if !t.IsValidSeat(seat) {
		return ErrInvalidSeat
	}
	if t.Seats[seat] != nil {
		return ErrSeatNotEmpty
	}
	if t.FindSeatByPlayer(player.PlayerID) != UnsetValue {
		return ErrPlayerAlreadySeated
	}

	t.Seats[seat] = player
	return nil
}

// UnseatSeat clears a seat unconditionally if the index is valid.
func (t *Table) UnseatSeat(seat int) error {
	if !t.IsValidSeat(seat) {
		return ErrInvalidSeat
	}

	t.Seats[seat] = nil
	return nil
}

// AdjustStack applies a signed delta with saturating arithmetic. The stack
// never goes below zero and never wraps on overflow.
func (t *Table) AdjustStack(seat int, delta int64) error {
	if !t.IsValidSeat(seat) {
		return ErrInvalidSeat
	}

	player := t.Seats[seat]
	if player == nil {
		return ErrNoPlayerAtSeat
	}

	if delta >= 0 {
		next := player.Stack + delta
		if next < player.Stack {
			next = int64(^uint64(0) >> 1)
		}
		player.Stack = next
	} else {
		abs := -delta
		if player.Stack >= abs {
			player.Stack -= abs
		} else {
			player.Stack = 0
		}
	}

	return nil
}

// ResetAfterHand clears per-hand state once the pot has been settled into the
// seat stacks.
func (t *Table) ResetAfterHand() {
	t.Street = Street_Preflop
	t.TotalPot = 0
	t.Board = make([]string, 0)
	for _, seat := range t.Seats {
		if seat == nil {
			continue
		}
		seat.CurrentBet = 0
		if seat.Status != PlayerStatus_SittingOut {
			seat.Status = PlayerStatus_Active
		}
	}
}

func (t *Table) Clone() (*Table, error) {
	encoded, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}

	var cloned Table
	if err := json.Unmarshal(encoded, &cloned); err != nil {
		return nil, err
	}
	return &cloned, nil
}

func (t *Table) GetJSON() (string, error) {
	encoded, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}
