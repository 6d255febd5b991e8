package pokerorchestrator

import (
	"encoding/json"

	"github.com/weedbox/pokerface"
)

// HandLogEntry is one recorded step of a hand, kept in apply order.
type HandLogEntry struct {
	Seat   int    `json:"seat"`
	Action string `json:"action"`
	Chips  int64  `json:"chips"`
	Round  string `json:"round"`
}

// HandSession is the suspended state of one running hand. The engine itself is
// stateless between commands: every player action loads this snapshot, resumes
// the engine from GameState, applies one step and writes the snapshot back.
type HandSession struct {
	TableID TableID              `json:"table_id"`
	HandID  uint64               `json:"hand_id"`
	GameID  string               `json:"game_id"`
	Status  string               `json:"status"`
	State   *pokerface.GameState `json:"state"`

	// SeatByGamePlayerIdx maps the engine's player index to the table seat
	// the player occupies.
	SeatByGamePlayerIdx []int `json:"seat_by_game_player_idx"`

	// CurrentActorSeat is the seat whose action the engine is waiting for,
	// or nil while no decision is pending.
	CurrentActorSeat *int `json:"current_actor_seat,omitempty"`

	// InitialStacks holds each engine player's stack at hand start, indexed
	// like SeatByGamePlayerIdx. Settlement diffs final results against it.
	InitialStacks []int64 `json:"initial_stacks"`

	History []HandLogEntry `json:"history"`
}

// SeatForGameIdx resolves an engine player index to a table seat, or
// UnsetValue when the index is out of range.
func (hs *HandSession) SeatForGameIdx(idx int) int {
	if idx < 0 || idx >= len(hs.SeatByGamePlayerIdx) {
		return UnsetValue
	}
	return hs.SeatByGamePlayerIdx[idx]
}

// GameIdxForSeat is the inverse lookup, or UnsetValue when the seat does not
// take part in this hand.
func (hs *HandSession) GameIdxForSeat(seat int) int {
	for idx, s := range hs.SeatByGamePlayerIdx {
		if s == seat {
			return idx
		}
	}
	return UnsetValue
}

func (hs *HandSession) Record(seat int, action string, chips int64, round string) {
	hs.History = append(hs.History, HandLogEntry{
		Seat:   seat,
		Action: action,
		Chips:  chips,
		Round:  round,
	})
}

func (hs *HandSession) Clone() (*HandSession, error) {
	encoded, err := json.Marshal(hs)
	if err != nil {
		return nil, err
	}

	var cloned HandSession
	if err := json.Unmarshal(encoded, &cloned); err != nil {
		return nil, err
	}
	return &cloned, nil
}
