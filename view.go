package pokerorchestrator

import "sort"

// Views are read models derived from stored state. Hole cards and any other
// private engine data never cross into a view, so a view is always safe to
// hand to an arbitrary caller.

type SeatView struct {
	SeatIndex   int      `json:"seat_index"`
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	Stack       int64    `json:"stack"`
	CurrentBet  int64    `json:"current_bet"`
	Status      string   `json:"status"`
	IsTurn      bool     `json:"is_turn"`
}

type TableView struct {
	ID             TableID     `json:"id"`
	Name           string      `json:"name"`
	TableType      string      `json:"table_type"`
	MaxSeats       int         `json:"max_seats"`
	Stakes         TableStakes `json:"stakes"`
	Seats          []SeatView  `json:"seats"`
	HandInProgress bool        `json:"hand_in_progress"`
	HandID         uint64      `json:"hand_id,omitempty"`
	Street         string      `json:"street"`
	DealerButton   int         `json:"dealer_button"`
	TotalPot       int64       `json:"total_pot"`
	Board          []string    `json:"board"`
	CurrentActor   *int        `json:"current_actor,omitempty"`
}

// NameResolver maps a player id to a display name. Unknown players resolve to
// the empty string.
type NameResolver func(PlayerID) string

func ProjectTableView(table *Table, session *HandSession, nameOf NameResolver) *TableView {
	view := &TableView{
		ID:             table.ID,
		Name:           table.Name,
		TableType:      table.Config.TableType,
		MaxSeats:       table.Config.MaxSeats,
		Stakes:         table.Config.Stakes,
		Seats:          make([]SeatView, 0, table.SeatedCount()),
		HandInProgress: table.HandInProgress,
		Street:         table.Street,
		DealerButton:   table.DealerButton,
		TotalPot:       table.TotalPot,
		Board:          append([]string{}, table.Board...),
	}

	var actorSeat *int
	if session != nil {
		view.HandID = session.HandID
		actorSeat = session.CurrentActorSeat
		view.CurrentActor = actorSeat
	}

	for idx, occupant := range table.Seats {
		if occupant == nil {
			continue
		}
		view.Seats = append(view.Seats, SeatView{
			SeatIndex:   idx,
			PlayerID:    occupant.PlayerID,
			DisplayName: nameOf(occupant.PlayerID),
			Stack:       occupant.Stack,
			CurrentBet:  occupant.CurrentBet,
			Status:      occupant.Status,
			IsTurn:      actorSeat != nil && *actorSeat == idx,
		})
	}

	return view
}

type TournamentStandingView struct {
	PlayerID    PlayerID `json:"player_id"`
	DisplayName string   `json:"display_name"`
	TotalChips  int64    `json:"total_chips"`
	TableID     *TableID `json:"table_id,omitempty"`
	IsBusted    bool     `json:"is_busted"`
	FinishRank  int      `json:"finish_rank,omitempty"`
}

type TournamentView struct {
	ID           TournamentID             `json:"id"`
	Name         string                   `json:"name"`
	Status       string                   `json:"status"`
	CurrentLevel int                      `json:"current_level"`
	Stakes       TableStakes              `json:"stakes"`
	PlayerCount  int                      `json:"player_count"`
	ActiveCount  int                      `json:"active_count"`
	Tables       []TableID                `json:"tables"`
	Standings    []TournamentStandingView `json:"standings"`
}

// ProjectTournamentView orders standings with survivors first, ranked by chip
// count, then eliminated players by their finishing rank.
func ProjectTournamentView(tournament *Tournament, tables []TableID, nameOf NameResolver) *TournamentView {
	view := &TournamentView{
		ID:           tournament.ID,
		Name:         tournament.Config.Name,
		Status:       tournament.Status,
		CurrentLevel: tournament.CurrentLevel,
		Stakes:       StakesForLevel(tournament.Config, tournament.CurrentLevel),
		PlayerCount:  len(tournament.Registrations),
		ActiveCount:  len(tournament.ActiveRegistrations()),
		Tables:       append([]TableID{}, tables...),
		Standings:    make([]TournamentStandingView, 0, len(tournament.Registrations)),
	}

	for _, playerID := range tournament.SortedPlayerIDs() {
		reg := tournament.Registrations[playerID]
		view.Standings = append(view.Standings, TournamentStandingView{
			PlayerID:    reg.PlayerID,
			DisplayName: nameOf(reg.PlayerID),
			TotalChips:  reg.TotalChips,
			TableID:     reg.TableID,
			IsBusted:    reg.IsBusted,
			FinishRank:  reg.FinishRank,
		})
	}

	sort.SliceStable(view.Standings, func(i, j int) bool {
		a, b := view.Standings[i], view.Standings[j]
		if a.IsBusted != b.IsBusted {
			return !a.IsBusted
		}
		if !a.IsBusted {
			if a.TotalChips != b.TotalChips {
				return a.TotalChips > b.TotalChips
			}
			return a.PlayerID < b.PlayerID
		}
		return a.FinishRank < b.FinishRank
	})

	return view
}
