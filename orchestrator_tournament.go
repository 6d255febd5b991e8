package pokerorchestrator

import (
	"errors"
	"fmt"
	"time"
)

// tournamentTableID packs the tournament id into the high half of the table
// id, keeping tournament tables out of the range admins use for cash tables.
func tournamentTableID(id TournamentID, index int) TableID {
	return TableID(uint64(id)<<32 | uint64(uint32(index)))
}

func (o *orchestrator) loadTournament(id TournamentID) (*Tournament, error) {
	tournament, exist, err := o.store.GetTournament(id)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, ErrTournamentNotFound
	}
	return tournament, nil
}

func (o *orchestrator) tournamentStateResponse(tournament *Tournament) (CommandResponse, error) {
	tables, _, err := o.store.GetTournamentTables(tournament.ID)
	if err != nil {
		return CommandResponse{}, err
	}
	return newTournamentStateResponse(ProjectTournamentView(tournament, tables, o.nameResolver())), nil
}

func (o *orchestrator) handleCreateTournament(signer string, cmd *CreateTournamentCommand) (CommandResponse, error) {
	if err := o.ensureAdmin(signer); err != nil {
		return CommandResponse{}, err
	}

	if _, exist, err := o.store.GetTournament(cmd.TournamentID); err != nil {
		return CommandResponse{}, err
	} else if exist {
		return CommandResponse{}, ErrTournamentAlreadyExists
	}

	ownerPlayer, _, err := o.store.GetPlayerForSigner(signer)
	if err != nil {
		return CommandResponse{}, err
	}

	tournament, err := NewTournament(cmd.TournamentID, ownerPlayer, cmd.Config)
	if err != nil {
		return CommandResponse{}, err
	}

	if err := o.store.InsertTournament(tournament); err != nil {
		return CommandResponse{}, err
	}
	if err := o.store.InsertTournamentTables(tournament.ID, []TableID{}); err != nil {
		return CommandResponse{}, err
	}

	return o.tournamentStateResponse(tournament)
}

func (o *orchestrator) handleRegisterPlayer(signer string, cmd *RegisterPlayerCommand) (CommandResponse, error) {
	if err := o.ensurePlayerForSigner(signer, cmd.PlayerID); err != nil {
		return CommandResponse{}, err
	}

	tournament, err := o.loadTournament(cmd.TournamentID)
	if err != nil {
		return CommandResponse{}, err
	}

	if err := tournament.RegisterPlayer(cmd.PlayerID); err != nil {
		return CommandResponse{}, err
	}

	if cmd.DisplayName != "" {
		if err := o.store.InsertPlayerName(cmd.PlayerID, cmd.DisplayName); err != nil {
			return CommandResponse{}, err
		}
	}

	if err := o.store.InsertTournament(tournament); err != nil {
		return CommandResponse{}, err
	}

	return o.tournamentStateResponse(tournament)
}

func (o *orchestrator) handleUnregisterPlayer(signer string, cmd *UnregisterPlayerCommand) (CommandResponse, error) {
	if err := o.ensurePlayerForSigner(signer, cmd.PlayerID); err != nil {
		return CommandResponse{}, err
	}

	tournament, err := o.loadTournament(cmd.TournamentID)
	if err != nil {
		return CommandResponse{}, err
	}

	if err := tournament.UnregisterPlayer(cmd.PlayerID); err != nil {
		return CommandResponse{}, err
	}

	if err := o.store.InsertTournament(tournament); err != nil {
		return CommandResponse{}, err
	}

	return o.tournamentStateResponse(tournament)
}

// handleStartTournament seats the field: registered players are chunked onto
// fresh tables in ascending id order, one chunk per table.
func (o *orchestrator) handleStartTournament(signer string, cmd *StartTournamentCommand) (CommandResponse, error) {
	if err := o.ensureAdmin(signer); err != nil {
		return CommandResponse{}, err
	}

	tournament, err := o.loadTournament(cmd.TournamentID)
	if err != nil {
		return CommandResponse{}, err
	}

	playerIDs := tournament.SortedPlayerIDs()
	if len(playerIDs) < 2 {
		return CommandResponse{}, ErrNotEnoughPlayers
	}

	if err := tournament.Start(time.Now().Unix()); err != nil {
		return CommandResponse{}, err
	}

	tableSize := tournament.Config.TableSize
	numTables := (len(playerIDs) + tableSize - 1) / tableSize
	stakes := StakesForLevel(tournament.Config, tournament.CurrentLevel)

	tableIDs := make([]TableID, 0, numTables)
	for index := 0; index < numTables; index++ {
		tableID := tournamentTableID(tournament.ID, index)
		table := NewTable(tableID, fmt.Sprintf("%s #%d", tournament.Config.Name, index+1), TableConfig{
			MaxSeats:  tableSize,
			TableType: TableType_Tournament,
			Stakes:    stakes,
		})

		for seat := 0; seat < tableSize; seat++ {
			playerIdx := index*tableSize + seat
			if playerIdx >= len(playerIDs) {
				break
			}
			playerID := playerIDs[playerIdx]
			reg := tournament.Registrations[playerID]

			if err := table.SeatPlayer(seat, NewPlayerAtTable(playerID, reg.TotalChips)); err != nil {
				return CommandResponse{}, err
			}
			tid := tableID
			seatIdx := seat
			reg.TableID = &tid
			reg.SeatIndex = &seatIdx
		}

		if err := o.store.InsertTable(table); err != nil {
			return CommandResponse{}, err
		}
		if err := o.store.InsertTableTournament(tableID, tournament.ID); err != nil {
			return CommandResponse{}, err
		}

		tc := NewTimeController(TimeProfile{
			ActionTime:      tournament.Config.ActionTime,
			TimeBankSeconds: tournament.Config.TimeBankSeconds,
		})
		if err := o.store.InsertTimeController(tableID, tc); err != nil {
			return CommandResponse{}, err
		}

		tableIDs = append(tableIDs, tableID)
	}

	if err := o.store.InsertTournamentTables(tournament.ID, tableIDs); err != nil {
		return CommandResponse{}, err
	}
	if err := o.store.InsertTournament(tournament); err != nil {
		return CommandResponse{}, err
	}

	return o.tournamentStateResponse(tournament)
}

// handleAdvanceLevel bumps the blind level. New stakes take effect at each
// table's next deal; a hand already running finishes at the old level.
func (o *orchestrator) handleAdvanceLevel(signer string, cmd *AdvanceLevelCommand) (CommandResponse, error) {
	if err := o.ensureAdmin(signer); err != nil {
		return CommandResponse{}, err
	}

	tournament, err := o.loadTournament(cmd.TournamentID)
	if err != nil {
		return CommandResponse{}, err
	}
	if tournament.Status != TournamentStatus_Running && tournament.Status != TournamentStatus_OnBreak {
		return CommandResponse{}, ErrTournamentNotRunning
	}

	// Running out of levels is benign; the tournament just stays at the
	// final level.
	nextLevel := tournament.CurrentLevel + 1
	if tournament.Config.BlindStructure.LevelByNumber(nextLevel) == nil {
		return o.tournamentStateResponse(tournament)
	}

	tournament.CurrentLevel = nextLevel
	stakes := StakesForLevel(tournament.Config, nextLevel)

	tableIDs, _, err := o.store.GetTournamentTables(tournament.ID)
	if err != nil {
		return CommandResponse{}, err
	}
	for _, tableID := range tableIDs {
		table, exist, err := o.store.GetTable(tableID)
		if err != nil {
			return CommandResponse{}, err
		}
		if !exist {
			continue
		}
		table.Config.Stakes = stakes
		if err := o.store.InsertTable(table); err != nil {
			return CommandResponse{}, err
		}
	}

	if err := o.store.InsertTournament(tournament); err != nil {
		return CommandResponse{}, err
	}

	return o.tournamentStateResponse(tournament)
}

// handleCloseTournament force-finishes a tournament and reclaims its tables.
func (o *orchestrator) handleCloseTournament(signer string, cmd *CloseTournamentCommand) (CommandResponse, error) {
	if err := o.ensureAdmin(signer); err != nil {
		return CommandResponse{}, err
	}

	tournament, err := o.loadTournament(cmd.TournamentID)
	if err != nil {
		return CommandResponse{}, err
	}
	if tournament.Status == TournamentStatus_Finished {
		return o.tournamentStateResponse(tournament)
	}

	tableIDs, _, err := o.store.GetTournamentTables(tournament.ID)
	if err != nil {
		return CommandResponse{}, err
	}

	for _, tableID := range tableIDs {
		table, exist, err := o.store.GetTable(tableID)
		if err != nil {
			return CommandResponse{}, err
		}
		if exist && table.HandInProgress {
			return CommandResponse{}, ErrHandAlreadyInProgress
		}
	}

	for _, tableID := range tableIDs {
		if err := o.store.RemoveTable(tableID); err != nil {
			return CommandResponse{}, err
		}
		if err := o.store.RemoveTableTournament(tableID); err != nil {
			return CommandResponse{}, err
		}
		if err := o.store.RemoveTimeController(tableID); err != nil {
			return CommandResponse{}, err
		}
		if err := o.store.RemoveHandSession(tableID); err != nil {
			return CommandResponse{}, err
		}
	}

	tournament.Status = TournamentStatus_Finished
	for _, reg := range tournament.Registrations {
		reg.TableID = nil
		reg.SeatIndex = nil
	}

	if err := o.store.InsertTournamentTables(tournament.ID, []TableID{}); err != nil {
		return CommandResponse{}, err
	}
	if err := o.store.InsertTournament(tournament); err != nil {
		return CommandResponse{}, err
	}

	return o.tournamentStateResponse(tournament)
}

// handleTournamentAfterHand runs the bookkeeping a finished hand triggers on
// a tournament table: chip sync, bust marking, rebalancing and table
// reclamation.
func (o *orchestrator) handleTournamentAfterHand(id TournamentID, table *Table) error {
	tournament, exist, err := o.store.GetTournament(id)
	if err != nil {
		return err
	}
	if !exist {
		return nil
	}
	if tournament.Status != TournamentStatus_Running {
		return nil
	}

	// Sync the hand's outcome into the registration records.
	for seatIdx, occupant := range table.Seats {
		if occupant == nil {
			continue
		}
		reg, registered := tournament.Registrations[occupant.PlayerID]
		if !registered {
			continue
		}
		reg.TotalChips = occupant.Stack
		tid := table.ID
		si := seatIdx
		reg.TableID = &tid
		reg.SeatIndex = &si
	}

	cache := map[TableID]*Table{table.ID: table}
	loadCached := func(tableID TableID) (*Table, error) {
		if cached, exist := cache[tableID]; exist {
			return cached, nil
		}
		loaded, exist, err := o.store.GetTable(tableID)
		if err != nil {
			return nil, err
		}
		if !exist {
			return nil, nil
		}
		cache[tableID] = loaded
		return loaded, nil
	}

	// Mark and unseat eliminated players. The last survivor is never
	// busted even at zero chips; play cannot strand a tournament with
	// nobody left.
	for _, playerID := range tournament.SortedPlayerIDs() {
		reg := tournament.Registrations[playerID]
		if reg.IsBusted || reg.TotalChips > 0 {
			continue
		}

		seatedAt := reg.TableID
		if err := tournament.MarkPlayerBusted(playerID); err != nil {
			if errors.Is(err, ErrCannotBustLastPlayer) {
				continue
			}
			return err
		}
		if seatedAt == nil {
			continue
		}
		if seated, err := loadCached(*seatedAt); err != nil {
			return err
		} else if seated != nil {
			if seatIdx := seated.FindSeatByPlayer(playerID); seatIdx != UnsetValue {
				if err := seated.UnseatSeat(seatIdx); err != nil {
					return err
				}
			}
		}
	}

	if tournament.Status != TournamentStatus_Finished {
		// Rebalance. Moves touching a table mid-hand are skipped; the
		// plan is recomputed after that table's own hand settles.
		executed := make([]RebalanceMove, 0)
		seatsUsed := make(map[PlayerID]int)
		for _, move := range tournament.ComputeRebalanceMoves() {
			from, err := loadCached(move.FromTable)
			if err != nil {
				return err
			}
			to, err := loadCached(move.ToTable)
			if err != nil {
				return err
			}
			if from == nil || to == nil || from.HandInProgress || to.HandInProgress {
				continue
			}

			seat := from.FindSeatByPlayer(move.PlayerID)
			if seat == UnsetValue {
				continue
			}
			destSeat := to.FirstFreeSeat()
			if destSeat == UnsetValue {
				continue
			}

			stack := from.Seats[seat].Stack
			if err := from.UnseatSeat(seat); err != nil {
				return err
			}
			if err := to.SeatPlayer(destSeat, NewPlayerAtTable(move.PlayerID, stack)); err != nil {
				return err
			}

			executed = append(executed, move)
			seatsUsed[move.PlayerID] = destSeat
		}

		// Record the logical moves, then pin each mover to the seat the
		// physical reseat actually used.
		tournament.ApplyRebalanceMoves(executed)
		for playerID, seat := range seatsUsed {
			if reg, registered := tournament.Registrations[playerID]; registered {
				s := seat
				reg.SeatIndex = &s
			}
		}
	}

	// Reclaim tables left empty by busts and moves.
	tableIDs, _, err := o.store.GetTournamentTables(id)
	if err != nil {
		return err
	}

	remaining := make([]TableID, 0, len(tableIDs))
	for _, tableID := range tableIDs {
		current, err := loadCached(tableID)
		if err != nil {
			return err
		}
		if current == nil {
			continue
		}
		if current.SeatedCount() == 0 && !current.HandInProgress {
			if err := o.store.RemoveTable(tableID); err != nil {
				return err
			}
			if err := o.store.RemoveTableTournament(tableID); err != nil {
				return err
			}
			if err := o.store.RemoveTimeController(tableID); err != nil {
				return err
			}
			if err := o.store.RemoveHandSession(tableID); err != nil {
				return err
			}
			delete(cache, tableID)
			continue
		}
		remaining = append(remaining, tableID)
	}

	if err := o.store.InsertTournamentTables(id, remaining); err != nil {
		return err
	}
	for _, cached := range cache {
		if err := o.store.InsertTable(cached); err != nil {
			return err
		}
	}
	return o.store.InsertTournament(tournament)
}
