package pokerorchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestTournamentConfig(tableSize int) TournamentConfig {
	return TournamentConfig{
		Name:            "daily",
		TableSize:       tableSize,
		StartingStack:   1000,
		ActionTime:      30,
		TimeBankSeconds: 60,
		BlindStructure: BlindStructure{
			Levels: []BlindLevelConfig{
				{Level: 1, SmallBlind: 10, BigBlind: 20},
				{Level: 2, SmallBlind: 20, BigBlind: 40},
			},
		},
	}
}

func createTournamentCmd(id TournamentID, config TournamentConfig) Command {
	return Command{
		Type:             CommandType_CreateTournament,
		CreateTournament: &CreateTournamentCommand{TournamentID: id, Config: config},
	}
}

func registerCmd(id TournamentID, playerID PlayerID) Command {
	return Command{
		Type: CommandType_RegisterPlayer,
		RegisterPlayer: &RegisterPlayerCommand{
			TournamentID: id,
			PlayerID:     playerID,
			DisplayName:  signerFor(playerID),
		},
	}
}

func startHandCmd(tableID TableID) Command {
	return Command{Type: CommandType_StartHand, StartHand: &StartHandCommand{TableID: tableID}}
}

func activeChipSum(tournament *Tournament) int64 {
	var sum int64
	for _, reg := range tournament.Registrations {
		if !reg.IsBusted {
			sum += reg.TotalChips
		}
	}
	return sum
}

func TestTournament_RegistrationFlow(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t, 0)

	resp := orch.Execute(testAdmin, createTournamentCmd(9, newTestTournamentConfig(3)))
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
	assert.Equal(t, TournamentStatus_Registering, resp.Tournament.Status)

	resp = orch.Execute(signerFor(1), registerCmd(9, 1))
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
	assert.Equal(t, 1, resp.Tournament.PlayerCount)

	// duplicate registration
	resp = orch.Execute(signerFor(1), registerCmd(9, 1))
	assert.Equal(t, ResponseType_Error, resp.Type)
	assert.Equal(t, ErrAlreadyRegistered.Error(), resp.Message)

	// unknown tournament
	resp = orch.Execute(signerFor(1), registerCmd(8, 1))
	assert.Equal(t, ResponseType_Error, resp.Type)
	assert.Equal(t, ErrTournamentNotFound.Error(), resp.Message)

	// starting with a single registrant is rejected
	resp = orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})
	assert.Equal(t, ResponseType_Error, resp.Type)
	assert.Equal(t, ErrNotEnoughPlayers.Error(), resp.Message)

	resp = orch.Execute(signerFor(1), Command{
		Type:             CommandType_UnregisterPlayer,
		UnregisterPlayer: &UnregisterPlayerCommand{TournamentID: 9, PlayerID: 1},
	})
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
	assert.Equal(t, 0, resp.Tournament.PlayerCount)
}

func TestTournament_StartSeatsField(t *testing.T) {
	orch, store, _ := newTestOrchestrator(t, 0)

	orch.Execute(testAdmin, createTournamentCmd(9, newTestTournamentConfig(3)))
	for pid := PlayerID(1); pid <= 5; pid++ {
		orch.Execute(signerFor(pid), registerCmd(9, pid))
	}

	resp := orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
	assert.Equal(t, TournamentStatus_Running, resp.Tournament.Status)

	t0 := tournamentTableID(9, 0)
	t1 := tournamentTableID(9, 1)
	assert.Equal(t, []TableID{t0, t1}, resp.Tournament.Tables)

	tableA, exist, err := store.GetTable(t0)
	assert.NoError(t, err)
	assert.True(t, exist)
	assert.Equal(t, 3, tableA.SeatedCount())
	assert.Equal(t, TableType_Tournament, tableA.Config.TableType)
	assert.Equal(t, int64(10), tableA.Config.Stakes.SmallBlind)

	tableB, _, _ := store.GetTable(t1)
	assert.Equal(t, 2, tableB.SeatedCount())

	// players chunk in ascending id order
	assert.Equal(t, PlayerID(1), tableA.Seats[0].PlayerID)
	assert.Equal(t, PlayerID(4), tableB.Seats[0].PlayerID)
	assert.Equal(t, int64(1000), tableA.Seats[0].Stack)

	tournament, _, _ := store.GetTournament(9)
	for _, reg := range tournament.Registrations {
		assert.NotNil(t, reg.TableID)
		assert.NotNil(t, reg.SeatIndex)
	}

	// double start is rejected
	resp = orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})
	assert.Equal(t, ResponseType_Error, resp.Type)
	assert.Equal(t, ErrTournamentInvalidStatus.Error(), resp.Message)
}

func TestTournament_AdvanceLevel(t *testing.T) {
	orch, store, _ := newTestOrchestrator(t, 0)

	orch.Execute(testAdmin, createTournamentCmd(9, newTestTournamentConfig(2)))
	orch.Execute(signerFor(1), registerCmd(9, 1))
	orch.Execute(signerFor(2), registerCmd(9, 2))
	orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})

	resp := orch.Execute(testAdmin, Command{
		Type:         CommandType_AdvanceLevel,
		AdvanceLevel: &AdvanceLevelCommand{TournamentID: 9},
	})
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
	assert.Equal(t, 2, resp.Tournament.CurrentLevel)
	assert.Equal(t, int64(40), resp.Tournament.Stakes.BigBlind)

	table, _, _ := store.GetTable(tournamentTableID(9, 0))
	assert.Equal(t, int64(20), table.Config.Stakes.SmallBlind)

	// no third level configured; advancing past the end is a no-op
	resp = orch.Execute(testAdmin, Command{
		Type:         CommandType_AdvanceLevel,
		AdvanceLevel: &AdvanceLevelCommand{TournamentID: 9},
	})
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
	assert.Equal(t, 2, resp.Tournament.CurrentLevel)
}

func TestTournament_BustsAndRebalance(t *testing.T) {
	orch, store, _ := newTestOrchestrator(t, 10000)

	orch.Execute(testAdmin, createTournamentCmd(9, newTestTournamentConfig(6)))
	for pid := PlayerID(1); pid <= 9; pid++ {
		orch.Execute(signerFor(pid), registerCmd(9, pid))
	}
	orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})

	t0 := tournamentTableID(9, 0) // players 1..6
	t1 := tournamentTableID(9, 1) // players 7..9

	// two of the three players at the short table bust in one hand
	orch.Execute(testAdmin, startHandCmd(t1))
	resp := orch.Execute(signerFor(7), foldCmd(t1, 0, 7))
	assert.Equal(t, ResponseType_TableState, resp.Type)
	resp = orch.Execute(signerFor(8), foldCmd(t1, 1, 8))
	assert.Equal(t, ResponseType_HandFinished, resp.Type)

	tournament, _, _ := store.GetTournament(9)
	assert.True(t, tournament.Registrations[7].IsBusted)
	assert.True(t, tournament.Registrations[8].IsBusted)
	assert.Equal(t, 9, tournament.Registrations[7].FinishRank)
	assert.Equal(t, 8, tournament.Registrations[8].FinishRank)
	assert.Equal(t, int64(3000), tournament.Registrations[9].TotalChips)

	// 6 vs 1 evens out to 4 vs 3 with ascending-id moves
	tableA, _, _ := store.GetTable(t0)
	tableB, _, _ := store.GetTable(t1)
	assert.Equal(t, 4, tableA.SeatedCount())
	assert.Equal(t, 3, tableB.SeatedCount())
	assert.Equal(t, UnsetValue, tableA.FindSeatByPlayer(1))
	assert.Equal(t, UnsetValue, tableA.FindSeatByPlayer(2))
	assert.NotEqual(t, UnsetValue, tableB.FindSeatByPlayer(1))
	assert.NotEqual(t, UnsetValue, tableB.FindSeatByPlayer(2))

	// registration records point at the seats the reseat actually used
	assert.Equal(t, &t1, tournament.Registrations[1].TableID)
	assert.Equal(t, &t1, tournament.Registrations[2].TableID)
	assert.NotNil(t, tournament.Registrations[1].SeatIndex)
	assert.NotNil(t, tournament.Registrations[2].SeatIndex)
	assert.Equal(t, tableB.FindSeatByPlayer(1), *tournament.Registrations[1].SeatIndex)
	assert.Equal(t, tableB.FindSeatByPlayer(2), *tournament.Registrations[2].SeatIndex)

	// chips conserved across busts and moves
	assert.Equal(t, int64(9000), activeChipSum(tournament))

	// every survivor is seated at exactly one table
	for pid, reg := range tournament.Registrations {
		if reg.IsBusted {
			continue
		}
		seatsHeld := 0
		for _, table := range []*Table{tableA, tableB} {
			if table.FindSeatByPlayer(pid) != UnsetValue {
				seatsHeld++
			}
		}
		assert.Equal(t, 1, seatsHeld, "player %d", pid)
	}
}

func TestTournament_TableBreaksWhenFieldFits(t *testing.T) {
	orch, store, _ := newTestOrchestrator(t, 10000)

	orch.Execute(testAdmin, createTournamentCmd(9, newTestTournamentConfig(6)))
	for pid := PlayerID(1); pid <= 9; pid++ {
		orch.Execute(signerFor(pid), registerCmd(9, pid))
	}
	orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})

	t0 := tournamentTableID(9, 0) // players 1..6
	t1 := tournamentTableID(9, 1) // players 7..9

	// five of six players at the full table bust in one hand
	orch.Execute(testAdmin, startHandCmd(t0))
	for seat := 0; seat < 4; seat++ {
		pid := PlayerID(seat + 1)
		resp := orch.Execute(signerFor(pid), foldCmd(t0, seat, pid))
		assert.Equal(t, ResponseType_TableState, resp.Type)
	}
	resp := orch.Execute(signerFor(5), foldCmd(t0, 4, 5))
	assert.Equal(t, ResponseType_HandFinished, resp.Type)

	// the four survivors fit on one table, so the drained table breaks
	_, exist, err := store.GetTable(t0)
	assert.NoError(t, err)
	assert.False(t, exist)

	tables, _, _ := store.GetTournamentTables(9)
	assert.Equal(t, []TableID{t1}, tables)

	tableB, _, _ := store.GetTable(t1)
	assert.Equal(t, 4, tableB.SeatedCount())
	assert.NotEqual(t, UnsetValue, tableB.FindSeatByPlayer(6))

	tournament, _, _ := store.GetTournament(9)
	assert.Equal(t, TournamentStatus_Running, tournament.Status)
	assert.Equal(t, &t1, tournament.Registrations[6].TableID)
	assert.NotNil(t, tournament.Registrations[6].SeatIndex)
	assert.Equal(t, tableB.FindSeatByPlayer(6), *tournament.Registrations[6].SeatIndex)
	assert.Equal(t, int64(6000), tournament.Registrations[6].TotalChips)
	for pid := PlayerID(1); pid <= 5; pid++ {
		assert.True(t, tournament.Registrations[pid].IsBusted)
		assert.Equal(t, 10-int(pid), tournament.Registrations[pid].FinishRank)
	}
	assert.Equal(t, int64(9000), activeChipSum(tournament))
}

func TestTournament_ConsolidationAndFinish(t *testing.T) {
	orch, store, _ := newTestOrchestrator(t, 10000)

	orch.Execute(testAdmin, createTournamentCmd(9, newTestTournamentConfig(2)))
	for pid := PlayerID(1); pid <= 4; pid++ {
		orch.Execute(signerFor(pid), registerCmd(9, pid))
	}
	orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})

	t0 := tournamentTableID(9, 0) // players 1,2
	t1 := tournamentTableID(9, 1) // players 3,4

	// bust player 1 at the first table
	orch.Execute(testAdmin, startHandCmd(t0))
	resp := orch.Execute(signerFor(1), foldCmd(t0, 0, 1))
	assert.Equal(t, ResponseType_HandFinished, resp.Type)

	tournament, _, _ := store.GetTournament(9)
	assert.True(t, tournament.Registrations[1].IsBusted)
	assert.Equal(t, 4, tournament.Registrations[1].FinishRank)

	// 1 vs 2 players across two tables: no move yet
	tables, _, _ := store.GetTournamentTables(9)
	assert.Len(t, tables, 2)

	// bust player 3 at the second table; the field now fits on one table
	orch.Execute(testAdmin, startHandCmd(t1))
	resp = orch.Execute(signerFor(3), foldCmd(t1, 0, 3))
	assert.Equal(t, ResponseType_HandFinished, resp.Type)

	// the emptied table is reclaimed
	_, exist, err := store.GetTable(t1)
	assert.NoError(t, err)
	assert.False(t, exist)
	tables, _, _ = store.GetTournamentTables(9)
	assert.Equal(t, []TableID{t0}, tables)

	tableA, _, _ := store.GetTable(t0)
	assert.Equal(t, 2, tableA.SeatedCount())
	assert.NotEqual(t, UnsetValue, tableA.FindSeatByPlayer(2))
	assert.NotEqual(t, UnsetValue, tableA.FindSeatByPlayer(4))

	tournament, _, _ = store.GetTournament(9)
	assert.Equal(t, int64(4000), activeChipSum(tournament))

	// heads-up for the title
	orch.Execute(testAdmin, startHandCmd(t0))
	tableA, _, _ = store.GetTable(t0)
	session, exist, _ := store.GetHandSession(t0)
	assert.True(t, exist)
	actorSeat := *session.CurrentActorSeat
	actor := tableA.Seats[actorSeat].PlayerID

	resp = orch.Execute(signerFor(actor), foldCmd(t0, actorSeat, actor))
	assert.Equal(t, ResponseType_HandFinished, resp.Type)

	tournament, _, _ = store.GetTournament(9)
	assert.Equal(t, TournamentStatus_Finished, tournament.Status)

	var champion *TournamentRegistration
	for _, reg := range tournament.Registrations {
		if reg.FinishRank == 1 {
			champion = reg
		}
	}
	assert.NotNil(t, champion)
	assert.False(t, champion.IsBusted)
	assert.Equal(t, int64(4000), champion.TotalChips)
}

func TestTournament_CloseReclaimsTables(t *testing.T) {
	orch, store, _ := newTestOrchestrator(t, 0)

	orch.Execute(testAdmin, createTournamentCmd(9, newTestTournamentConfig(2)))
	orch.Execute(signerFor(1), registerCmd(9, 1))
	orch.Execute(signerFor(2), registerCmd(9, 2))
	orch.Execute(testAdmin, Command{
		Type:            CommandType_StartTournament,
		StartTournament: &StartTournamentCommand{TournamentID: 9},
	})

	resp := orch.Execute(testAdmin, Command{
		Type:            CommandType_CloseTournament,
		CloseTournament: &CloseTournamentCommand{TournamentID: 9},
	})
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
	assert.Equal(t, TournamentStatus_Finished, resp.Tournament.Status)
	assert.Empty(t, resp.Tournament.Tables)

	_, exist, err := store.GetTable(tournamentTableID(9, 0))
	assert.NoError(t, err)
	assert.False(t, exist)

	// closing twice is a no-op
	resp = orch.Execute(testAdmin, Command{
		Type:            CommandType_CloseTournament,
		CloseTournament: &CloseTournamentCommand{TournamentID: 9},
	})
	assert.Equal(t, ResponseType_TournamentState, resp.Type)
}
