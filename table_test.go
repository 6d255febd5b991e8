package pokerorchestrator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestTableConfig(maxSeats int) TableConfig {
	return TableConfig{
		MaxSeats:  maxSeats,
		TableType: TableType_Cash,
		Stakes:    NewTableStakes(10, 20, AnteType_None, 0),
	}
}

func TestTable_SeatPlayer(t *testing.T) {
	table := NewTable(1, "main", newTestTableConfig(6))

	assert.NoError(t, table.SeatPlayer(0, NewPlayerAtTable(100, 1000)))
	assert.Equal(t, 1, table.SeatedCount())
	assert.Equal(t, 0, table.FindSeatByPlayer(100))

	// occupied seat
	assert.ErrorIs(t, table.SeatPlayer(0, NewPlayerAtTable(101, 1000)), ErrSeatNotEmpty)

	// out of range
	assert.ErrorIs(t, table.SeatPlayer(6, NewPlayerAtTable(101, 1000)), ErrInvalidSeat)
	assert.ErrorIs(t, table.SeatPlayer(-1, NewPlayerAtTable(101, 1000)), ErrInvalidSeat)

	// same player twice
	assert.ErrorIs(t, table.SeatPlayer(3, NewPlayerAtTable(100, 500)), ErrPlayerAlreadySeated)
	assert.Equal(t, 1, table.SeatedCount())
}

func TestTable_UnseatSeat(t *testing.T) {
	table := NewTable(1, "main", newTestTableConfig(6))
	assert.NoError(t, table.SeatPlayer(2, NewPlayerAtTable(100, 1000)))

	assert.NoError(t, table.UnseatSeat(2))
	assert.Equal(t, 0, table.SeatedCount())
	assert.Equal(t, UnsetValue, table.FindSeatByPlayer(100))

	// unseating an empty seat is a no-op
	assert.NoError(t, table.UnseatSeat(2))
	assert.ErrorIs(t, table.UnseatSeat(9), ErrInvalidSeat)
}

func TestTable_AdjustStack(t *testing.T) {
	table := NewTable(1, "main", newTestTableConfig(6))
	assert.NoError(t, table.SeatPlayer(0, NewPlayerAtTable(100, 1000)))

	assert.NoError(t, table.AdjustStack(0, 500))
	assert.Equal(t, int64(1500), table.Seats[0].Stack)

	assert.NoError(t, table.AdjustStack(0, -400))
	assert.Equal(t, int64(1100), table.Seats[0].Stack)

	// debit below zero clamps at zero
	assert.NoError(t, table.AdjustStack(0, -5000))
	assert.Equal(t, int64(0), table.Seats[0].Stack)

	// credit never wraps
	assert.NoError(t, table.AdjustStack(0, math.MaxInt64))
	assert.NoError(t, table.AdjustStack(0, math.MaxInt64))
	assert.Equal(t, int64(math.MaxInt64), table.Seats[0].Stack)

	assert.ErrorIs(t, table.AdjustStack(1, 100), ErrNoPlayerAtSeat)
	assert.ErrorIs(t, table.AdjustStack(8, 100), ErrInvalidSeat)
}

func TestTable_ResetAfterHand(t *testing.T) {
	table := NewTable(1, "main", newTestTableConfig(6))
	assert.NoError(t, table.SeatPlayer(0, NewPlayerAtTable(100, 1000)))
	assert.NoError(t, table.SeatPlayer(1, NewPlayerAtTable(101, 800)))

	table.Street = Street_River
	table.TotalPot = 300
	table.Board = []string{"Ah", "Kd", "2c"}
	table.Seats[0].CurrentBet = 150
	table.Seats[0].Status = PlayerStatus_Folded
	table.Seats[1].Status = PlayerStatus_SittingOut

	table.ResetAfterHand()

	assert.Equal(t, Street_Preflop, table.Street)
	assert.Equal(t, int64(0), table.TotalPot)
	assert.Empty(t, table.Board)
	assert.Equal(t, int64(0), table.Seats[0].CurrentBet)
	assert.Equal(t, PlayerStatus_Active, table.Seats[0].Status)

	// sitting out survives the reset
	assert.Equal(t, PlayerStatus_SittingOut, table.Seats[1].Status)
}

func TestTable_Clone(t *testing.T) {
	table := NewTable(7, "clone-me", newTestTableConfig(4))
	assert.NoError(t, table.SeatPlayer(0, NewPlayerAtTable(100, 1000)))

	cloned, err := table.Clone()
	assert.NoError(t, err)
	assert.Equal(t, table.ID, cloned.ID)
	assert.Equal(t, table.Seats[0].PlayerID, cloned.Seats[0].PlayerID)

	// clones do not share seat pointers
	cloned.Seats[0].Stack = 1
	assert.Equal(t, int64(1000), table.Seats[0].Stack)
}

func TestTable_AlivePlayers(t *testing.T) {
	table := NewTable(1, "main", newTestTableConfig(6))
	assert.NoError(t, table.SeatPlayer(0, NewPlayerAtTable(100, 1000)))
	assert.NoError(t, table.SeatPlayer(1, NewPlayerAtTable(101, 0)))
	assert.NoError(t, table.SeatPlayer(2, NewPlayerAtTable(102, 50)))

	assert.Len(t, table.SeatedPlayers(), 3)
	assert.Len(t, table.AlivePlayers(), 2)
}
