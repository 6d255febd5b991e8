package pokerorchestrator

import (
	"sort"

	"github.com/thoas/go-funk"
)

type BlindLevelConfig struct {
	Level      int   `json:"level"`
	SmallBlind int64 `json:"small_blind"`
	BigBlind   int64 `json:"big_blind"`
	Ante       int64 `json:"ante"`
}

type BlindStructure struct {
	Levels []BlindLevelConfig `json:"levels"`
}

// LevelByNumber returns the level config for a 1-based level number, or nil.
func (bs BlindStructure) LevelByNumber(level int) *BlindLevelConfig {
	for idx := range bs.Levels {
		if bs.Levels[idx].Level == level {
			return &bs.Levels[idx]
		}
	}
	return nil
}

type TournamentConfig struct {
	Name                 string         `json:"name"`
	TableSize            int            `json:"table_size"`
	StartingStack        int64          `json:"starting_stack"`
	MaxPlayers           int            `json:"max_players"` // 0 = unlimited
	ActionTime           int            `json:"action_time"` // seconds per decision
	LevelDuration        int            `json:"level_duration"`
	AnteType             string         `json:"ante_type"`
	TimeBankSeconds      int            `json:"time_bank_seconds"`
	BreakEveryMinutes    int            `json:"break_every_minutes"`
	BreakDurationMinutes int            `json:"break_duration_minutes"`
	ReEntryAllowed       bool           `json:"re_entry_allowed"`
	RebuysAllowed        bool           `json:"rebuys_allowed"`
	BlindStructure       BlindStructure `json:"blind_structure"`
}

// TournamentRegistration tracks one registered player. TableID/SeatIndex are
// UnsetValue markers encoded as pointers being nil.
type TournamentRegistration struct {
	PlayerID   PlayerID `json:"player_id"`
	TotalChips int64    `json:"total_chips"`
	TableID    *TableID `json:"table_id,omitempty"`
	SeatIndex  *int     `json:"seat_index,omitempty"`
	IsBusted   bool     `json:"is_busted"`
	FinishRank int      `json:"finish_rank"` // 0 until the player finishes
}

type Tournament struct {
	ID            TournamentID                         `json:"id"`
	OwnerPlayerID PlayerID                             `json:"owner_player_id"`
	Config        TournamentConfig                     `json:"config"`
	Status        string                               `json:"status"`
	CurrentLevel  int                                  `json:"current_level"`
	StartedAt     int64                                `json:"started_at"`
	Registrations map[PlayerID]*TournamentRegistration `json:"registrations"`
}

func NewTournament(id TournamentID, owner PlayerID, config TournamentConfig) (*Tournament, error) {
	if config.TableSize < 2 || len(config.BlindStructure.Levels) == 0 || config.StartingStack <= 0 {
		return nil, ErrInvalidTournamentConfig
	}

	return &Tournament{
		ID:            id,
		OwnerPlayerID: owner,
		Config:        config,
		Status:        TournamentStatus_Registering,
		CurrentLevel:  1,
		StartedAt:     UnsetValue,
		Registrations: make(map[PlayerID]*TournamentRegistration),
	}, nil
}

func (t *Tournament) RegisterPlayer(playerID PlayerID) error {
	if t.Status != TournamentStatus_Registering {
		return ErrTournamentInvalidStatus
	}
	if _, exist := t.Registrations[playerID]; exist {
		return ErrAlreadyRegistered
	}
	if t.Config.MaxPlayers > 0 && len(t.Registrations) >= t.Config.MaxPlayers {
		return ErrTournamentFull
	}

	t.Registrations[playerID] = &TournamentRegistration{
		PlayerID:   playerID,
		TotalChips: t.Config.StartingStack,
	}
	return nil
}

func (t *Tournament) UnregisterPlayer(playerID PlayerID) error {
	if t.Status != TournamentStatus_Registering {
		return ErrTournamentInvalidStatus
	}
	if _, exist := t.Registrations[playerID]; !exist {
		return ErrNotRegistered
	}

	delete(t.Registrations, playerID)
	return nil
}

func (t *Tournament) Start(now int64) error {
	if t.Status != TournamentStatus_Registering {
		return ErrTournamentInvalidStatus
	}

	t.Status = TournamentStatus_Running
	t.StartedAt = now
	return nil
}

func (t *Tournament) Pause() error {
	if t.Status != TournamentStatus_Running {
		return ErrTournamentNotRunning
	}
	t.Status = TournamentStatus_OnBreak
	return nil
}

func (t *Tournament) Resume() error {
	if t.Status != TournamentStatus_OnBreak {
		return ErrTournamentInvalidStatus
	}
	t.Status = TournamentStatus_Running
	return nil
}

// ActiveRegistrations returns non-busted registrations.
func (t *Tournament) ActiveRegistrations() []*TournamentRegistration {
	out := make([]*TournamentRegistration, 0)
	for _, reg := range t.Registrations {
		if !reg.IsBusted {
			out = append(out, reg)
		}
	}
	return out
}

// MarkPlayerBusted records an elimination and assigns the finishing rank.
// Busting the last surviving player is rejected: a tournament cannot have zero
// survivors.
func (t *Tournament) MarkPlayerBusted(playerID PlayerID) error {
	reg, exist := t.Registrations[playerID]
	if !exist {
		return ErrNotRegistered
	}
	if reg.IsBusted {
		return nil
	}

	active := t.ActiveRegistrations()
	if len(active) <= 1 {
		return ErrCannotBustLastPlayer
	}

	reg.IsBusted = true
	reg.FinishRank = len(active) // busts rank from the bottom up
	reg.TableID = nil
	reg.SeatIndex = nil

	t.checkAndFinishIfNeeded()
	return nil
}

// checkAndFinishIfNeeded closes the tournament once a single survivor remains.
func (t *Tournament) checkAndFinishIfNeeded() {
	if t.Status != TournamentStatus_Running && t.Status != TournamentStatus_OnBreak {
		return
	}

	active := t.ActiveRegistrations()
	if len(active) != 1 {
		return
	}

	active[0].FinishRank = 1
	t.Status = TournamentStatus_Finished
}

// RebalanceMove is one planned reseat: take player from FromTable, seat them
// at ToTable.
type RebalanceMove struct {
	PlayerID  PlayerID `json:"player_id"`
	FromTable TableID  `json:"from_table"`
	ToTable   TableID  `json:"to_table"`
}

// ComputeRebalanceMoves plans reseats that keep table occupancy as even as
// possible after eliminations. It is a pure function of the registration
// records: tables whose remaining players all fit elsewhere are drained
// entirely, then occupancy is evened until the spread is at most one. Players
// are always picked in ascending id order so the same state yields the same
// plan.
func (t *Tournament) ComputeRebalanceMoves() []RebalanceMove {
	tableSize := t.Config.TableSize

	// Seated, non-busted players per table.
	occupants := make(map[TableID][]PlayerID)
	for _, reg := range t.Registrations {
		if reg.IsBusted || reg.TableID == nil {
			continue
		}
		occupants[*reg.TableID] = append(occupants[*reg.TableID], reg.PlayerID)
	}
	if len(occupants) < 2 {
		return nil
	}

	for _, players := range occupants {
		sort.Slice(players, func(i, j int) bool { return players[i] < players[j] })
	}

	tableIDs := make([]TableID, 0, len(occupants))
	total := 0
	for tid, players := range occupants {
		tableIDs = append(tableIDs, tid)
		total += len(players)
	}
	sort.Slice(tableIDs, func(i, j int) bool { return tableIDs[i] < tableIDs[j] })

	moves := make([]RebalanceMove, 0)

	// Phase 1: break tables while the field fits on one table fewer. The
	// youngest (highest id) of the least-occupied tables is drained first.
	for len(tableIDs) > 1 && total <= (len(tableIDs)-1)*tableSize {
		breakIdx := 0
		for i := 1; i < len(tableIDs); i++ {
			ci, cb := len(occupants[tableIDs[i]]), len(occupants[tableIDs[breakIdx]])
			if ci < cb || (ci == cb && tableIDs[i] > tableIDs[breakIdx]) {
				breakIdx = i
			}
		}
		breaking := tableIDs[breakIdx]
		tableIDs = append(tableIDs[:breakIdx], tableIDs[breakIdx+1:]...)

		for _, playerID := range occupants[breaking] {
			dest := pickLeastOccupied(tableIDs, occupants, tableSize)
			if dest == nil {
				// No free seat anywhere; leave the player where they are.
				continue
			}
			moves = append(moves, RebalanceMove{PlayerID: playerID, FromTable: breaking, ToTable: *dest})
			occupants[*dest] = append(occupants[*dest], playerID)
		}
		delete(occupants, breaking)
	}

	// Phase 2: even out remaining tables until max-min <= 1.
	for {
		if len(tableIDs) < 2 {
			break
		}

		maxIdx, minIdx := 0, 0
		for i := 1; i < len(tableIDs); i++ {
			if len(occupants[tableIDs[i]]) > len(occupants[tableIDs[maxIdx]]) {
				maxIdx = i
			}
			if len(occupants[tableIDs[i]]) < len(occupants[tableIDs[minIdx]]) {
				minIdx = i
			}
		}
		from, to := tableIDs[maxIdx], tableIDs[minIdx]
		if len(occupants[from])-len(occupants[to]) <= 1 {
			break
		}

		playerID := occupants[from][0]
		occupants[from] = occupants[from][1:]
		occupants[to] = append(occupants[to], playerID)
		sort.Slice(occupants[to], func(i, j int) bool { return occupants[to][i] < occupants[to][j] })
		moves = append(moves, RebalanceMove{PlayerID: playerID, FromTable: from, ToTable: to})
	}

	return moves
}

func pickLeastOccupied(tableIDs []TableID, occupants map[TableID][]PlayerID, tableSize int) *TableID {
	var best *TableID
	for i := range tableIDs {
		tid := tableIDs[i]
		if len(occupants[tid]) >= tableSize {
			continue
		}
		if best == nil || len(occupants[tid]) < len(occupants[*best]) {
			best = &tableIDs[i]
		}
	}
	return best
}

// ApplyRebalanceMoves rewrites the logical registration records. Seat indexes
// are cleared; the caller overwrites them with the seats the physical reseat
// actually used.
func (t *Tournament) ApplyRebalanceMoves(moves []RebalanceMove) {
	for _, m := range moves {
		reg, exist := t.Registrations[m.PlayerID]
		if !exist || reg.IsBusted {
			continue
		}
		to := m.ToTable
		reg.TableID = &to
		reg.SeatIndex = nil
	}
}

// TotalChipsInPlay sums chips over non-busted registrations.
func (t *Tournament) TotalChipsInPlay() int64 {
	var total int64
	for _, reg := range t.Registrations {
		if !reg.IsBusted {
			total += reg.TotalChips
		}
	}
	return total
}

// SortedPlayerIDs returns all registered player ids in ascending order.
func (t *Tournament) SortedPlayerIDs() []PlayerID {
	ids := funk.Keys(t.Registrations).([]PlayerID)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// StakesForLevel resolves table stakes for a blind level, falling back to the
// first level when the number is unknown.
func StakesForLevel(config TournamentConfig, level int) TableStakes {
	blind := config.BlindStructure.LevelByNumber(level)
	if blind == nil && len(config.BlindStructure.Levels) > 0 {
		blind = &config.BlindStructure.Levels[0]
	}
	if blind == nil {
		return TableStakes{AnteType: AnteType_None}
	}

	anteType := config.AnteType
	if blind.Ante == 0 {
		anteType = AnteType_None
	} else if anteType == "" {
		anteType = AnteType_Classic
	}

	return NewTableStakes(blind.SmallBlind, blind.BigBlind, anteType, blind.Ante)
}
