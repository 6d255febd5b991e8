package pokerorchestrator

import (
	"encoding/json"
	"sort"
	"sync"
)

// StateStore is the persistence boundary. Every collection is load-by-key and
// insert-overwrites: handlers load an entity, mutate the copy and insert it
// back, so a failed command never leaves a half-written record behind.
type StateStore interface {
	// Tables
	GetTable(id TableID) (*Table, bool, error)
	InsertTable(table *Table) error
	RemoveTable(id TableID) error
	TableIDs() ([]TableID, error)

	// Suspended hands, one per table at most
	GetHandSession(tableID TableID) (*HandSession, bool, error)
	InsertHandSession(session *HandSession) error
	RemoveHandSession(tableID TableID) error

	// Tournaments
	GetTournament(id TournamentID) (*Tournament, bool, error)
	InsertTournament(tournament *Tournament) error
	TournamentIDs() ([]TournamentID, error)

	// Tournament table indices
	GetTournamentTables(id TournamentID) ([]TableID, bool, error)
	InsertTournamentTables(id TournamentID, tables []TableID) error
	GetTableTournament(tableID TableID) (TournamentID, bool, error)
	InsertTableTournament(tableID TableID, tournamentID TournamentID) error
	RemoveTableTournament(tableID TableID) error

	// Per-table clocks
	GetTimeController(tableID TableID) (*TimeController, bool, error)
	InsertTimeController(tableID TableID, tc *TimeController) error
	RemoveTimeController(tableID TableID) error

	// Player naming and the signer/player binding
	GetPlayerName(id PlayerID) (string, bool, error)
	InsertPlayerName(id PlayerID, name string) error
	GetPlayerForSigner(signer string) (PlayerID, bool, error)
	GetSignerForPlayer(id PlayerID) (string, bool, error)
	BindSignerPlayer(signer string, id PlayerID) error

	// Scalars
	GetHandCounter() (uint64, error)
	SetHandCounter(v uint64) error
	GetBaseSeed() (uint64, error)
	SetBaseSeed(v uint64) error
	GetOwner() (string, error)
	SetOwner(signer string) error
}

// MemoryStateStore keeps everything in maps, deep-copying entities through
// JSON on the way in and out so callers never share pointers with the store.
type MemoryStateStore struct {
	mu sync.RWMutex

	tables           map[TableID]json.RawMessage
	handSessions     map[TableID]json.RawMessage
	tournaments      map[TournamentID]json.RawMessage
	tournamentTables map[TournamentID][]TableID
	tableTournaments map[TableID]TournamentID
	timeControllers  map[TableID]json.RawMessage
	playerNames      map[PlayerID]string
	signerToPlayer   map[string]PlayerID
	playerToSigner   map[PlayerID]string

	handCounter uint64
	baseSeed    uint64
	owner       string
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{
		tables:           make(map[TableID]json.RawMessage),
		handSessions:     make(map[TableID]json.RawMessage),
		tournaments:      make(map[TournamentID]json.RawMessage),
		tournamentTables: make(map[TournamentID][]TableID),
		tableTournaments: make(map[TableID]TournamentID),
		timeControllers:  make(map[TableID]json.RawMessage),
		playerNames:      make(map[PlayerID]string),
		signerToPlayer:   make(map[string]PlayerID),
		playerToSigner:   make(map[PlayerID]string),
	}
}

func encodeEntity(v interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ErrStorage
	}
	return data, nil
}

func (s *MemoryStateStore) GetTable(id TableID) (*Table, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, exist := s.tables[id]
	if !exist {
		return nil, false, nil
	}

	var table Table
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, false, ErrStorage
	}
	return &table, true, nil
}

func (s *MemoryStateStore) InsertTable(table *Table) error {
	raw, err := encodeEntity(table)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table.ID] = raw
	return nil
}

func (s *MemoryStateStore) RemoveTable(id TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, id)
	return nil
}

func (s *MemoryStateStore) TableIDs() ([]TableID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]TableID, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStateStore) GetHandSession(tableID TableID) (*HandSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, exist := s.handSessions[tableID]
	if !exist {
		return nil, false, nil
	}

	var session HandSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, false, ErrStorage
	}
	return &session, true, nil
}

func (s *MemoryStateStore) InsertHandSession(session *HandSession) error {
	raw, err := encodeEntity(session)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.handSessions[session.TableID] = raw
	return nil
}

func (s *MemoryStateStore) RemoveHandSession(tableID TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handSessions, tableID)
	return nil
}

func (s *MemoryStateStore) GetTournament(id TournamentID) (*Tournament, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, exist := s.tournaments[id]
	if !exist {
		return nil, false, nil
	}

	var tournament Tournament
	if err := json.Unmarshal(raw, &tournament); err != nil {
		return nil, false, ErrStorage
	}
	return &tournament, true, nil
}

func (s *MemoryStateStore) InsertTournament(tournament *Tournament) error {
	raw, err := encodeEntity(tournament)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[tournament.ID] = raw
	return nil
}

func (s *MemoryStateStore) TournamentIDs() ([]TournamentID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]TournamentID, 0, len(s.tournaments))
	for id := range s.tournaments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *MemoryStateStore) GetTournamentTables(id TournamentID) ([]TableID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tables, exist := s.tournamentTables[id]
	if !exist {
		return nil, false, nil
	}

	out := make([]TableID, len(tables))
	copy(out, tables)
	return out, true, nil
}

func (s *MemoryStateStore) InsertTournamentTables(id TournamentID, tables []TableID) error {
	stored := make([]TableID, len(tables))
	copy(stored, tables)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournamentTables[id] = stored
	return nil
}

func (s *MemoryStateStore) GetTableTournament(tableID TableID) (TournamentID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exist := s.tableTournaments[tableID]
	return id, exist, nil
}

func (s *MemoryStateStore) InsertTableTournament(tableID TableID, tournamentID TournamentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tableTournaments[tableID] = tournamentID
	return nil
}

func (s *MemoryStateStore) RemoveTableTournament(tableID TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tableTournaments, tableID)
	return nil
}

func (s *MemoryStateStore) GetTimeController(tableID TableID) (*TimeController, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, exist := s.timeControllers[tableID]
	if !exist {
		return nil, false, nil
	}

	var tc TimeController
	if err := json.Unmarshal(raw, &tc); err != nil {
		return nil, false, ErrStorage
	}
	return &tc, true, nil
}

func (s *MemoryStateStore) InsertTimeController(tableID TableID, tc *TimeController) error {
	raw, err := encodeEntity(tc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeControllers[tableID] = raw
	return nil
}

func (s *MemoryStateStore) RemoveTimeController(tableID TableID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.timeControllers, tableID)
	return nil
}

func (s *MemoryStateStore) GetPlayerName(id PlayerID) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, exist := s.playerNames[id]
	return name, exist, nil
}

func (s *MemoryStateStore) InsertPlayerName(id PlayerID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerNames[id] = name
	return nil
}

func (s *MemoryStateStore) GetPlayerForSigner(signer string) (PlayerID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exist := s.signerToPlayer[signer]
	return id, exist, nil
}

func (s *MemoryStateStore) GetSignerForPlayer(id PlayerID) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	signer, exist := s.playerToSigner[id]
	return signer, exist, nil
}

func (s *MemoryStateStore) BindSignerPlayer(signer string, id PlayerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signerToPlayer[signer] = id
	s.playerToSigner[id] = signer
	return nil
}

func (s *MemoryStateStore) GetHandCounter() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handCounter, nil
}

func (s *MemoryStateStore) SetHandCounter(v uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handCounter = v
	return nil
}

func (s *MemoryStateStore) GetBaseSeed() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseSeed, nil
}

func (s *MemoryStateStore) SetBaseSeed(v uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseSeed = v
	return nil
}

func (s *MemoryStateStore) GetOwner() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owner, nil
}

func (s *MemoryStateStore) SetOwner(signer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.owner = signer
	return nil
}

// Dump serializes the full store contents in a stable order, mostly useful to
// compare state before and after a rejected command.
func (s *MemoryStateStore) Dump() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := struct {
		Tables           map[TableID]json.RawMessage     `json:"tables"`
		HandSessions     map[TableID]json.RawMessage     `json:"hand_sessions"`
		Tournaments      map[TournamentID]json.RawMessage `json:"tournaments"`
		TournamentTables map[TournamentID][]TableID      `json:"tournament_tables"`
		TableTournaments map[TableID]TournamentID        `json:"table_tournaments"`
		TimeControllers  map[TableID]json.RawMessage     `json:"time_controllers"`
		PlayerNames      map[PlayerID]string             `json:"player_names"`
		SignerToPlayer   map[string]PlayerID             `json:"signer_to_player"`
		HandCounter      uint64                          `json:"hand_counter"`
		BaseSeed         uint64                          `json:"base_seed"`
		Owner            string                          `json:"owner"`
	}{
		Tables:           s.tables,
		HandSessions:     s.handSessions,
		Tournaments:      s.tournaments,
		TournamentTables: s.tournamentTables,
		TableTournaments: s.tableTournaments,
		TimeControllers:  s.timeControllers,
		PlayerNames:      s.playerNames,
		SignerToPlayer:   s.signerToPlayer,
		HandCounter:      s.handCounter,
		BaseSeed:         s.baseSeed,
		Owner:            s.owner,
	}

	return json.Marshal(snapshot)
}
