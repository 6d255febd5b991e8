package pokerorchestrator

import (
	"database/sql"
	"encoding/json"
	"strconv"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS orchestrator_state (
	collection TEXT NOT NULL,
	k TEXT NOT NULL,
	v TEXT NOT NULL,
	PRIMARY KEY (collection, k)
);
`

const (
	collectionTables           = "tables"
	collectionHandSessions     = "hand_sessions"
	collectionTournaments      = "tournaments"
	collectionTournamentTables = "tournament_tables"
	collectionTableTournaments = "table_tournaments"
	collectionTimeControllers  = "time_controllers"
	collectionPlayerNames      = "player_names"
	collectionSignerPlayers    = "signer_players"
	collectionPlayerSigners    = "player_signers"
	collectionScalars          = "scalars"
)

const (
	scalarHandCounter = "hand_counter"
	scalarBaseSeed    = "base_seed"
	scalarOwner       = "owner"
)

// SQLiteStateStore persists the same collections as MemoryStateStore in a
// single keyed table, one JSON document per entity.
type SQLiteStateStore struct {
	db *sql.DB
}

func NewSQLiteStateStore(dsn string) (*SQLiteStateStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ErrStorage
	}

	// SQLite allows one writer at a time, and an in-memory database exists
	// per connection. A single pooled connection covers both.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, ErrStorage
	}

	return &SQLiteStateStore{db: db}, nil
}

func (s *SQLiteStateStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStateStore) get(collection, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(
		"SELECT v FROM orchestrator_state WHERE collection = ? AND k = ?",
		collection, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, ErrStorage
	}
	return value, true, nil
}

func (s *SQLiteStateStore) put(collection, key, value string) error {
	_, err := s.db.Exec(
		"INSERT INTO orchestrator_state (collection, k, v) VALUES (?, ?, ?) "+
			"ON CONFLICT (collection, k) DO UPDATE SET v = excluded.v",
		collection, key, value,
	)
	if err != nil {
		return ErrStorage
	}
	return nil
}

func (s *SQLiteStateStore) remove(collection, key string) error {
	_, err := s.db.Exec(
		"DELETE FROM orchestrator_state WHERE collection = ? AND k = ?",
		collection, key,
	)
	if err != nil {
		return ErrStorage
	}
	return nil
}

func (s *SQLiteStateStore) keys(collection string) ([]string, error) {
	rows, err := s.db.Query(
		"SELECT k FROM orchestrator_state WHERE collection = ? ORDER BY CAST(k AS INTEGER)",
		collection,
	)
	if err != nil {
		return nil, ErrStorage
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, ErrStorage
		}
		out = append(out, key)
	}
	if err := rows.Err(); err != nil {
		return nil, ErrStorage
	}
	return out, nil
}

func (s *SQLiteStateStore) getEntity(collection, key string, target interface{}) (bool, error) {
	raw, exist, err := s.get(collection, key)
	if err != nil || !exist {
		return exist, err
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return false, ErrStorage
	}
	return true, nil
}

func (s *SQLiteStateStore) putEntity(collection, key string, entity interface{}) error {
	raw, err := json.Marshal(entity)
	if err != nil {
		return ErrStorage
	}
	return s.put(collection, key, string(raw))
}

func tableKey(id TableID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func tournamentKey(id TournamentID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func playerKey(id PlayerID) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *SQLiteStateStore) GetTable(id TableID) (*Table, bool, error) {
	var table Table
	exist, err := s.getEntity(collectionTables, tableKey(id), &table)
	if err != nil || !exist {
		return nil, exist, err
	}
	return &table, true, nil
}

func (s *SQLiteStateStore) InsertTable(table *Table) error {
	return s.putEntity(collectionTables, tableKey(table.ID), table)
}

func (s *SQLiteStateStore) RemoveTable(id TableID) error {
	return s.remove(collectionTables, tableKey(id))
}

func (s *SQLiteStateStore) TableIDs() ([]TableID, error) {
	keys, err := s.keys(collectionTables)
	if err != nil {
		return nil, err
	}

	ids := make([]TableID, 0, len(keys))
	for _, key := range keys {
		v, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			return nil, ErrStorage
		}
		ids = append(ids, TableID(v))
	}
	return ids, nil
}

func (s *SQLiteStateStore) GetHandSession(tableID TableID) (*HandSession, bool, error) {
	var session HandSession
	exist, err := s.getEntity(collectionHandSessions, tableKey(tableID), &session)
	if err != nil || !exist {
		return nil, exist, err
	}
	return &session, true, nil
}

func (s *SQLiteStateStore) InsertHandSession(session *HandSession) error {
	return s.putEntity(collectionHandSessions, tableKey(session.TableID), session)
}

func (s *SQLiteStateStore) RemoveHandSession(tableID TableID) error {
	return s.remove(collectionHandSessions, tableKey(tableID))
}

func (s *SQLiteStateStore) GetTournament(id TournamentID) (*Tournament, bool, error) {
	var tournament Tournament
	exist, err := s.getEntity(collectionTournaments, tournamentKey(id), &tournament)
	if err != nil || !exist {
		return nil, exist, err
	}
	return &tournament, true, nil
}

func (s *SQLiteStateStore) InsertTournament(tournament *Tournament) error {
	return s.putEntity(collectionTournaments, tournamentKey(tournament.ID), tournament)
}

func (s *SQLiteStateStore) TournamentIDs() ([]TournamentID, error) {
	keys, err := s.keys(collectionTournaments)
	if err != nil {
		return nil, err
	}

	ids := make([]TournamentID, 0, len(keys))
	for _, key := range keys {
		v, err := strconv.ParseUint(key, 10, 32)
		if err != nil {
			return nil, ErrStorage
		}
		ids = append(ids, TournamentID(v))
	}
	return ids, nil
}

func (s *SQLiteStateStore) GetTournamentTables(id TournamentID) ([]TableID, bool, error) {
	var tables []TableID
	exist, err := s.getEntity(collectionTournamentTables, tournamentKey(id), &tables)
	if err != nil || !exist {
		return nil, exist, err
	}
	return tables, true, nil
}

func (s *SQLiteStateStore) InsertTournamentTables(id TournamentID, tables []TableID) error {
	return s.putEntity(collectionTournamentTables, tournamentKey(id), tables)
}

func (s *SQLiteStateStore) GetTableTournament(tableID TableID) (TournamentID, bool, error) {
	raw, exist, err := s.get(collectionTableTournaments, tableKey(tableID))
	if err != nil || !exist {
		return 0, exist, err
	}

	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false, ErrStorage
	}
	return TournamentID(v), true, nil
}

func (s *SQLiteStateStore) InsertTableTournament(tableID TableID, tournamentID TournamentID) error {
	return s.put(collectionTableTournaments, tableKey(tableID), tournamentKey(tournamentID))
}

func (s *SQLiteStateStore) RemoveTableTournament(tableID TableID) error {
	return s.remove(collectionTableTournaments, tableKey(tableID))
}

func (s *SQLiteStateStore) GetTimeController(tableID TableID) (*TimeController, bool, error) {
	var tc TimeController
	exist, err := s.getEntity(collectionTimeControllers, tableKey(tableID), &tc)
	if err != nil || !exist {
		return nil, exist, err
	}
	return &tc, true, nil
}

func (s *SQLiteStateStore) InsertTimeController(tableID TableID, tc *TimeController) error {
	return s.putEntity(collectionTimeControllers, tableKey(tableID), tc)
}

func (s *SQLiteStateStore) RemoveTimeController(tableID TableID) error {
	return s.remove(collectionTimeControllers, tableKey(tableID))
}

func (s *SQLiteStateStore) GetPlayerName(id PlayerID) (string, bool, error) {
	return s.get(collectionPlayerNames, playerKey(id))
}

func (s *SQLiteStateStore) InsertPlayerName(id PlayerID, name string) error {
	return s.put(collectionPlayerNames, playerKey(id), name)
}

func (s *SQLiteStateStore) GetPlayerForSigner(signer string) (PlayerID, bool, error) {
	raw, exist, err := s.get(collectionSignerPlayers, signer)
	if err != nil || !exist {
		return 0, exist, err
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false, ErrStorage
	}
	return PlayerID(v), true, nil
}

func (s *SQLiteStateStore) GetSignerForPlayer(id PlayerID) (string, bool, error) {
	return s.get(collectionPlayerSigners, playerKey(id))
}

func (s *SQLiteStateStore) BindSignerPlayer(signer string, id PlayerID) error {
	if err := s.put(collectionSignerPlayers, signer, playerKey(id)); err != nil {
		return err
	}
	return s.put(collectionPlayerSigners, playerKey(id), signer)
}

func (s *SQLiteStateStore) getScalarUint(key string) (uint64, error) {
	raw, exist, err := s.get(collectionScalars, key)
	if err != nil {
		return 0, err
	}
	if !exist {
		return 0, nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, ErrStorage
	}
	return v, nil
}

func (s *SQLiteStateStore) GetHandCounter() (uint64, error) {
	return s.getScalarUint(scalarHandCounter)
}

func (s *SQLiteStateStore) SetHandCounter(v uint64) error {
	return s.put(collectionScalars, scalarHandCounter, strconv.FormatUint(v, 10))
}

func (s *SQLiteStateStore) GetBaseSeed() (uint64, error) {
	return s.getScalarUint(scalarBaseSeed)
}

func (s *SQLiteStateStore) SetBaseSeed(v uint64) error {
	return s.put(collectionScalars, scalarBaseSeed, strconv.FormatUint(v, 10))
}

func (s *SQLiteStateStore) GetOwner() (string, error) {
	raw, _, err := s.get(collectionScalars, scalarOwner)
	return raw, err
}

func (s *SQLiteStateStore) SetOwner(signer string) error {
	return s.put(collectionScalars, scalarOwner, signer)
}
