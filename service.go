package pokerorchestrator

// QueryService serves read-only projections of stored state. It shares the
// store with the orchestrator but never writes.
type QueryService struct {
	store StateStore
}

func NewQueryService(store StateStore) *QueryService {
	return &QueryService{store: store}
}

func (qs *QueryService) nameResolver() NameResolver {
	return func(id PlayerID) string {
		name, _, err := qs.store.GetPlayerName(id)
		if err != nil {
			return ""
		}
		return name
	}
}

// Summary is the top-level landing view.
type Summary struct {
	Owner           string         `json:"owner"`
	TableCount      int            `json:"table_count"`
	TournamentCount int            `json:"tournament_count"`
	HandsDealt      uint64         `json:"hands_dealt"`
	Tables          []TableID      `json:"tables"`
	Tournaments     []TournamentID `json:"tournaments"`
}

func (qs *QueryService) Summary() (*Summary, error) {
	owner, err := qs.store.GetOwner()
	if err != nil {
		return nil, err
	}
	tables, err := qs.store.TableIDs()
	if err != nil {
		return nil, err
	}
	tournaments, err := qs.store.TournamentIDs()
	if err != nil {
		return nil, err
	}
	hands, err := qs.store.GetHandCounter()
	if err != nil {
		return nil, err
	}

	return &Summary{
		Owner:           owner,
		TableCount:      len(tables),
		TournamentCount: len(tournaments),
		HandsDealt:      hands,
		Tables:          tables,
		Tournaments:     tournaments,
	}, nil
}

func (qs *QueryService) Table(id TableID) (*TableView, error) {
	table, exist, err := qs.store.GetTable(id)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, ErrTableNotFound
	}

	session, _, err := qs.store.GetHandSession(id)
	if err != nil {
		return nil, err
	}

	return ProjectTableView(table, session, qs.nameResolver()), nil
}

func (qs *QueryService) Tables() ([]*TableView, error) {
	ids, err := qs.store.TableIDs()
	if err != nil {
		return nil, err
	}

	views := make([]*TableView, 0, len(ids))
	for _, id := range ids {
		view, err := qs.Table(id)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (qs *QueryService) Tournament(id TournamentID) (*TournamentView, error) {
	tournament, exist, err := qs.store.GetTournament(id)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, ErrTournamentNotFound
	}

	tables, _, err := qs.store.GetTournamentTables(id)
	if err != nil {
		return nil, err
	}

	return ProjectTournamentView(tournament, tables, qs.nameResolver()), nil
}

func (qs *QueryService) Tournaments() ([]*TournamentView, error) {
	ids, err := qs.store.TournamentIDs()
	if err != nil {
		return nil, err
	}

	views := make([]*TournamentView, 0, len(ids))
	for _, id := range ids {
		view, err := qs.Tournament(id)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// TournamentTables resolves a tournament's table index to full table views.
func (qs *QueryService) TournamentTables(id TournamentID) ([]*TableView, error) {
	if _, exist, err := qs.store.GetTournament(id); err != nil {
		return nil, err
	} else if !exist {
		return nil, ErrTournamentNotFound
	}

	tableIDs, _, err := qs.store.GetTournamentTables(id)
	if err != nil {
		return nil, err
	}

	views := make([]*TableView, 0, len(tableIDs))
	for _, tableID := range tableIDs {
		view, err := qs.Table(tableID)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}
