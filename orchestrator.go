package pokerorchestrator

// Orchestrator is the command surface. Every mutation enters through Execute
// as a signed command; reads go through QueryService instead.
type Orchestrator interface {
	// Bootstrap persists the owner account and the base deck seed. Call
	// once before the first command.
	Bootstrap() error

	// Execute routes one signed command. Failures come back as an error
	// response, never as a Go error, and a rejected command leaves the
	// store exactly as it was.
	Execute(signer string, cmd Command) CommandResponse
}

type orchestrator struct {
	store   StateStore
	engine  HandEngine
	opts    *Options
	onError func(commandType CommandType, err error)
}

type OrchestratorOpt func(*orchestrator)

// WithHandEngine overrides the rules engine, mostly useful for tests that
// script hand outcomes.
func WithHandEngine(engine HandEngine) OrchestratorOpt {
	return func(o *orchestrator) {
		o.engine = engine
	}
}

func WithErrorCallback(fn func(commandType CommandType, err error)) OrchestratorOpt {
	return func(o *orchestrator) {
		o.onError = fn
	}
}

func NewOrchestrator(store StateStore, opts *Options, optFns ...OrchestratorOpt) Orchestrator {
	o := &orchestrator{
		store:   store,
		engine:  NewHandEngine(NewNativeGameBackend()),
		opts:    opts,
		onError: func(CommandType, error) {},
	}

	for _, fn := range optFns {
		fn(o)
	}

	return o
}

func (o *orchestrator) Bootstrap() error {
	if err := o.store.SetOwner(o.opts.OwnerSigner); err != nil {
		return err
	}
	return o.store.SetBaseSeed(o.opts.BaseSeed)
}

func (o *orchestrator) Execute(signer string, cmd Command) CommandResponse {
	resp, err := o.dispatch(signer, cmd)
	if err != nil {
		o.onError(cmd.Type, err)
		return newErrorResponse(err)
	}
	return resp
}

func (o *orchestrator) dispatch(signer string, cmd Command) (CommandResponse, error) {
	switch cmd.Type {
	case CommandType_CreateTable:
		if cmd.CreateTable == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleCreateTable(signer, cmd.CreateTable)
	case CommandType_SeatPlayer:
		if cmd.SeatPlayer == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleSeatPlayer(signer, cmd.SeatPlayer)
	case CommandType_UnseatPlayer:
		if cmd.UnseatPlayer == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleUnseatPlayer(signer, cmd.UnseatPlayer)
	case CommandType_AdjustStack:
		if cmd.AdjustStack == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleAdjustStack(signer, cmd.AdjustStack)
	case CommandType_StartHand:
		if cmd.StartHand == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleStartHand(signer, cmd.StartHand)
	case CommandType_PlayerAction:
		if cmd.PlayerAction == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handlePlayerAction(signer, cmd.PlayerAction)
	case CommandType_TickTable:
		if cmd.TickTable == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleTickTable(signer, cmd.TickTable)
	case CommandType_CreateTournament:
		if cmd.CreateTournament == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleCreateTournament(signer, cmd.CreateTournament)
	case CommandType_RegisterPlayer:
		if cmd.RegisterPlayer == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleRegisterPlayer(signer, cmd.RegisterPlayer)
	case CommandType_UnregisterPlayer:
		if cmd.UnregisterPlayer == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleUnregisterPlayer(signer, cmd.UnregisterPlayer)
	case CommandType_StartTournament:
		if cmd.StartTournament == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleStartTournament(signer, cmd.StartTournament)
	case CommandType_AdvanceLevel:
		if cmd.AdvanceLevel == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleAdvanceLevel(signer, cmd.AdvanceLevel)
	case CommandType_CloseTournament:
		if cmd.CloseTournament == nil {
			return CommandResponse{}, ErrUnknownCommand
		}
		return o.handleCloseTournament(signer, cmd.CloseTournament)
	}
	return CommandResponse{}, ErrUnknownCommand
}

func (o *orchestrator) nameResolver() NameResolver {
	return func(id PlayerID) string {
		name, _, err := o.store.GetPlayerName(id)
		if err != nil {
			return ""
		}
		return name
	}
}

func (o *orchestrator) loadTable(id TableID) (*Table, error) {
	table, exist, err := o.store.GetTable(id)
	if err != nil {
		return nil, err
	}
	if !exist {
		return nil, ErrTableNotFound
	}
	return table, nil
}

func (o *orchestrator) tableStateResponse(table *Table) (CommandResponse, error) {
	session, _, err := o.store.GetHandSession(table.ID)
	if err != nil {
		return CommandResponse{}, err
	}
	return newTableStateResponse(ProjectTableView(table, session, o.nameResolver())), nil
}

// handSeed mixes the base seed with the hand and table ids so every hand of
// every table shuffles a distinct, reproducible deck.
func (o *orchestrator) handSeed(handID uint64, tableID TableID) (uint64, error) {
	base, err := o.store.GetBaseSeed()
	if err != nil {
		return 0, err
	}
	return base ^ handID ^ uint64(tableID), nil
}

func (o *orchestrator) handleCreateTable(signer string, cmd *CreateTableCommand) (CommandResponse, error) {
	if err := o.ensureAdmin(signer); err != nil {
		return CommandResponse{}, err
	}

	if _, exist, err := o.store.GetTable(cmd.TableID); err != nil {
		return CommandResponse{}, err
	} else if exist {
		return CommandResponse{}, ErrTableAlreadyExists
	}

	if cmd.MaxSeats < 2 {
		return CommandResponse{}, ErrInvalidSeat
	}

	anteType := cmd.AnteType
	if anteType == "" || cmd.Ante == 0 {
		anteType = AnteType_None
	}

	table := NewTable(cmd.TableID, cmd.Name, TableConfig{
		MaxSeats:  cmd.MaxSeats,
		TableType: TableType_Cash,
		Stakes:    NewTableStakes(cmd.SmallBlind, cmd.BigBlind, anteType, cmd.Ante),
	})

	if err := o.store.InsertTable(table); err != nil {
		return CommandResponse{}, err
	}
	if err := o.store.InsertTimeController(table.ID, NewTimeController(o.opts.TimeProfile())); err != nil {
		return CommandResponse{}, err
	}

	return newTableCreatedResponse(ProjectTableView(table, nil, o.nameResolver())), nil
}

func (o *orchestrator) handleSeatPlayer(signer string, cmd *SeatPlayerCommand) (CommandResponse, error) {
	if err := o.ensurePlayerForSigner(signer, cmd.PlayerID); err != nil {
		return CommandResponse{}, err
	}

	table, err := o.loadTable(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}

	if err := table.SeatPlayer(cmd.SeatIndex, NewPlayerAtTable(cmd.PlayerID, cmd.InitialStack)); err != nil {
		return CommandResponse{}, err
	}

	if cmd.DisplayName != "" {
		if err := o.store.InsertPlayerName(cmd.PlayerID, cmd.DisplayName); err != nil {
			return CommandResponse{}, err
		}
	}

	if err := o.store.InsertTable(table); err != nil {
		return CommandResponse{}, err
	}

	return o.tableStateResponse(table)
}

func (o *orchestrator) handleUnseatPlayer(signer string, cmd *UnseatPlayerCommand) (CommandResponse, error) {
	table, err := o.loadTable(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}

	if err := table.UnseatSeat(cmd.SeatIndex); err != nil {
		return CommandResponse{}, err
	}

	if err := o.store.InsertTable(table); err != nil {
		return CommandResponse{}, err
	}

	return o.tableStateResponse(table)
}

func (o *orchestrator) handleAdjustStack(signer string, cmd *AdjustStackCommand) (CommandResponse, error) {
	if err := o.ensureAdmin(signer); err != nil {
		return CommandResponse{}, err
	}

	table, err := o.loadTable(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}

	if err := table.AdjustStack(cmd.SeatIndex, cmd.Delta); err != nil {
		return CommandResponse{}, err
	}

	if err := o.store.InsertTable(table); err != nil {
		return CommandResponse{}, err
	}

	return o.tableStateResponse(table)
}

func (o *orchestrator) handleStartHand(signer string, cmd *StartHandCommand) (CommandResponse, error) {
	table, err := o.loadTable(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}
	if table.HandInProgress {
		return CommandResponse{}, ErrHandAlreadyInProgress
	}

	counter, err := o.store.GetHandCounter()
	if err != nil {
		return CommandResponse{}, err
	}
	handID := counter + 1
	seed, err := o.handSeed(handID, table.ID)
	if err != nil {
		return CommandResponse{}, err
	}

	session, err := o.engine.StartHand(table, seed, handID)
	if err != nil {
		return CommandResponse{}, err
	}

	// The counter only moves once the deal succeeded; a rejected start
	// writes nothing.
	if err := o.store.SetHandCounter(handID); err != nil {
		return CommandResponse{}, err
	}

	if session.Status == HandStatus_Finished {
		return o.finishHand(table, session)
	}

	if err := o.store.InsertHandSession(session); err != nil {
		return CommandResponse{}, err
	}
	if err := o.store.InsertTable(table); err != nil {
		return CommandResponse{}, err
	}
	o.syncClock(table, session)

	return newTableStateResponse(ProjectTableView(table, session, o.nameResolver())), nil
}

func (o *orchestrator) handlePlayerAction(signer string, cmd *PlayerActionCommand) (CommandResponse, error) {
	if err := o.ensurePlayerForSigner(signer, cmd.Action.PlayerID); err != nil {
		return CommandResponse{}, err
	}

	table, err := o.loadTable(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}

	session, exist, err := o.store.GetHandSession(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}
	if !exist || !table.HandInProgress {
		return CommandResponse{}, ErrNoActiveHand
	}

	return o.applyHandAction(table, session, cmd.Action)
}

// applyHandAction runs one action through the engine and persists the result.
// Shared by player commands and clock timeouts.
func (o *orchestrator) applyHandAction(table *Table, session *HandSession, action PlayerAction) (CommandResponse, error) {
	status, err := o.engine.ApplyAction(table, session, action)
	if err != nil {
		return CommandResponse{}, err
	}

	if status == HandStatus_Finished {
		return o.finishHand(table, session)
	}

	if err := o.store.InsertHandSession(session); err != nil {
		return CommandResponse{}, err
	}
	if err := o.store.InsertTable(table); err != nil {
		return CommandResponse{}, err
	}
	o.syncClock(table, session)

	return newTableStateResponse(ProjectTableView(table, session, o.nameResolver())), nil
}

// finishHand settles a completed hand: winners are computed against deal-time
// stacks, the suspended session is dropped and tournament bookkeeping runs if
// the table belongs to one.
func (o *orchestrator) finishHand(table *Table, session *HandSession) (CommandResponse, error) {
	summary := &HandSummary{
		HandID:  session.HandID,
		GameID:  session.GameID,
		TableID: table.ID,
		Winners: HandWinners(table, session),
		History: session.History,
	}

	if err := o.store.RemoveHandSession(table.ID); err != nil {
		return CommandResponse{}, err
	}
	if err := o.store.InsertTable(table); err != nil {
		return CommandResponse{}, err
	}

	// Clock bookkeeping must never fail a settled hand.
	if tc, exist, err := o.store.GetTimeController(table.ID); err == nil && exist {
		tc.ClearCurrentTurn()
		_ = o.store.InsertTimeController(table.ID, tc)
	}

	if tournamentID, exist, err := o.store.GetTableTournament(table.ID); err != nil {
		return CommandResponse{}, err
	} else if exist {
		if err := o.handleTournamentAfterHand(tournamentID, table); err != nil {
			return CommandResponse{}, err
		}
	}

	return newHandFinishedResponse(ProjectTableView(table, session, o.nameResolver()), summary), nil
}

// syncClock points the table clock at the seat the engine is waiting on.
// Clock writes are best effort; gameplay outcomes never depend on them.
func (o *orchestrator) syncClock(table *Table, session *HandSession) {
	tc, exist, err := o.store.GetTimeController(table.ID)
	if err != nil {
		return
	}
	if !exist {
		tc = NewTimeController(o.opts.TimeProfile())
	}

	seated := make([]PlayerID, 0)
	for _, occupant := range table.SeatedPlayers() {
		seated = append(seated, occupant.PlayerID)
	}
	tc.InitPlayers(seated)

	if session.CurrentActorSeat != nil {
		seat := *session.CurrentActorSeat
		if table.IsValidSeat(seat) && table.Seats[seat] != nil {
			tc.StartPlayerTurn(table.Seats[seat].PlayerID)
		}
	} else {
		tc.ClearCurrentTurn()
	}

	_ = o.store.InsertTimeController(table.ID, tc)
}

func (o *orchestrator) handleTickTable(signer string, cmd *TickTableCommand) (CommandResponse, error) {
	table, err := o.loadTable(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}

	tc, exist, err := o.store.GetTimeController(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}
	if !exist {
		return o.tableStateResponse(table)
	}

	decision := tc.OnTimePassed(cmd.DeltaSecs)
	if err := o.store.InsertTimeController(cmd.TableID, tc); err != nil {
		return CommandResponse{}, err
	}
	if !decision.Timeout {
		return o.tableStateResponse(table)
	}

	session, exist, err := o.store.GetHandSession(cmd.TableID)
	if err != nil {
		return CommandResponse{}, err
	}
	if !exist || session.CurrentActorSeat == nil {
		return o.tableStateResponse(table)
	}

	seat := *session.CurrentActorSeat
	if !table.IsValidSeat(seat) || table.Seats[seat] == nil || table.Seats[seat].PlayerID != decision.PlayerID {
		return o.tableStateResponse(table)
	}

	action := DefaultActionFor(session)
	action.Seat = seat
	action.PlayerID = decision.PlayerID
	return o.applyHandAction(table, session, action)
}
