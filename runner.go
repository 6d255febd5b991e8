package pokerorchestrator

import (
	"sync"
	"time"

	"github.com/weedbox/syncsaga"
	"github.com/weedbox/timebank"
)

// TableRunner drives one table in wall-clock time. The orchestrator core only
// moves when commands arrive, so something has to feed it ticks and deal
// starts; the runner does that for deployments without an external scheduler.
type TableRunner struct {
	orch    Orchestrator
	signer  string
	tableID TableID

	interval   time.Duration
	tb         *timebank.TimeBank
	rg         *syncsaga.ReadyGroup
	onResponse func(CommandResponse)

	mu      sync.Mutex
	running bool
}

type TableRunnerOptions struct {
	// TickInterval is how often the runner advances the table clock.
	TickInterval time.Duration

	// ConfirmTimeout bounds how long seated players get to confirm the
	// next deal before the runner deals anyway.
	ConfirmTimeout time.Duration
}

func NewTableRunnerOptions() *TableRunnerOptions {
	return &TableRunnerOptions{
		TickInterval:   time.Second,
		ConfirmTimeout: 10 * time.Second,
	}
}

func NewTableRunner(orch Orchestrator, signer string, tableID TableID, opts *TableRunnerOptions) *TableRunner {
	if opts == nil {
		opts = NewTableRunnerOptions()
	}

	return &TableRunner{
		orch:       orch,
		signer:     signer,
		tableID:    tableID,
		interval:   opts.TickInterval,
		tb:         timebank.NewTimeBank(),
		onResponse: func(CommandResponse) {},
	}
}

// OnResponse registers a callback fired for every command the runner submits.
func (tr *TableRunner) OnResponse(fn func(CommandResponse)) {
	tr.onResponse = fn
}

// Start begins the tick loop.
func (tr *TableRunner) Start() error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.running {
		return nil
	}
	tr.running = true
	return tr.scheduleTick()
}

// Stop halts the tick loop. In-flight commands finish normally.
func (tr *TableRunner) Stop() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.running = false
	tr.tb.Cancel()
}

func (tr *TableRunner) scheduleTick() error {
	return tr.tb.NewTask(tr.interval, func(isCancelled bool) {
		if isCancelled {
			return
		}

		resp := tr.orch.Execute(tr.signer, Command{
			Type: CommandType_TickTable,
			TickTable: &TickTableCommand{
				TableID:   tr.tableID,
				DeltaSecs: int(tr.interval / time.Second),
			},
		})
		tr.onResponse(resp)

		tr.mu.Lock()
		defer tr.mu.Unlock()
		if tr.running {
			_ = tr.scheduleTick()
		}
	})
}

// BeginSeatConfirmation asks the given players to confirm the next deal. Once
// everyone confirms, or the timeout force-readies the stragglers, a start
// command is submitted. Confirm feeds individual answers in.
func (tr *TableRunner) BeginSeatConfirmation(playerIDs []PlayerID, timeout time.Duration) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.rg != nil {
		tr.rg.Stop()
	}

	tr.rg = syncsaga.NewReadyGroup(
		syncsaga.WithTimeout(int(timeout/time.Second), func(rg *syncsaga.ReadyGroup) {
			// Absent players do not hold up the deal.
			states := rg.GetParticipantStates()
			for id, ready := range states {
				if !ready {
					rg.Ready(id)
				}
			}
		}),
		syncsaga.WithCompletedCallback(func(rg *syncsaga.ReadyGroup) {
			resp := tr.orch.Execute(tr.signer, Command{
				Type:      CommandType_StartHand,
				StartHand: &StartHandCommand{TableID: tr.tableID},
			})
			tr.onResponse(resp)
		}),
	)

	for _, id := range playerIDs {
		tr.rg.Add(int64(id), false)
	}
	tr.rg.Start()
}

// Confirm marks one player as ready for the pending deal.
func (tr *TableRunner) Confirm(playerID PlayerID) {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.rg == nil {
		return
	}
	tr.rg.Ready(int64(playerID))
}
