package pokerorchestrator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// commandRecorder is an Orchestrator stub that captures every submitted
// command so runner tests can observe what the runner drives.
type commandRecorder struct {
	commands chan Command
}

func newCommandRecorder() *commandRecorder {
	return &commandRecorder{commands: make(chan Command, 16)}
}

func (r *commandRecorder) Bootstrap() error {
	return nil
}

func (r *commandRecorder) Execute(signer string, cmd Command) CommandResponse {
	r.commands <- cmd
	return CommandResponse{Type: ResponseType_TableState}
}

func waitForCommand(t *testing.T, recorder *commandRecorder, timeout time.Duration) Command {
	t.Helper()

	select {
	case cmd := <-recorder.commands:
		return cmd
	case <-time.After(timeout):
		t.Fatal("no command submitted in time")
		return Command{}
	}
}

func TestTableRunner_SubmitsTicks(t *testing.T) {
	recorder := newCommandRecorder()

	responses := make(chan CommandResponse, 16)
	runner := NewTableRunner(recorder, testAdmin, 42, &TableRunnerOptions{
		TickInterval:   50 * time.Millisecond,
		ConfirmTimeout: time.Second,
	})
	runner.OnResponse(func(resp CommandResponse) {
		responses <- resp
	})

	assert.NoError(t, runner.Start())
	defer runner.Stop()

	// the loop reschedules itself, so ticks keep coming
	for i := 0; i < 2; i++ {
		cmd := waitForCommand(t, recorder, 2*time.Second)
		assert.Equal(t, CommandType_TickTable, cmd.Type)
		assert.NotNil(t, cmd.TickTable)
		assert.Equal(t, TableID(42), cmd.TickTable.TableID)
	}

	select {
	case resp := <-responses:
		assert.Equal(t, ResponseType_TableState, resp.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("response callback never fired")
	}
}

func TestTableRunner_StartTwiceIsNoop(t *testing.T) {
	recorder := newCommandRecorder()
	runner := NewTableRunner(recorder, testAdmin, 42, nil)

	assert.NoError(t, runner.Start())
	assert.NoError(t, runner.Start())
	runner.Stop()
}

func TestTableRunner_SeatConfirmationStartsHand(t *testing.T) {
	recorder := newCommandRecorder()
	runner := NewTableRunner(recorder, testAdmin, 42, nil)

	runner.BeginSeatConfirmation([]PlayerID{1, 2}, 10*time.Second)
	runner.Confirm(1)
	runner.Confirm(2)

	cmd := waitForCommand(t, recorder, 2*time.Second)
	assert.Equal(t, CommandType_StartHand, cmd.Type)
	assert.NotNil(t, cmd.StartHand)
	assert.Equal(t, TableID(42), cmd.StartHand.TableID)
}

func TestTableRunner_SeatConfirmationTimeoutAutoReadies(t *testing.T) {
	recorder := newCommandRecorder()
	runner := NewTableRunner(recorder, testAdmin, 42, nil)

	// only one of two players answers; the timeout readies the other
	runner.BeginSeatConfirmation([]PlayerID{1, 2}, time.Second)
	runner.Confirm(1)

	cmd := waitForCommand(t, recorder, 3*time.Second)
	assert.Equal(t, CommandType_StartHand, cmd.Type)
}
