package pokerorchestrator

// TimeProfile is the per-table clock configuration.
type TimeProfile struct {
	ActionTime      int `json:"action_time"`       // seconds a player may think per decision
	TimeBankSeconds int `json:"time_bank_seconds"` // extra reserve granted once per player
}

func NewDefaultTimeProfile() TimeProfile {
	return TimeProfile{
		ActionTime:      30,
		TimeBankSeconds: 60,
	}
}

// AutoActionDecision reports what a clock tick decided. When Timeout is true
// the named player ran out of time and a fallback action must be applied.
type AutoActionDecision struct {
	Timeout  bool
	PlayerID PlayerID
}

// TimeController tracks the decision clock for one table. Time only moves
// when the owner ticks it, so clock state is replayable alongside the rest of
// the table state.
type TimeController struct {
	Profile TimeProfile `json:"profile"`

	// Banks holds each player's remaining reserve seconds.
	Banks map[PlayerID]int `json:"banks"`

	// CurrentTurn is the player on the clock, nil between decisions.
	CurrentTurn *PlayerID `json:"current_turn,omitempty"`

	// Remaining counts down while CurrentTurn is set. It starts at
	// ActionTime plus the player's bank; the bank part is consumed last.
	Remaining int `json:"remaining"`
}

func NewTimeController(profile TimeProfile) *TimeController {
	return &TimeController{
		Profile: profile,
		Banks:   make(map[PlayerID]int),
	}
}

// InitPlayers grants the configured time bank to players that have no entry
// yet. Existing banks are kept across hands.
func (tc *TimeController) InitPlayers(playerIDs []PlayerID) {
	for _, id := range playerIDs {
		if _, exist := tc.Banks[id]; !exist {
			tc.Banks[id] = tc.Profile.TimeBankSeconds
		}
	}
}

// StartPlayerTurn puts a player on the clock, replacing any previous turn.
func (tc *TimeController) StartPlayerTurn(playerID PlayerID) {
	id := playerID
	tc.CurrentTurn = &id
	tc.Remaining = tc.Profile.ActionTime + tc.Banks[playerID]
}

// ClearCurrentTurn stops the clock and refunds unused bank time. The player
// keeps whatever part of the reserve the decision did not burn.
func (tc *TimeController) ClearCurrentTurn() {
	if tc.CurrentTurn == nil {
		return
	}

	playerID := *tc.CurrentTurn
	bankLeft := tc.Remaining - tc.Profile.ActionTime
	if bankLeft < 0 {
		bankLeft = 0
	}
	if bankLeft > tc.Banks[playerID] {
		bankLeft = tc.Banks[playerID]
	}
	tc.Banks[playerID] = bankLeft

	tc.CurrentTurn = nil
	tc.Remaining = 0
}

// OnTimePassed advances the clock by elapsed seconds. A timeout fires at most
// once: the turn is cleared before the decision is returned so a later tick
// can never report the same player again.
func (tc *TimeController) OnTimePassed(secs int) AutoActionDecision {
	if tc.CurrentTurn == nil || secs <= 0 {
		return AutoActionDecision{}
	}

	tc.Remaining -= secs
	if tc.Remaining > 0 {
		return AutoActionDecision{}
	}

	playerID := *tc.CurrentTurn
	tc.Banks[playerID] = 0
	tc.CurrentTurn = nil
	tc.Remaining = 0
	return AutoActionDecision{Timeout: true, PlayerID: playerID}
}
