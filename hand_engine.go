package pokerorchestrator

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/thoas/go-funk"
	"github.com/weedbox/pokerface"
)

// maxAdvanceSteps bounds the automatic event loop so a misbehaving engine
// state can never spin forever.
const maxAdvanceSteps = 32

// HandEngine drives one hand of play against the rules engine. It is
// stateless: callers pass the table and the suspended session in, and both are
// mutated to reflect the engine's resulting state.
type HandEngine interface {
	// StartHand deals a new hand for the table's alive players and advances
	// the engine through its setup phases until either a player decision is
	// pending or the hand is over. The returned session status is
	// HandStatus_Ongoing or HandStatus_Finished.
	StartHand(table *Table, seed uint64, handID uint64) (*HandSession, error)

	// ApplyAction applies one player action to the suspended hand, then
	// auto-advances the engine the same way StartHand does. It returns the
	// resulting hand status.
	ApplyAction(table *Table, session *HandSession, action PlayerAction) (string, error)
}

type handEngine struct {
	backend GameBackend
}

func NewHandEngine(backend GameBackend) HandEngine {
	return &handEngine{
		backend: backend,
	}
}

// shuffleDeckWithSeed reorders the deck with a Fisher-Yates pass driven by the
// given seed. The same seed always yields the same order.
func shuffleDeckWithSeed(deck []string, seed uint64) {
	r := rand.New(rand.NewSource(int64(seed)))
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}

// nextDealerSeat picks the dealer button for the coming hand: the first alive
// seat strictly after the previous button, scanning clockwise with wrap.
func nextDealerSeat(table *Table) int {
	seatCount := len(table.Seats)
	start := table.DealerButton
	if start == UnsetValue {
		start = seatCount - 1
	}

	for offset := 1; offset <= seatCount; offset++ {
		seat := (start + offset) % seatCount
		p := table.Seats[seat]
		if p != nil && p.Stack > 0 && p.Status != PlayerStatus_SittingOut {
			return seat
		}
	}
	return UnsetValue
}

// handSeatOrder lists participating seats clockwise starting from the dealer.
func handSeatOrder(table *Table, dealerSeat int) []int {
	seatCount := len(table.Seats)
	order := make([]int, 0)
	for offset := 0; offset < seatCount; offset++ {
		seat := (dealerSeat + offset) % seatCount
		p := table.Seats[seat]
		if p != nil && p.Stack > 0 && p.Status != PlayerStatus_SittingOut {
			order = append(order, seat)
		}
	}
	return order
}

// positionsForOrder assigns poker positions by table order. Heads-up the
// dealer posts the small blind; a lone player posts everything.
func positionsForOrder(n int) [][]string {
	positions := make([][]string, n)
	if n == 1 {
		positions[0] = []string{Position_Dealer, Position_SB, Position_BB}
		return positions
	}
	if n == 2 {
		positions[0] = []string{Position_Dealer, Position_SB}
		positions[1] = []string{Position_BB}
		return positions
	}

	for idx := 0; idx < n; idx++ {
		switch idx {
		case 0:
			positions[idx] = []string{Position_Dealer}
		case 1:
			positions[idx] = []string{Position_SB}
		case 2:
			positions[idx] = []string{Position_BB}
		default:
			positions[idx] = []string{Position_UG}
		}
	}
	return positions
}

func (he *handEngine) StartHand(table *Table, seed uint64, handID uint64) (*HandSession, error) {
	if table.HandInProgress {
		return nil, ErrHandAlreadyInProgress
	}

	dealerSeat := nextDealerSeat(table)
	if dealerSeat == UnsetValue {
		return nil, ErrNotEnoughPlayers
	}

	order := handSeatOrder(table, dealerSeat)

	opts := pokerface.NewStardardGameOptions()
	deck := pokerface.NewStandardDeckCards()
	shuffleDeckWithSeed(deck, seed)
	opts.Deck = deck

	stakes := table.Config.Stakes
	if stakes.AnteType != AnteType_None {
		opts.Ante = stakes.Ante
	}
	opts.Blind = pokerface.BlindSetting{
		Dealer: 0,
		SB:     stakes.SmallBlind,
		BB:     stakes.BigBlind,
	}

	positions := positionsForOrder(len(order))
	initialStacks := make([]int64, len(order))
	playerSettings := make([]*pokerface.PlayerSetting, 0, len(order))
	for idx, seat := range order {
		p := table.Seats[seat]
		initialStacks[idx] = p.Stack
		playerSettings = append(playerSettings, &pokerface.PlayerSetting{
			Bankroll:  p.Stack,
			Positions: positions[idx],
		})
	}
	opts.Players = playerSettings

	gs, err := he.backend.CreateGame(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngine, err)
	}

	gameID := gs.GameID
	if gameID == "" {
		gameID = uuid.New().String()
	}

	session := &HandSession{
		TableID:             table.ID,
		HandID:              handID,
		GameID:              gameID,
		Status:              HandStatus_Ongoing,
		State:               gs,
		SeatByGamePlayerIdx: order,
		InitialStacks:       initialStacks,
		History:             make([]HandLogEntry, 0),
	}

	table.HandInProgress = true
	table.DealerButton = dealerSeat

	if err := he.advance(table, session); err != nil {
		table.HandInProgress = false
		return nil, err
	}

	return session, nil
}

func (he *handEngine) ApplyAction(table *Table, session *HandSession, action PlayerAction) (string, error) {
	if session == nil || session.Status != HandStatus_Ongoing {
		return "", ErrNoActiveHand
	}

	gameIdx := session.GameIdxForSeat(action.Seat)
	if gameIdx == UnsetValue {
		return "", ErrInvalidSeat
	}

	occupant := table.Seats[action.Seat]
	if occupant == nil {
		return "", ErrNoPlayerAtSeat
	}
	if occupant.PlayerID != action.PlayerID {
		return "", ErrPlayerIDMismatch
	}

	gs := session.State
	if gs.Status.CurrentPlayer != gameIdx {
		return "", ErrEngine
	}

	round := gs.Status.Round
	var next *pokerface.GameState
	var err error
	switch action.Kind {
	case ActionKind_Fold:
		next, err = he.backend.Fold(gs)
	case ActionKind_Check:
		next, err = he.backend.Check(gs)
	case ActionKind_Call:
		next, err = he.backend.Call(gs)
	case ActionKind_AllIn:
		next, err = he.backend.Allin(gs)
	case ActionKind_Bet:
		next, err = he.backend.Bet(gs, action.Amount)
	case ActionKind_Raise:
		next, err = he.backend.Raise(gs, action.Amount)
	default:
		return "", ErrEngine
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEngine, err)
	}

	session.State = next
	session.Record(action.Seat, action.Kind, action.Amount, round)

	if err := he.advance(table, session); err != nil {
		return "", err
	}
	return session.Status, nil
}

// advance runs the engine through the phases that need no individual player
// decision, then projects the resulting state onto the table.
func (he *handEngine) advance(table *Table, session *HandSession) error {
	gs := session.State

	for step := 0; step < maxAdvanceSteps; step++ {
		event, ok := pokerface.GameEventBySymbol[gs.Status.CurrentEvent]
		if !ok {
			return ErrEngine
		}

		var next *pokerface.GameState
		var err error
		switch event {
		case pokerface.GameEvent_ReadyRequested:
			next, err = he.backend.ReadyForAll(gs)
		case pokerface.GameEvent_AnteRequested:
			next, err = he.backend.PayAnte(gs)
		case pokerface.GameEvent_BlindsRequested:
			next, err = he.backend.PayBlinds(gs)
		case pokerface.GameEvent_RoundClosed:
			next, err = he.backend.Next(gs)
		case pokerface.GameEvent_GameClosed:
			session.State = gs
			he.settle(table, session)
			return nil
		default:
			// A player decision is pending.
			session.State = gs
			he.project(table, session)
			return nil
		}

		if err != nil {
			return fmt.Errorf("%w: %v", ErrEngine, err)
		}
		gs = next
	}

	return ErrEngine
}

// project mirrors the live engine state onto the table's public fields.
func (he *handEngine) project(table *Table, session *HandSession) {
	gs := session.State

	table.Street = gs.Status.Round
	if table.Street == "" {
		table.Street = Street_Preflop
	}

	var pot int64
	for _, p := range gs.Players {
		pot += p.Pot + p.Wager

		seat := session.SeatForGameIdx(p.Idx)
		if seat == UnsetValue || table.Seats[seat] == nil {
			continue
		}
		occupant := table.Seats[seat]
		occupant.CurrentBet = p.Wager
		occupant.Stack = p.StackSize
		switch {
		case p.Fold:
			occupant.Status = PlayerStatus_Folded
		case p.StackSize == 0:
			occupant.Status = PlayerStatus_AllIn
		default:
			occupant.Status = PlayerStatus_Active
		}
	}
	table.TotalPot = pot

	if gs.Status.CurrentPlayer >= 0 {
		if seat := session.SeatForGameIdx(gs.Status.CurrentPlayer); seat != UnsetValue {
			session.CurrentActorSeat = &seat
			return
		}
	}
	session.CurrentActorSeat = nil
}

// settle writes the final results back into seat stacks and closes the hand.
func (he *handEngine) settle(table *Table, session *HandSession) {
	gs := session.State

	if gs.Result != nil {
		for _, rp := range gs.Result.Players {
			seat := session.SeatForGameIdx(rp.Idx)
			if seat == UnsetValue || table.Seats[seat] == nil {
				continue
			}
			table.Seats[seat].Stack = rp.Final
		}
	}

	session.Status = HandStatus_Finished
	session.CurrentActorSeat = nil
	table.HandInProgress = false
	table.ResetAfterHand()
}

// HandWinners lists the players whose stacks grew over the hand, diffed
// against the stacks recorded at deal time. Call after settlement.
func HandWinners(table *Table, session *HandSession) []HandWinner {
	winners := make([]HandWinner, 0)
	for idx, seat := range session.SeatByGamePlayerIdx {
		if seat == UnsetValue || !table.IsValidSeat(seat) || table.Seats[seat] == nil {
			continue
		}
		delta := table.Seats[seat].Stack - session.InitialStacks[idx]
		if delta > 0 {
			winners = append(winners, HandWinner{
				PlayerID: table.Seats[seat].PlayerID,
				Seat:     seat,
				Amount:   delta,
			})
		}
	}
	return winners
}

// DefaultActionFor picks the timeout fallback for the pending seat: check when
// the engine allows it, fold otherwise.
func DefaultActionFor(session *HandSession) PlayerAction {
	kind := ActionKind_Fold
	seat := UnsetValue
	if session.CurrentActorSeat != nil {
		seat = *session.CurrentActorSeat
	}

	if gs := session.State; gs != nil && gs.Status.CurrentPlayer >= 0 {
		if p := gs.GetPlayer(gs.Status.CurrentPlayer); p != nil {
			if funk.Contains(p.AllowedActions, ActionKind_Check) {
				kind = ActionKind_Check
			}
		}
	}

	return PlayerAction{Seat: seat, Kind: kind}
}
