package pokerorchestrator

import (
	"encoding/json"

	"github.com/weedbox/pokerface"
)

// GameBackend round-trips immutable game state snapshots through the rules
// engine. Every call resumes the engine from the given state, applies one
// operation and returns the resulting state without touching the input.
type GameBackend interface {
	CreateGame(opts *pokerface.GameOptions) (*pokerface.GameState, error)
	ReadyForAll(gs *pokerface.GameState) (*pokerface.GameState, error)
	PayAnte(gs *pokerface.GameState) (*pokerface.GameState, error)
	PayBlinds(gs *pokerface.GameState) (*pokerface.GameState, error)
	Next(gs *pokerface.GameState) (*pokerface.GameState, error)
	Fold(gs *pokerface.GameState) (*pokerface.GameState, error)
	Check(gs *pokerface.GameState) (*pokerface.GameState, error)
	Call(gs *pokerface.GameState) (*pokerface.GameState, error)
	Allin(gs *pokerface.GameState) (*pokerface.GameState, error)
	Bet(gs *pokerface.GameState, chips int64) (*pokerface.GameState, error)
	Raise(gs *pokerface.GameState, chipLevel int64) (*pokerface.GameState, error)
}

type nativeGameBackend struct {
	engine pokerface.PokerFace
}

func NewNativeGameBackend() GameBackend {
	return &nativeGameBackend{
		engine: pokerface.NewPokerFace(),
	}
}

func cloneGameState(gs *pokerface.GameState) *pokerface.GameState {
	// Clone so the caller's snapshot is never mutated by the engine.
	data, err := json.Marshal(gs)
	if err != nil {
		return nil
	}

	var state pokerface.GameState
	err = json.Unmarshal(data, &state)
	if err != nil {
		return nil
	}

	return &state
}

func (ngb *nativeGameBackend) getState(g pokerface.Game) *pokerface.GameState {
	return cloneGameState(g.GetState())
}

func (ngb *nativeGameBackend) CreateGame(opts *pokerface.GameOptions) (*pokerface.GameState, error) {
	g := ngb.engine.NewGame(opts)
	err := g.Start()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) ReadyForAll(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.ReadyForAll()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) PayAnte(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.PayAnte()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) PayBlinds(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.PayBlinds()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) Next(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.Next()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) Fold(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.Fold()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) Check(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.Check()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) Call(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.Call()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) Allin(gs *pokerface.GameState) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.Allin()
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) Bet(gs *pokerface.GameState, chips int64) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.Bet(chips)
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}

func (ngb *nativeGameBackend) Raise(gs *pokerface.GameState, chipLevel int64) (*pokerface.GameState, error) {
	g := ngb.engine.NewGameFromState(cloneGameState(gs))
	err := g.Raise(chipLevel)
	if err != nil {
		return nil, err
	}

	return ngb.getState(g), nil
}
