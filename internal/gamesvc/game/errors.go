package game

import "errors"

// Recoverable rule violations. Every rejection leaves game state
// untouched and is reported only to the offending caller.
var (
	ErrGameAlreadyStarted  = errors.New("game already started")
	ErrGameAlreadyFinished = errors.New("game already finished")
	ErrNotEnoughPlayers    = errors.New("need at least 2 players to start")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCardNotInHand       = errors.New("card not in hand")
	ErrIllegalMove         = errors.New("illegal move")
	ErrDeckExhausted       = errors.New("deck exhausted")
)
