package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	// Skips: the game is left out, nothing is mutated.
	ErrDegenerateGame    = errors.New("game does not have exactly two distinct teams")
	ErrUnresolvableScore = errors.New("game score cannot be resolved")

	// Per-game failure: the game is rolled back and the run continues.
	ErrGameFailed = errors.New("game processing failed")

	// Fatal: the sequence is rejected before the first game.
	ErrUnorderedGames = errors.New("games are not in strictly increasing id order")
	ErrEmptyGameID    = errors.New("game has an empty id")
)
