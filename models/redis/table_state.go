package redis

import (
	"Vega/services/blackjack"
	"time"
)

// GamePhase is the table's current stage in the round lifecycle.
// Transitions follow the strict cycle
// waiting -> betting -> playing -> dealer -> finished -> waiting.
type GamePhase string

const (
	PhaseWaiting  GamePhase = "waiting"
	PhaseBetting  GamePhase = "betting"
	PhasePlaying  GamePhase = "playing"
	PhaseDealer   GamePhase = "dealer"
	PhaseFinished GamePhase = "finished"
)

// SeatStatus is the closed set of states a seat can be in. Modelled as
// a typed constant so illegal states are unrepresentable.
type SeatStatus string

const (
	SeatWaiting   SeatStatus = "waiting"
	SeatPlaying   SeatStatus = "playing"
	SeatStand     SeatStatus = "stand"
	SeatBust      SeatStatus = "bust"
	SeatBlackjack SeatStatus = "blackjack"
)

// Seat is a joined participant's slot at the table for the current or
// next round. Created on join, cleared on round reset. The wager is
// frozen at join time (already debited from the player's balance).
type Seat struct {
	Username  string           `json:"username"`
	Wager     float64          `json:"wager"`
	Hand      []blackjack.Card `json:"hand"`
	HandValue int              `json:"hand_value"`
	Status    SeatStatus       `json:"status"`
}

// TableState is the shared blackjack aggregate, one JSON document per
// table stored under "table:{id}". Every mutation goes through the
// CAS update in services/redis and bumps Version.
type TableState struct {
	Id          string           `json:"id"`
	Phase       GamePhase        `json:"phase"`
	Seats       []Seat           `json:"seats"` // join order, max 4, never reordered
	DealerHand  []blackjack.Card `json:"dealer_hand"`
	DealerValue int              `json:"dealer_value"` // meaningful once phase is dealer/finished
	Deck        []blackjack.Card `json:"deck"`
	ActiveSeat  int              `json:"active_seat"` // whose turn it is during playing
	RoundTimer  int              `json:"round_timer"` // remaining whole seconds of the phase deadline
	LastUpdate  time.Time        `json:"last_update"` // last meaningful phase mutation
	Version     int64            `json:"version"`     // optimistic-lock counter, bumped on every write
}

// NewTableState returns the initial document for a not-yet-existing
// table.
func NewTableState(tableId string) *TableState {
	return &TableState{
		Id:         tableId,
		Phase:      PhaseWaiting,
		Seats:      []Seat{},
		DealerHand: []blackjack.Card{},
		Deck:       blackjack.NewShuffledDeck(),
		ActiveSeat: 0,
		RoundTimer: 30,
		LastUpdate: time.Now(),
	}
}

// FindSeat returns the index of the seat occupied by username, or -1
func (ts *TableState) FindSeat(username string) int {
	for i := range ts.Seats {
		if ts.Seats[i].Username == username {
			return i
		}
	}
	return -1
}
