package table

import (
	game_constants "Vega/constants/game"
	redis_models "Vega/models/redis"
	"Vega/services/blackjack"
	redis_services "Vega/services/redis"
	"errors"
	"log"
	"sync"
	"time"
)

// Engine is the sole timer owner for one table. Exactly one engine
// goroutine ticks a table once per second and performs every
// time-driven phase transition; connected clients only read snapshots
// and send actions. Every transition still goes through the store's
// conditional update, so a second engine (another server instance, a
// restart overlap) degrades to harmless no-ops instead of
// double-dealing a round.
type Engine struct {
	TableID  string
	store    Store
	ledger   Ledger
	recorder RoundRecorder

	// newDeck is swappable so tests can rig the shuffle
	newDeck func() []blackjack.Card

	stop     chan struct{}
	stopOnce sync.Once
}

func NewEngine(tableID string, store Store, ledger Ledger, recorder RoundRecorder) *Engine {
	return &Engine{
		TableID:  tableID,
		store:    store,
		ledger:   ledger,
		recorder: recorder,
		newDeck:  blackjack.NewShuffledDeck,
		stop:     make(chan struct{}),
	}
}

// Run ticks the table once per second until Stop is called
func (e *Engine) Run() {
	log.Printf("[ENGINE] Starting engine for table %s", e.TableID)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			log.Printf("[ENGINE] Stopping engine for table %s", e.TableID)
			return
		case now := <-ticker.C:
			e.Tick(now)
		}
	}
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stop) })
}

// Tick reads the current table state and performs whatever phase
// transition is due. Safe to call concurrently with player actions
// and with other engines: all writes are conditional.
func (e *Engine) Tick(now time.Time) {
	state, err := e.store.GetTableState(e.TableID)
	if err != nil {
		log.Printf("[TICK-ERROR] Error reading table %s: %v", e.TableID, err)
		return
	}
	if state == nil {
		return
	}

	switch state.Phase {
	case redis_models.PhaseWaiting:
		if len(state.Seats) > 0 && now.Sub(state.LastUpdate) >= game_constants.WaitingDelay {
			e.openBettingIfUndone(now)
		}
	case redis_models.PhaseBetting:
		if state.RoundTimer > 0 {
			e.decrementTimer(redis_models.PhaseBetting)
		} else {
			e.startRoundIfUndone(now)
		}
	case redis_models.PhasePlaying:
		if state.RoundTimer > 0 {
			e.decrementTimer(redis_models.PhasePlaying)
		} else {
			e.autoStandIfUndone(now)
		}
	case redis_models.PhaseDealer:
		e.dealerStepIfUndone(state, now)
	case redis_models.PhaseFinished:
		if state.RoundTimer > 0 {
			e.decrementTimer(redis_models.PhaseFinished)
		} else {
			e.resetTableIfUndone(now)
		}
	}
}

// apply runs a conditional update and broadcasts the new version.
// A lost race or an already-performed transition is not an error.
func (e *Engine) apply(tag string, mutate func(*redis_models.TableState) error) *redis_models.TableState {
	updated, err := e.store.UpdateTableState(e.TableID, mutate)
	if err != nil {
		if errors.Is(err, errNoTransition) || errors.Is(err, redis_services.ErrVersionConflict) {
			log.Printf("[%s-SKIP] Transition already performed for table %s", tag, e.TableID)
		} else {
			log.Printf("[%s-ERROR] Error updating table %s: %v", tag, e.TableID, err)
		}
		return nil
	}

	if err := e.store.PublishTableUpdate(e.TableID, updated.Version); err != nil {
		log.Printf("[%s-ERROR] Error publishing update for table %s: %v", tag, e.TableID, err)
	}
	return updated
}

// decrementTimer counts the current phase's deadline down by one
// second. The phase is revalidated at write time so a stale tick
// cannot touch the countdown of a newer phase.
func (e *Engine) decrementTimer(phase redis_models.GamePhase) {
	e.apply("TIMER", func(ts *redis_models.TableState) error {
		if ts.Phase != phase || ts.RoundTimer <= 0 {
			return errNoTransition
		}
		ts.RoundTimer--
		return nil
	})
}

// openBettingIfUndone moves waiting -> betting once the 5 second
// grace period after the first join has elapsed.
func (e *Engine) openBettingIfUndone(now time.Time) {
	updated := e.apply("BETTING", func(ts *redis_models.TableState) error {
		if ts.Phase != redis_models.PhaseWaiting || len(ts.Seats) == 0 {
			return errNoTransition
		}
		if now.Sub(ts.LastUpdate) < game_constants.WaitingDelay {
			return errNoTransition
		}
		ts.Phase = redis_models.PhaseBetting
		ts.RoundTimer = game_constants.BettingSeconds
		ts.LastUpdate = now
		return nil
	})
	if updated != nil {
		log.Printf("[BETTING] Betting phase opened for table %s with %d seats",
			e.TableID, len(updated.Seats))
	}
}

// startRoundIfUndone performs the deal: fresh shuffled deck, two
// cards per wagered seat, two dealer cards (the hole card is only
// concealed in the presentation layer), first turn assigned.
func (e *Engine) startRoundIfUndone(now time.Time) {
	updated := e.apply("DEAL", func(ts *redis_models.TableState) error {
		if ts.Phase != redis_models.PhaseBetting || ts.RoundTimer > 0 {
			return errNoTransition
		}

		deck := e.newDeck()

		for i := range ts.Seats {
			seat := &ts.Seats[i]
			if seat.Wager < game_constants.MinimumWager {
				// Defensive normalization: cannot happen through the
				// join path, which enforces the minimum. The seat sits
				// the round out with an empty hand.
				seat.Wager = game_constants.MinimumWager
				seat.Hand = []blackjack.Card{}
				seat.HandValue = 0
				seat.Status = redis_models.SeatWaiting
				continue
			}

			hand := make([]blackjack.Card, 0, 2)
			for j := 0; j < 2; j++ {
				card, rest, err := blackjack.DealOne(deck)
				if err != nil {
					return err
				}
				deck = rest
				hand = append(hand, card)
			}
			seat.Hand = hand
			seat.HandValue = blackjack.HandValue(hand)
			if seat.HandValue == 21 {
				seat.Status = redis_models.SeatBlackjack
			} else {
				seat.Status = redis_models.SeatPlaying
			}
		}

		dealerHand := make([]blackjack.Card, 0, 2)
		for j := 0; j < 2; j++ {
			card, rest, err := blackjack.DealOne(deck)
			if err != nil {
				return err
			}
			deck = rest
			dealerHand = append(dealerHand, card)
		}
		ts.DealerHand = dealerHand
		ts.DealerValue = 0 // revealed when the dealer phase starts
		ts.Deck = deck

		ts.Phase = redis_models.PhasePlaying
		ts.RoundTimer = game_constants.TurnSeconds
		ts.LastUpdate = now

		// Hand the first turn to the first seat that can act; if every
		// seat has a natural (or sat out) the dealer plays immediately
		ts.ActiveSeat = -1
		advanceTurn(ts, now)
		return nil
	})
	if updated != nil {
		log.Printf("[DEAL] Round dealt for table %s (phase=%s, active_seat=%d)",
			e.TableID, updated.Phase, updated.ActiveSeat)
	}
}

// autoStandIfUndone enforces the per-turn deadline: the active seat
// is stood automatically, exactly as if the player had chosen to.
func (e *Engine) autoStandIfUndone(now time.Time) {
	updated := e.apply("AUTO-STAND", func(ts *redis_models.TableState) error {
		if ts.Phase != redis_models.PhasePlaying || ts.RoundTimer > 0 {
			return errNoTransition
		}
		if ts.ActiveSeat < 0 || ts.ActiveSeat >= len(ts.Seats) {
			return errNoTransition
		}
		seat := &ts.Seats[ts.ActiveSeat]
		if seat.Status != redis_models.SeatPlaying {
			return errNoTransition
		}
		seat.Status = redis_models.SeatStand
		advanceTurn(ts, now)
		return nil
	})
	if updated != nil {
		log.Printf("[AUTO-STAND] Turn deadline elapsed for table %s, stood seat and advanced (phase=%s)",
			e.TableID, updated.Phase)
	}
}

// dealerStepIfUndone runs one step of the dealer's draw-to-17 loop.
// One card per tick gives observers the 1 second draw pacing, and
// every draw is persisted immediately so all clients converge on the
// same sequence. Once the dealer stands (or the deck runs dry, which
// counts as standing), settlement follows after a short pause.
func (e *Engine) dealerStepIfUndone(state *redis_models.TableState, now time.Time) {
	if state.DealerValue < game_constants.DealerStandValue && len(state.Deck) > 0 {
		e.apply("DEALER-DRAW", func(ts *redis_models.TableState) error {
			if ts.Phase != redis_models.PhaseDealer || ts.DealerValue >= game_constants.DealerStandValue {
				return errNoTransition
			}
			card, rest, err := blackjack.DealOne(ts.Deck)
			if err != nil {
				// Deck exhausted: dealer stands at current value
				return errNoTransition
			}
			ts.Deck = rest
			ts.DealerHand = append(ts.DealerHand, card)
			ts.DealerValue = blackjack.HandValue(ts.DealerHand)
			ts.LastUpdate = now
			return nil
		})
		return
	}

	if now.Sub(state.LastUpdate) >= game_constants.SettlePause {
		e.settleIfUndone(now)
	}
}

// resetTableIfUndone clears the table in place once the result
// display interval has elapsed, ready for the next round.
func (e *Engine) resetTableIfUndone(now time.Time) {
	updated := e.apply("RESET", func(ts *redis_models.TableState) error {
		if ts.Phase != redis_models.PhaseFinished || ts.RoundTimer > 0 {
			return errNoTransition
		}
		ts.Phase = redis_models.PhaseWaiting
		ts.Seats = []redis_models.Seat{}
		ts.DealerHand = []blackjack.Card{}
		ts.DealerValue = 0
		ts.Deck = e.newDeck()
		ts.ActiveSeat = 0
		ts.RoundTimer = game_constants.TurnSeconds
		ts.LastUpdate = now
		return nil
	})
	if updated != nil {
		log.Printf("[RESET] Table %s reset to waiting phase", e.TableID)
	}
}
