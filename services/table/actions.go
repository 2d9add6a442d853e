package table

import (
	game_constants "Vega/constants/game"
	redis_models "Vega/models/redis"
	"Vega/services/blackjack"
	"log"
	"time"
)

// Player actions. Each action validates at read time for a fast
// rejection, then revalidates inside the conditional write: a stale
// client acting after the turn (or phase) has moved on is rejected at
// write time, never applied.

// JoinTable seats a participant with the given wager. The wager is
// debited immediately and frozen for the round; if the seat insertion
// then loses the write race (table filled up, round started), the
// debit is refunded and the rejection returned.
func JoinTable(store Store, ledger Ledger, tableId string, username string, wager float64) (*redis_models.TableState, error) {
	state, err := store.GetTableState(tableId)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrTableNotFound
	}

	// Read-time validation for a cheap rejection before touching money
	if state.Phase != redis_models.PhaseWaiting {
		return nil, ErrWrongPhase
	}
	if len(state.Seats) >= game_constants.MaxSeats {
		return nil, ErrTableFull
	}
	if state.FindSeat(username) != -1 {
		return nil, ErrAlreadySeated
	}
	if wager < game_constants.MinimumWager {
		return nil, ErrWagerTooSmall
	}

	// Debit first: a seat only ever exists with its wager already paid
	if err := ledger.Debit(username, wager); err != nil {
		return nil, err
	}

	updated, err := store.UpdateTableState(tableId, func(ts *redis_models.TableState) error {
		if ts.Phase != redis_models.PhaseWaiting {
			return ErrWrongPhase
		}
		if len(ts.Seats) >= game_constants.MaxSeats {
			return ErrTableFull
		}
		if ts.FindSeat(username) != -1 {
			return ErrAlreadySeated
		}
		ts.Seats = append(ts.Seats, redis_models.Seat{
			Username: username,
			Wager:    wager,
			Hand:     []blackjack.Card{},
			Status:   redis_models.SeatWaiting,
		})
		ts.LastUpdate = time.Now()
		return nil
	})
	if err != nil {
		// The seat was never taken, give the wager back
		if refundErr := ledger.Credit(username, wager); refundErr != nil {
			log.Printf("[JOIN-ERROR] Failed to refund %s after rejected join: %v", username, refundErr)
		}
		return nil, err
	}

	publish(store, updated)
	log.Printf("[JOIN] %s joined table %s with wager %.2f (%d/%d seats)",
		username, tableId, wager, len(updated.Seats), game_constants.MaxSeats)
	return updated, nil
}

// LeaveTable removes a seat during the waiting phase and refunds the
// wager. Once betting opens the seat is committed to the round.
func LeaveTable(store Store, ledger Ledger, tableId string, username string) (*redis_models.TableState, error) {
	var refund float64

	updated, err := store.UpdateTableState(tableId, func(ts *redis_models.TableState) error {
		if ts.Phase != redis_models.PhaseWaiting {
			return ErrWrongPhase
		}
		idx := ts.FindSeat(username)
		if idx == -1 {
			return ErrNotSeated
		}
		refund = ts.Seats[idx].Wager
		ts.Seats = append(ts.Seats[:idx], ts.Seats[idx+1:]...)
		ts.LastUpdate = time.Now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if refundErr := ledger.Credit(username, refund); refundErr != nil {
		log.Printf("[LEAVE-ERROR] Failed to refund %s after leaving table %s: %v",
			username, tableId, refundErr)
	}

	publish(store, updated)
	log.Printf("[LEAVE] %s left table %s, refunded %.2f", username, tableId, refund)
	return updated, nil
}

// Hit draws one card for the caller's seat. Valid only while the
// table is in the playing phase and the seat holds the active turn;
// both are re-checked at write time.
func Hit(store Store, tableId string, username string) (*redis_models.TableState, error) {
	updated, err := store.UpdateTableState(tableId, func(ts *redis_models.TableState) error {
		if err := validateTurn(ts, username); err != nil {
			return err
		}
		_, err := applyHit(ts, ts.ActiveSeat, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	publish(store, updated)
	return updated, nil
}

// Stand ends the caller's turn and advances to the next seat (or the
// dealer, when no seat remains to act).
func Stand(store Store, tableId string, username string) (*redis_models.TableState, error) {
	updated, err := store.UpdateTableState(tableId, func(ts *redis_models.TableState) error {
		if err := validateTurn(ts, username); err != nil {
			return err
		}
		ts.Seats[ts.ActiveSeat].Status = redis_models.SeatStand
		advanceTurn(ts, time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(store, updated)
	return updated, nil
}

// validateTurn checks that the table is mid-round and the caller owns
// the active seat.
func validateTurn(ts *redis_models.TableState, username string) error {
	if ts.Phase != redis_models.PhasePlaying {
		return ErrWrongPhase
	}
	if ts.FindSeat(username) == -1 {
		return ErrNotSeated
	}
	if ts.ActiveSeat < 0 || ts.ActiveSeat >= len(ts.Seats) {
		return ErrNotYourTurn
	}
	seat := &ts.Seats[ts.ActiveSeat]
	if seat.Username != username || seat.Status != redis_models.SeatPlaying {
		return ErrNotYourTurn
	}
	return nil
}

func publish(store Store, state *redis_models.TableState) {
	if err := store.PublishTableUpdate(state.Id, state.Version); err != nil {
		log.Printf("[PUBLISH-ERROR] Error publishing update for table %s: %v", state.Id, err)
	}
}
