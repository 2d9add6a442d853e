package table

import (
	game_constants "Vega/constants/game"
	redis_models "Vega/models/redis"
	"Vega/services/blackjack"
	"time"
)

// advanceTurn scans the seats after the active one for the next seat
// that is still due to act. Seats in waiting/blackjack/bust/stand are
// never selected. When no seat remains, control passes to the dealer.
func advanceTurn(ts *redis_models.TableState, now time.Time) {
	for i := ts.ActiveSeat + 1; i < len(ts.Seats); i++ {
		if ts.Seats[i].Status == redis_models.SeatPlaying {
			ts.ActiveSeat = i
			ts.RoundTimer = game_constants.TurnSeconds
			ts.LastUpdate = now
			return
		}
	}
	enterDealerPhase(ts, now)
}

// enterDealerPhase reveals the dealer's hand value and hands the table
// to the dealer draw loop (driven by the engine tick).
func enterDealerPhase(ts *redis_models.TableState, now time.Time) {
	ts.Phase = redis_models.PhaseDealer
	ts.DealerValue = blackjack.HandValue(ts.DealerHand)
	ts.RoundTimer = 0
	ts.LastUpdate = now
}

// applyHit draws one card into the seat's hand and resolves the new
// status: bust above 21, automatic stand on exactly 21. Returns
// whether the seat's turn ended.
func applyHit(ts *redis_models.TableState, seatIndex int, now time.Time) (bool, error) {
	card, rest, err := blackjack.DealOne(ts.Deck)
	if err != nil {
		// Cannot happen in a 4-seat round (52 cards is ample), so a
		// player draw from an empty deck is surfaced, not papered over
		return false, err
	}
	ts.Deck = rest

	seat := &ts.Seats[seatIndex]
	seat.Hand = append(seat.Hand, card)
	seat.HandValue = blackjack.HandValue(seat.Hand)

	switch {
	case seat.HandValue > 21:
		seat.Status = redis_models.SeatBust
	case seat.HandValue == 21:
		seat.Status = redis_models.SeatStand
	default:
		return false, nil
	}

	advanceTurn(ts, now)
	return true, nil
}
