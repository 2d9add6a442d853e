package table

import (
	game_constants "Vega/constants/game"
	redis_models "Vega/models/redis"
	"encoding/json"
	"log"
	"time"
)

// SeatResult is one seat's line in the round summary persisted on the
// table registry row after settlement.
type SeatResult struct {
	Username  string                  `json:"username"`
	Wager     float64                 `json:"wager"`
	HandValue int                     `json:"hand_value"`
	Status    redis_models.SeatStatus `json:"status"`
	Payout    float64                 `json:"payout"`
}

// RoundSummary describes a settled round
type RoundSummary struct {
	DealerValue int          `json:"dealer_value"`
	Seats       []SeatResult `json:"seats"`
	SettledAt   time.Time    `json:"settled_at"`
}

// payoutFor computes one seat's payout against the dealer's final
// value, per the house rules:
//   - natural blackjack beats a non-21 dealer at 3:2 (2.5x the wager)
//   - dealer also holding 21 against a natural is a push (1x back)
//   - bust forfeits the wager
//   - stand wins 2x when the dealer busts or is outscored, pushes at
//     equal value, loses otherwise
//
// Seats that sat the round out (status waiting) get nothing.
func payoutFor(seat *redis_models.Seat, dealerValue int) float64 {
	switch seat.Status {
	case redis_models.SeatBlackjack:
		if dealerValue != 21 {
			return seat.Wager * game_constants.BlackjackPayout
		}
		return seat.Wager * game_constants.PushPayout
	case redis_models.SeatBust:
		return 0
	case redis_models.SeatStand:
		if dealerValue > 21 || seat.HandValue > dealerValue {
			return seat.Wager * game_constants.WinPayout
		}
		if seat.HandValue == dealerValue {
			return seat.Wager * game_constants.PushPayout
		}
		return 0
	}
	return 0
}

// computePayouts returns the per-user credits and the round summary
// for the given pre-settlement state.
func computePayouts(ts *redis_models.TableState, now time.Time) (map[string]float64, *RoundSummary) {
	payouts := make(map[string]float64)
	summary := &RoundSummary{
		DealerValue: ts.DealerValue,
		SettledAt:   now,
	}

	for i := range ts.Seats {
		seat := &ts.Seats[i]
		payout := payoutFor(seat, ts.DealerValue)
		if payout > 0 {
			payouts[seat.Username] += payout
		}
		summary.Seats = append(summary.Seats, SeatResult{
			Username:  seat.Username,
			Wager:     seat.Wager,
			HandValue: seat.HandValue,
			Status:    seat.Status,
			Payout:    payout,
		})
	}

	return payouts, summary
}

// settleIfUndone settles the round. The dealer -> finished transition
// is claimed with a conditional write first: whichever actor wins the
// write performs the balance credits, a loser observes the claim and
// does nothing, so a round can never be paid twice. The credits for
// the whole round are applied in one ledger transaction.
func (e *Engine) settleIfUndone(now time.Time) {
	var payouts map[string]float64
	var summary *RoundSummary

	updated := e.apply("SETTLE", func(ts *redis_models.TableState) error {
		if ts.Phase != redis_models.PhaseDealer {
			return errNoTransition
		}
		payouts, summary = computePayouts(ts, now)
		ts.Phase = redis_models.PhaseFinished
		ts.RoundTimer = game_constants.FinishedSeconds
		ts.LastUpdate = now
		return nil
	})
	if updated == nil {
		return
	}

	log.Printf("[SETTLE] Settling table %s against dealer value %d (%d payouts)",
		e.TableID, summary.DealerValue, len(payouts))

	if err := e.ledger.CreditMany(payouts); err != nil {
		log.Printf("[SETTLE-ERROR] Error crediting payouts for table %s: %v", e.TableID, err)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		log.Printf("[SETTLE-ERROR] Error marshaling round summary: %v", err)
		return
	}
	if err := e.recorder.RecordRoundSummary(e.TableID, data); err != nil {
		log.Printf("[SETTLE-ERROR] Error recording round summary for table %s: %v", e.TableID, err)
	}
}
