package table

import (
	redis_models "Vega/models/redis"

	"github.com/gin-gonic/gin"
)

// Snapshot builds the read-only projection of a table state that is
// sent to clients. The remaining deck is never exposed (it would leak
// upcoming cards) and the dealer's hole card is replaced by a face
// down marker until the dealer phase reveals it.
func Snapshot(ts *redis_models.TableState) gin.H {
	concealHole := ts.Phase == redis_models.PhaseBetting || ts.Phase == redis_models.PhasePlaying

	dealerHand := make([]gin.H, 0, len(ts.DealerHand))
	for i, card := range ts.DealerHand {
		if concealHole && i == 1 {
			dealerHand = append(dealerHand, gin.H{"hidden": true})
			continue
		}
		dealerHand = append(dealerHand, gin.H{
			"rank": card.Rank,
			"suit": card.Suit,
		})
	}

	seats := make([]gin.H, 0, len(ts.Seats))
	for i := range ts.Seats {
		seat := &ts.Seats[i]
		hand := make([]gin.H, 0, len(seat.Hand))
		for _, card := range seat.Hand {
			hand = append(hand, gin.H{
				"rank": card.Rank,
				"suit": card.Suit,
			})
		}
		seats = append(seats, gin.H{
			"username":   seat.Username,
			"wager":      seat.Wager,
			"hand":       hand,
			"hand_value": seat.HandValue,
			"status":     seat.Status,
		})
	}

	snapshot := gin.H{
		"table_id":    ts.Id,
		"phase":       ts.Phase,
		"seats":       seats,
		"dealer_hand": dealerHand,
		"active_seat": ts.ActiveSeat,
		"round_timer": ts.RoundTimer,
		"version":     ts.Version,
	}

	// The dealer's value stays hidden while the hole card is face down
	if !concealHole {
		snapshot["dealer_value"] = ts.DealerValue
	}

	return snapshot
}
