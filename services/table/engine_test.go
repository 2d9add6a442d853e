package table

import (
	game_constants "Vega/constants/game"
	redis_models "Vega/models/redis"
	"Vega/services/blackjack"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func card(rank blackjack.Rank, suit blackjack.Suit) blackjack.Card {
	return blackjack.Card{Suit: suit, Rank: rank}
}

func TestWaitingOpensBettingAfterDelay(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	state := seatedState("T1", wageredSeat("alice", 10))
	state.LastUpdate = testNow.Add(-game_constants.WaitingDelay - time.Second)
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhaseBetting, updated.Phase)
	assert.Equal(t, game_constants.BettingSeconds, updated.RoundTimer)
	assert.NotEmpty(t, store.published)
}

func TestWaitingHoldsUntilDelayElapses(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	state := seatedState("T1", wageredSeat("alice", 10))
	state.LastUpdate = testNow.Add(-2 * time.Second)
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhaseWaiting, updated.Phase)
}

func TestWaitingIgnoresEmptyTable(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	state := redis_models.NewTableState("T1")
	state.LastUpdate = testNow.Add(-time.Hour)
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhaseWaiting, updated.Phase)
	assert.Empty(t, store.published)
}

func TestBettingTimerCountsDown(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	state := seatedState("T1", wageredSeat("alice", 10))
	state.Phase = redis_models.PhaseBetting
	state.RoundTimer = 3
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhaseBetting, updated.Phase)
	assert.Equal(t, 2, updated.RoundTimer)
}

func TestDealAssignsFirstActionableTurn(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	// alice is dealt a natural, so the first turn must go to bob
	engine.newDeck = func() []blackjack.Card {
		return riggedDeck(
			card("A", blackjack.Spades), card("K", blackjack.Spades), // alice: 21
			card("10", blackjack.Hearts), card("7", blackjack.Hearts), // bob: 17
			card("9", blackjack.Diamonds), card("5", blackjack.Diamonds), // dealer: 14
		)
	}

	state := seatedState("T1", wageredSeat("alice", 10), wageredSeat("bob", 20))
	state.Phase = redis_models.PhaseBetting
	state.RoundTimer = 0
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhasePlaying, updated.Phase)
	assert.Equal(t, game_constants.TurnSeconds, updated.RoundTimer)

	require.Len(t, updated.Seats, 2)
	assert.Equal(t, redis_models.SeatBlackjack, updated.Seats[0].Status)
	assert.Equal(t, 21, updated.Seats[0].HandValue)
	assert.Equal(t, redis_models.SeatPlaying, updated.Seats[1].Status)
	assert.Equal(t, 17, updated.Seats[1].HandValue)
	assert.Equal(t, 1, updated.ActiveSeat)

	// The hole card stays concealed until the dealer phase
	assert.Equal(t, 0, updated.DealerValue)
	require.Len(t, updated.DealerHand, 2)

	// Every card of the deck is accounted for exactly once
	cards := allCards(updated)
	assert.Len(t, cards, blackjack.DeckSize)
	seen := make(map[blackjack.Card]bool)
	for _, c := range cards {
		assert.False(t, seen[c], "card %s dealt twice", c)
		seen[c] = true
	}
}

func TestDealAllNaturalsHandsControlToDealer(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	engine.newDeck = func() []blackjack.Card {
		return riggedDeck(
			card("A", blackjack.Spades), card("K", blackjack.Spades), // alice: 21
			card("9", blackjack.Diamonds), card("5", blackjack.Diamonds), // dealer
		)
	}

	state := seatedState("T1", wageredSeat("alice", 10))
	state.Phase = redis_models.PhaseBetting
	state.RoundTimer = 0
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhaseDealer, updated.Phase)
	assert.Equal(t, 14, updated.DealerValue)
}

func TestDealHappensExactlyOnce(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	engine.newDeck = func() []blackjack.Card {
		return riggedDeck(
			card("10", blackjack.Hearts), card("7", blackjack.Hearts),
			card("9", blackjack.Diamonds), card("5", blackjack.Diamonds),
		)
	}

	state := seatedState("T1", wageredSeat("alice", 10))
	state.Phase = redis_models.PhaseBetting
	state.RoundTimer = 0
	store.put(state)

	engine.Tick(testNow)

	first, err := store.GetTableState("T1")
	require.NoError(t, err)
	require.Len(t, first.Seats[0].Hand, 2)

	// A duplicate transition attempt (second engine, stale tick) is a no-op
	engine.startRoundIfUndone(testNow)

	second, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, first.Version, second.Version)
	assert.Len(t, second.Seats[0].Hand, 2)
}

func TestTurnDeadlineAutoStands(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	state := seatedState("T1", wageredSeat("alice", 10), wageredSeat("bob", 10))
	state.Phase = redis_models.PhasePlaying
	state.RoundTimer = 0
	state.ActiveSeat = 0
	state.Seats[0].Status = redis_models.SeatPlaying
	state.Seats[0].Hand = []blackjack.Card{card("10", blackjack.Spades), card("6", blackjack.Hearts)}
	state.Seats[0].HandValue = 16
	state.Seats[1].Status = redis_models.SeatPlaying
	state.Seats[1].Hand = []blackjack.Card{card("10", blackjack.Clubs), card("8", blackjack.Hearts)}
	state.Seats[1].HandValue = 18
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.SeatStand, updated.Seats[0].Status)
	assert.Equal(t, 1, updated.ActiveSeat)
	assert.Equal(t, game_constants.TurnSeconds, updated.RoundTimer)
	assert.Equal(t, redis_models.PhasePlaying, updated.Phase)
}

func TestDealerDrawsOneCardPerTickUntilSeventeen(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	state := seatedState("T1", wageredSeat("alice", 10))
	state.Phase = redis_models.PhaseDealer
	state.Seats[0].Status = redis_models.SeatStand
	state.Seats[0].HandValue = 18
	state.DealerHand = []blackjack.Card{card("10", blackjack.Spades), card("2", blackjack.Hearts)}
	state.DealerValue = 12
	state.Deck = []blackjack.Card{card("5", blackjack.Clubs), card("4", blackjack.Clubs)} // deals 4 then 5
	state.LastUpdate = testNow
	store.put(state)

	engine.Tick(testNow.Add(time.Second))
	afterOne, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, 16, afterOne.DealerValue)
	require.Len(t, afterOne.DealerHand, 3)

	engine.Tick(testNow.Add(2 * time.Second))
	afterTwo, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, 21, afterTwo.DealerValue)
	require.Len(t, afterTwo.DealerHand, 4)
	assert.Equal(t, redis_models.PhaseDealer, afterTwo.Phase)

	// Standing at 21: no further draw, settlement waits for the pause
	engine.Tick(testNow.Add(3 * time.Second))
	afterThree, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Len(t, afterThree.DealerHand, 4)
	assert.Equal(t, redis_models.PhaseDealer, afterThree.Phase)

	engine.Tick(testNow.Add(5 * time.Second))
	settled, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhaseFinished, settled.Phase)
	assert.Equal(t, game_constants.FinishedSeconds, settled.RoundTimer)
}

func TestSettlementPaysEverySeatExactlyOnce(t *testing.T) {
	engine, store, lgr, rec := newTestEngine("T1")

	state := seatedState("T1",
		wageredSeat("alice", 10), // natural vs 17: 25
		wageredSeat("bob", 10),   // 20 vs 17: 20
		wageredSeat("carol", 10), // 17 vs 17: push, 10
		wageredSeat("dave", 10),  // bust: nothing
	)
	state.Phase = redis_models.PhaseDealer
	state.Seats[0].Status = redis_models.SeatBlackjack
	state.Seats[0].HandValue = 21
	state.Seats[1].Status = redis_models.SeatStand
	state.Seats[1].HandValue = 20
	state.Seats[2].Status = redis_models.SeatStand
	state.Seats[2].HandValue = 17
	state.Seats[3].Status = redis_models.SeatBust
	state.Seats[3].HandValue = 23
	state.DealerHand = []blackjack.Card{card("10", blackjack.Spades), card("7", blackjack.Hearts)}
	state.DealerValue = 17
	state.LastUpdate = testNow.Add(-game_constants.SettlePause)
	store.put(state)

	engine.Tick(testNow)

	balance, _ := lgr.GetBalance("alice")
	assert.Equal(t, 25.0, balance)
	balance, _ = lgr.GetBalance("bob")
	assert.Equal(t, 20.0, balance)
	balance, _ = lgr.GetBalance("carol")
	assert.Equal(t, 10.0, balance)
	balance, _ = lgr.GetBalance("dave")
	assert.Equal(t, 0.0, balance)
	require.Len(t, lgr.credits, 1)

	// The summary row reflects the settled round
	require.Len(t, rec.summaries, 1)
	var summary RoundSummary
	require.NoError(t, json.Unmarshal(rec.summaries[0], &summary))
	assert.Equal(t, 17, summary.DealerValue)
	require.Len(t, summary.Seats, 4)
	assert.Equal(t, 25.0, summary.Seats[0].Payout)
	assert.Equal(t, 0.0, summary.Seats[3].Payout)

	// A straggler attempting the same settlement finds the claim taken
	engine.settleIfUndone(testNow)
	assert.Len(t, lgr.credits, 1)
	assert.Len(t, rec.summaries, 1)
}

func TestFinishedResetsTableForNextRound(t *testing.T) {
	engine, store, _, _ := newTestEngine("T1")

	state := seatedState("T1", wageredSeat("alice", 10))
	state.Phase = redis_models.PhaseFinished
	state.RoundTimer = 0
	state.Seats[0].Status = redis_models.SeatStand
	state.DealerHand = []blackjack.Card{card("10", blackjack.Spades), card("7", blackjack.Hearts)}
	state.DealerValue = 17
	store.put(state)

	engine.Tick(testNow)

	updated, err := store.GetTableState("T1")
	require.NoError(t, err)
	assert.Equal(t, redis_models.PhaseWaiting, updated.Phase)
	assert.Empty(t, updated.Seats)
	assert.Empty(t, updated.DealerHand)
	assert.Equal(t, 0, updated.DealerValue)
	assert.Len(t, updated.Deck, blackjack.DeckSize)
}
