package table

import (
	redis_models "Vega/models/redis"
	"Vega/services/blackjack"
	"Vega/services/ledger"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// memStore is an in-memory Store with the same conditional-update
// semantics as the Redis implementation.
type memStore struct {
	mu        sync.Mutex
	states    map[string]*redis_models.TableState
	published []int64
}

func newMemStore() *memStore {
	return &memStore{states: make(map[string]*redis_models.TableState)}
}

func cloneState(ts *redis_models.TableState) *redis_models.TableState {
	data, _ := json.Marshal(ts)
	var copied redis_models.TableState
	_ = json.Unmarshal(data, &copied)
	return &copied
}

func (s *memStore) GetTableState(tableId string) (*redis_models.TableState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[tableId]
	if !ok {
		return nil, nil
	}
	return cloneState(state), nil
}

func (s *memStore) CreateTableStateIfAbsent(state *redis_models.TableState) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[state.Id]; ok {
		return false, nil
	}
	s.states[state.Id] = cloneState(state)
	return true, nil
}

func (s *memStore) UpdateTableState(tableId string, mutate func(*redis_models.TableState) error) (*redis_models.TableState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[tableId]
	if !ok {
		return nil, fmt.Errorf("table %s does not exist", tableId)
	}
	working := cloneState(state)
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.Version++
	s.states[tableId] = working
	return cloneState(working), nil
}

func (s *memStore) PublishTableUpdate(tableId string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, version)
	return nil
}

// put stores a state directly, bypassing the CAS (test setup only)
func (s *memStore) put(ts *redis_models.TableState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[ts.Id] = cloneState(ts)
}

// fakeLedger is an in-memory Ledger
type fakeLedger struct {
	mu       sync.Mutex
	balances map[string]float64
	credits  []map[string]float64 // every CreditMany call, for exactly-once checks
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]float64)}
}

func (l *fakeLedger) GetBalance(username string) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[username], nil
}

func (l *fakeLedger) Debit(username string, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[username] < amount {
		return ledger.ErrInsufficientFunds
	}
	l.balances[username] -= amount
	return nil
}

func (l *fakeLedger) Credit(username string, amount float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[username] += amount
	return nil
}

func (l *fakeLedger) CreditMany(payouts map[string]float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for username, amount := range payouts {
		l.balances[username] += amount
	}
	l.credits = append(l.credits, payouts)
	return nil
}

// fakeRecorder captures round summaries
type fakeRecorder struct {
	mu        sync.Mutex
	summaries [][]byte
}

func (r *fakeRecorder) RecordRoundSummary(tableId string, summary []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaries = append(r.summaries, summary)
	return nil
}

// newTestEngine wires an engine against the in-memory fakes
func newTestEngine(tableId string) (*Engine, *memStore, *fakeLedger, *fakeRecorder) {
	store := newMemStore()
	lgr := newFakeLedger()
	rec := &fakeRecorder{}
	return NewEngine(tableId, store, lgr, rec), store, lgr, rec
}

// riggedDeck builds a deck that deals the given cards in order (the
// deal pops from the end of the slice), with the rest of the 52 cards
// underneath so card-conservation checks still hold.
func riggedDeck(deal ...blackjack.Card) []blackjack.Card {
	rigged := make(map[blackjack.Card]bool, len(deal))
	for _, card := range deal {
		rigged[card] = true
	}

	deck := make([]blackjack.Card, 0, blackjack.DeckSize)
	for _, suit := range blackjack.Suits {
		for _, rank := range blackjack.Ranks {
			card := blackjack.Card{Suit: suit, Rank: rank}
			if !rigged[card] {
				deck = append(deck, card)
			}
		}
	}
	// Last element is dealt first
	for i := len(deal) - 1; i >= 0; i-- {
		deck = append(deck, deal[i])
	}
	return deck
}

// seatedState builds a waiting-phase state with the given seats
func seatedState(tableId string, seats ...redis_models.Seat) *redis_models.TableState {
	ts := redis_models.NewTableState(tableId)
	ts.Seats = append(ts.Seats, seats...)
	return ts
}

func wageredSeat(username string, wager float64) redis_models.Seat {
	return redis_models.Seat{
		Username: username,
		Wager:    wager,
		Hand:     []blackjack.Card{},
		Status:   redis_models.SeatWaiting,
	}
}

// allCards collects every card across the deck, dealer hand and seats
func allCards(ts *redis_models.TableState) []blackjack.Card {
	cards := append([]blackjack.Card{}, ts.Deck...)
	cards = append(cards, ts.DealerHand...)
	for i := range ts.Seats {
		cards = append(cards, ts.Seats[i].Hand...)
	}
	return cards
}

var testNow = time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)
