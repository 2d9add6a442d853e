package game_constants

import "time"

// Table limits
const MaxSeats = 4
const MinimumWager = 10.0
const StartingBalance = 1000.0 // granted on signup

// Phase timing. The engine ticks once per second, so the countdown
// constants are expressed in whole seconds.
const (
	WaitingDelay     = 5 * time.Second // waiting -> betting once a seat is taken
	BettingSeconds   = 10              // betting countdown before the deal
	TurnSeconds      = 30              // per-turn deadline during playing
	SettlePause      = 2 * time.Second // pause after the dealer stands, before payouts
	FinishedSeconds  = 5               // result display before the table resets
	DealerStandValue = 17              // dealer draws while below this
)

// Payout multipliers (applied to the seat's wager)
const (
	BlackjackPayout = 2.5 // 3:2 natural
	WinPayout       = 2.0 // stake returned + equal winnings
	PushPayout      = 1.0 // stake returned
)
