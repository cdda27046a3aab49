package strategy

import (
	"errors"
	"math"
	"testing"

	"solana-multiplier-bot/internal/domain"
)

func testInstrument() domain.Instrument {
	return domain.Instrument{
		Symbol:          "MEME/USDT",
		Chain:           "solana",
		ContractAddress: "MemeContract1111111111111111111111111111111",
		TokenIn:         "QuoteToken11111111111111111111111111111111",
		TokenOut:        "MemeContract1111111111111111111111111111111",
	}
}

func candlesClosingAt(price float64) []domain.Candle {
	return []domain.Candle{
		{TimestampMs: 1_000, Open: price * 0.9, High: price * 1.1, Low: price * 0.8, Close: price * 0.95, Volume: 100},
		{TimestampMs: 2_000, Open: price * 0.95, High: price * 1.05, Low: price * 0.9, Close: price, Volume: 120},
	}
}

func TestDecide_EntryBuy(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	// Flat position, 1000 free quote, price 100:
	// allocation = 1000 * 0.5 = 500, amount = 500 / 100 = 5
	decision := strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	if decision.Action != domain.ActionBuy {
		t.Fatalf("Expected buy, got %s", decision.Action)
	}
	if math.Abs(decision.Amount-5.0) > 1e-9 {
		t.Errorf("Expected amount 5.0, got %g", decision.Amount)
	}

	state, ok := strat.Position("MEME/USDT")
	if !ok {
		t.Fatal("Expected tracked position after buy")
	}
	if state.EntryPrice != 100 {
		t.Errorf("Expected entry price 100, got %g", state.EntryPrice)
	}
}

func TestDecide_EntryBuySmallAllocation(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.1, 0.5, 0.8)

	// 1000 * 0.1 / 50 = 2
	decision := strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(50),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	if decision.Action != domain.ActionBuy || math.Abs(decision.Amount-2.0) > 1e-9 {
		t.Fatalf("Expected buy 2.0, got %s %g", decision.Action, decision.Amount)
	}
	state, _ := strat.Position("MEME/USDT")
	if state.EntryPrice != 50 {
		t.Errorf("Expected entry price 50, got %g", state.EntryPrice)
	}
}

func TestDecide_Idempotent(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	// Identical inputs with no intervening state change yield identical
	// decisions.
	input := &Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(250),
		HeldAmount: 10,
	}
	first := strat.Decide(input)
	second := strat.Decide(input)

	if first != second {
		t.Errorf("Expected identical decisions, got %+v and %+v", first, second)
	}
	if first.Action != domain.ActionSell || math.Abs(first.Amount-5.0) > 1e-9 {
		t.Errorf("Expected sell 5.0, got %s %g", first.Action, first.Amount)
	}
}

func TestDecide_SellAt2x(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	// Open the position at 100
	strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	// Price 201 = 2.01x entry, held 10: sell 10 * 0.5 = 5
	decision := strat.Decide(&Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(201),
		HeldAmount: 10,
	})

	if decision.Action != domain.ActionSell {
		t.Fatalf("Expected sell, got %s", decision.Action)
	}
	if math.Abs(decision.Amount-5.0) > 1e-9 {
		t.Errorf("Expected amount 5.0, got %g", decision.Amount)
	}
}

func TestDecide_SellAt3xWinsOver2x(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	// Price 310 crosses both thresholds; the 3x fraction applies:
	// 10 * 0.8 = 8
	decision := strat.Decide(&Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(310),
		HeldAmount: 10,
	})

	if decision.Action != domain.ActionSell {
		t.Fatalf("Expected sell, got %s", decision.Action)
	}
	if math.Abs(decision.Amount-8.0) > 1e-9 {
		t.Errorf("Expected amount 8.0, got %g", decision.Amount)
	}
}

func TestDecide_HoldBetweenEntryAnd2x(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	// 1.99x is below the first threshold
	decision := strat.Decide(&Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(199),
		HeldAmount: 10,
	})

	if decision.Action != domain.ActionHold {
		t.Errorf("Expected hold at 1.99x, got %s", decision.Action)
	}
}

func TestDecide_RepeatedSellWhileAboveThreshold(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	// First partial sell at 2x: 10 * 0.5 = 5
	first := strat.Decide(&Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(210),
		HeldAmount: 10,
	})
	if first.Action != domain.ActionSell || math.Abs(first.Amount-5.0) > 1e-9 {
		t.Fatalf("Expected sell 5.0, got %s %g", first.Action, first.Amount)
	}

	// Exchange now reports the reduced balance; price still above 2x,
	// so another fraction of what remains is sold: 5 * 0.5 = 2.5
	second := strat.Decide(&Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(210),
		HeldAmount: 5,
	})
	if second.Action != domain.ActionSell || math.Abs(second.Amount-2.5) > 1e-9 {
		t.Errorf("Expected sell 2.5, got %s %g", second.Action, second.Amount)
	}
}

func TestDecide_FullLiquidationResetsEntry(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	// Balance back to zero: the next call is a fresh entry at the new price
	decision := strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(400),
		HeldAmount:       0,
		FreeQuoteBalance: 2000,
	})

	if decision.Action != domain.ActionBuy {
		t.Fatalf("Expected fresh buy after liquidation, got %s", decision.Action)
	}
	// 2000 * 0.5 / 400 = 2.5
	if math.Abs(decision.Amount-2.5) > 1e-9 {
		t.Errorf("Expected amount 2.5, got %g", decision.Amount)
	}

	state, _ := strat.Position("MEME/USDT")
	if state.EntryPrice != 400 {
		t.Errorf("Expected new entry price 400, got %g", state.EntryPrice)
	}
}

func TestDecide_PreexistingHoldingsAdoptCurrentPrice(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	// Tokens already on the account before the strategy first runs.
	// Entry is the first observed price, so 2x triggers from there.
	decision := strat.Decide(&Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(50),
		HeldAmount: 4,
	})
	if decision.Action != domain.ActionHold {
		t.Fatalf("Expected hold on first observation, got %s", decision.Action)
	}

	decision = strat.Decide(&Input{
		Instrument: testInstrument(),
		Candles:    candlesClosingAt(100),
		HeldAmount: 4,
	})
	if decision.Action != domain.ActionSell {
		t.Errorf("Expected sell at 2x of adopted entry, got %s", decision.Action)
	}
}

func TestDecide_EmptyCandlesHolds(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	decision := strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          nil,
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	if decision.Action != domain.ActionHold {
		t.Errorf("Expected hold on empty candles, got %s", decision.Action)
	}
	if decision.Actionable() {
		t.Error("Hold must not be actionable")
	}
}

func TestDecide_ZeroPriceHolds(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	decision := strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          []domain.Candle{{TimestampMs: 1_000}},
		HeldAmount:       0,
		FreeQuoteBalance: 1000,
	})

	if decision.Action != domain.ActionHold {
		t.Errorf("Expected hold on zero close, got %s", decision.Action)
	}
}

func TestDecide_NoQuoteBalanceHolds(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	decision := strat.Decide(&Input{
		Instrument:       testInstrument(),
		Candles:          candlesClosingAt(100),
		HeldAmount:       0,
		FreeQuoteBalance: 0,
	})

	if decision.Action != domain.ActionHold {
		t.Errorf("Expected hold with no quote balance, got %s", decision.Action)
	}
}

func TestDecide_IndependentSymbols(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	memecoin := testInstrument()
	other := domain.Instrument{Symbol: "PUMP/USDT", ContractAddress: "PumpContract1111111111111111111111111111111"}

	strat.Decide(&Input{Instrument: memecoin, Candles: candlesClosingAt(100), FreeQuoteBalance: 1000})
	strat.Decide(&Input{Instrument: other, Candles: candlesClosingAt(10), FreeQuoteBalance: 1000})

	// Doubling the second symbol must not sell the first.
	decision := strat.Decide(&Input{Instrument: other, Candles: candlesClosingAt(20), HeldAmount: 50})
	if decision.Action != domain.ActionSell {
		t.Fatalf("Expected sell on PUMP/USDT, got %s", decision.Action)
	}

	decision = strat.Decide(&Input{Instrument: memecoin, Candles: candlesClosingAt(110), HeldAmount: 5})
	if decision.Action != domain.ActionHold {
		t.Errorf("Expected hold on MEME/USDT at 1.1x, got %s", decision.Action)
	}
}

func TestID_IncludesParameters(t *testing.T) {
	strat := NewMultiplierSellStrategy(0.5, 0.5, 0.8)

	if got, want := strat.ID(), "MULTIPLIER_SELL_alloc50_2x50_3x80"; got != want {
		t.Errorf("Expected ID %q, got %q", want, got)
	}
}

func TestFromName_MultiplierSell(t *testing.T) {
	strat, err := FromName(NameMultiplierSell, Params{
		AllocationFraction: 0.5,
		SellFraction2x:     0.5,
		SellFraction3x:     0.8,
	})
	if err != nil {
		t.Fatalf("FromName failed: %v", err)
	}
	if _, ok := strat.(*MultiplierSellStrategy); !ok {
		t.Errorf("Expected *MultiplierSellStrategy, got %T", strat)
	}
}

func TestFromName_UnknownStrategy(t *testing.T) {
	_, err := FromName("momentum", Params{AllocationFraction: 0.5, SellFraction2x: 0.5, SellFraction3x: 0.8})
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Errorf("Expected ErrUnknownStrategy, got %v", err)
	}
}

func TestFromName_InvalidFraction(t *testing.T) {
	cases := []Params{
		{AllocationFraction: 0, SellFraction2x: 0.5, SellFraction3x: 0.8},
		{AllocationFraction: 0.5, SellFraction2x: 1.5, SellFraction3x: 0.8},
		{AllocationFraction: 0.5, SellFraction2x: 0.5, SellFraction3x: -0.1},
	}

	for i, params := range cases {
		if _, err := FromName(NameMultiplierSell, params); !errors.Is(err, ErrInvalidFraction) {
			t.Errorf("Case %d: expected ErrInvalidFraction, got %v", i, err)
		}
	}
}
