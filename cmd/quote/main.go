// Package main provides an offline quote tool: it prices buys and sells
// against explicit curve parameters without touching any storage.
//
// Examples:
//
//	quote -initial-price 0.01 -curve-slope 0.00001 -side buy -amount 1000
//	quote -initial-price 0.01 -curve-slope 0.00001 -side buy -budget 10
//	quote -initial-price 0.01 -curve-slope 0.00001 -reserves 700 -side sell -amount 700
package main

import (
	"flag"
	"fmt"
	"os"

	sdkmath "cosmossdk.io/math"

	"curve-engine/internal/pricing"
)

func main() {
	initialPrice := flag.String("initial-price", "", "Curve initial price (decimal, required)")
	curveSlope := flag.String("curve-slope", "0", "Curve slope (decimal)")
	reserves := flag.Uint64("reserves", 0, "Current curve token reserves")
	side := flag.String("side", "buy", "Quote side: buy or sell")
	amount := flag.Uint64("amount", 0, "Token amount to price")
	budget := flag.Uint64("budget", 0, "Reserve budget to invert (buy only, instead of -amount)")

	flag.Parse()

	if *initialPrice == "" {
		fatalf("-initial-price is required")
	}
	initial, err := sdkmath.LegacyNewDecFromStr(*initialPrice)
	if err != nil {
		fatalf("invalid -initial-price: %v", err)
	}
	slope, err := sdkmath.LegacyNewDecFromStr(*curveSlope)
	if err != nil {
		fatalf("invalid -curve-slope: %v", err)
	}

	spot := pricing.Price(initial, slope, *reserves)
	fmt.Printf("spot price at reserves %d: %s\n", *reserves, spot)

	switch *side {
	case "buy":
		quoteBuy(initial, slope, *reserves, *amount, *budget)
	case "sell":
		quoteSell(initial, slope, *reserves, *amount)
	default:
		fatalf("invalid -side %q: want buy or sell", *side)
	}
}

func quoteBuy(initial, slope sdkmath.LegacyDec, reserves, amount, budget uint64) {
	if budget > 0 {
		budgetDec := sdkmath.LegacyNewDecFromInt(sdkmath.NewIntFromUint64(budget))
		tokensDec, err := pricing.TokensForBudget(initial, slope, reserves, budgetDec)
		if err != nil {
			fatalf("invert budget: %v", err)
		}
		tokens, err := pricing.FloorUint64(tokensDec)
		if err != nil {
			fatalf("invert budget: %v", err)
		}
		fmt.Printf("budget %d buys %s tokens (%d whole)\n", budget, tokensDec, tokens)
		if tokens == 0 {
			return
		}
		amount = tokens
	}
	if amount == 0 {
		fatalf("buy quote needs -amount or -budget")
	}

	costDec, err := pricing.BuyCost(initial, slope, reserves, amount)
	if err != nil {
		fatalf("buy cost: %v", err)
	}
	cost, err := pricing.CeilUint64(costDec)
	if err != nil {
		fatalf("buy cost: %v", err)
	}
	fmt.Printf("buy %d tokens: cost %s (%d in smallest units, rounded up)\n", amount, costDec, cost)
	fmt.Printf("price after: %s\n", pricing.Price(initial, slope, reserves+amount))
}

func quoteSell(initial, slope sdkmath.LegacyDec, reserves, amount uint64) {
	if amount == 0 {
		fatalf("sell quote needs -amount")
	}

	proceedsDec, err := pricing.SellProceeds(initial, slope, reserves, amount)
	if err != nil {
		fatalf("sell proceeds: %v", err)
	}
	proceeds, err := pricing.FloorUint64(proceedsDec)
	if err != nil {
		fatalf("sell proceeds: %v", err)
	}
	fmt.Printf("sell %d tokens: proceeds %s (%d in smallest units, rounded down)\n", amount, proceedsDec, proceeds)
	fmt.Printf("price after: %s\n", pricing.Price(initial, slope, reserves-amount))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
