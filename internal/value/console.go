package value

import (
	"fmt"

	"github.com/nmartinez/oddsedge/pkg/types"
	"go.uber.org/zap"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// ConsolePrinter pretty-prints detected value bets for interactive runs.
type ConsolePrinter struct {
	logger *zap.Logger
}

// NewConsolePrinter creates a console printer.
func NewConsolePrinter(logger *zap.Logger) *ConsolePrinter {
	return &ConsolePrinter{logger: logger}
}

// Print pretty-prints one value bet to console.
func (c *ConsolePrinter) Print(v *types.ValueBet) {
	fmt.Println("\n" + rule)
	fmt.Printf("🎯 VALUE BET DETECTED\n")
	fmt.Println(rule)
	fmt.Printf("ID:        %s\n", v.ID[:8])
	fmt.Printf("Game:      %s vs %s\n", v.HomeTeam, v.AwayTeam)
	fmt.Printf("Selection: %s @ %s\n", v.Selection, v.Bookmaker)
	fmt.Printf("Time:      %s\n", v.IdentifiedAt.Format("2006-01-02 15:04:05"))
	fmt.Println(rule)
	fmt.Printf("📊 PRICES\n")
	fmt.Printf("  Offered:    %.2f (implied %.4f)\n", v.OfferedOdds, v.MarketProb)
	fmt.Printf("  Fair:       %.2f (consensus %.4f)\n", v.FairOdds, v.MyProbability)
	fmt.Printf("  Edge:       %.1f%%\n", v.EdgePercent)
	fmt.Println(rule)
	fmt.Printf("💰 STAKE\n")
	fmt.Printf("  Kelly fraction:  %.2f\n", v.KellyFraction)
	fmt.Printf("  Recommended:     $%.2f\n", v.Stake)
	fmt.Println(rule)
}

// PrintBatch prints a scan result, with a placeholder line when the scan
// found nothing.
func (c *ConsolePrinter) PrintBatch(bets []types.ValueBet) {
	if len(bets) == 0 {
		fmt.Println("\nNo value bets found.")
		return
	}

	for i := range bets {
		c.Print(&bets[i])
	}

	c.logger.Info("value-bets-printed", zap.Int("count", len(bets)))
}
