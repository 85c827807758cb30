package market

import (
	"context"
	"math"
	"testing"

	"github.com/nmartinez/oddsedge/pkg/types"
)

func TestEngine_Discrepancies_FlagsSoftBookEdge(t *testing.T) {
	// Sharp consensus: home 0.60, away 0.40. A soft book paying 1.80 on
	// home is (1.80/1.6667 - 1) = 8% over fair.
	source := &stubSource{snapshots: []types.OddsSnapshot{
		snapshot(1, "pinnacle", 1/0.60, 1/0.40, nil),
		snapshot(1, "draftkings", 1.80, 2.20, nil),
	}}
	engine := newTestEngine(source)

	discs, err := engine.Discrepancies(context.Background(), 1, 5.0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(discs) != 1 {
		t.Fatalf("expected 1 discrepancy, got %d: %+v", len(discs), discs)
	}

	d := discs[0]
	if d.Bookmaker != "draftkings" {
		t.Errorf("expected bookmaker draftkings, got %s", d.Bookmaker)
	}
	if d.Selection != types.SelectionHome {
		t.Errorf("expected home selection, got %s", d.Selection)
	}
	if math.Abs(d.EdgePercent-8.0) > 1e-6 {
		t.Errorf("expected edge 8.0%%, got %v", d.EdgePercent)
	}
	if math.Abs(d.FairOdds-1/0.60) > epsilon {
		t.Errorf("expected fair odds %v, got %v", 1/0.60, d.FairOdds)
	}
	if math.Abs(d.ConsensusProb-0.60) > epsilon {
		t.Errorf("expected consensus prob 0.60, got %v", d.ConsensusProb)
	}
	if math.Abs(d.SoftImplied-1/1.80) > epsilon {
		t.Errorf("expected soft implied %v, got %v", 1/1.80, d.SoftImplied)
	}
}

func TestEngine_Discrepancies_BelowThreshold(t *testing.T) {
	source := &stubSource{snapshots: []types.OddsSnapshot{
		snapshot(1, "pinnacle", 2.00, 2.00, nil),
		snapshot(1, "draftkings", 2.05, 1.95, nil), // 2.5% home edge
	}}
	engine := newTestEngine(source)

	discs, err := engine.Discrepancies(context.Background(), 1, 5.0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(discs) != 0 {
		t.Errorf("expected no discrepancies below threshold, got %d", len(discs))
	}
}

func TestEngine_Discrepancies_NoConsensusIsEmpty(t *testing.T) {
	// Soft quotes exist but no sharp book has priced the game.
	source := &stubSource{snapshots: []types.OddsSnapshot{
		snapshot(1, "draftkings", 1.80, 2.20, nil),
	}}
	engine := newTestEngine(source)

	discs, err := engine.Discrepancies(context.Background(), 1, 5.0)
	if err != nil {
		t.Fatalf("absent consensus must not be an error, got %v", err)
	}
	if len(discs) != 0 {
		t.Errorf("expected empty list without consensus, got %d", len(discs))
	}
}

func TestEngine_Discrepancies_MultipleBooksAndSides(t *testing.T) {
	source := &stubSource{snapshots: []types.OddsSnapshot{
		snapshot(1, "pinnacle", 2.00, 2.00, nil),
		snapshot(1, "draftkings", 2.30, 1.70, nil), // home +15%
		snapshot(1, "fanduel", 1.70, 2.30, nil),    // away +15%
	}}
	engine := newTestEngine(source)

	discs, err := engine.Discrepancies(context.Background(), 1, 5.0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(discs) != 2 {
		t.Fatalf("expected 2 discrepancies, got %d", len(discs))
	}

	seen := make(map[string]string)
	for _, d := range discs {
		seen[d.Bookmaker] = d.Selection
	}
	if seen["draftkings"] != types.SelectionHome {
		t.Errorf("expected draftkings home flag, got %v", seen)
	}
	if seen["fanduel"] != types.SelectionAway {
		t.Errorf("expected fanduel away flag, got %v", seen)
	}
}

func TestEngine_Discrepancies_DrawRequiresBothSides(t *testing.T) {
	t.Run("soft draw without sharp draw is ignored", func(t *testing.T) {
		source := &stubSource{snapshots: []types.OddsSnapshot{
			snapshot(1, "pinnacle", 2.00, 2.00, nil),
			snapshot(1, "draftkings", 2.00, 2.00, fptr(50.0)),
		}}
		engine := newTestEngine(source)

		discs, err := engine.Discrepancies(context.Background(), 1, 5.0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(discs) != 0 {
			t.Errorf("expected no draw comparison without sharp draw price, got %+v", discs)
		}
	})

	t.Run("draw priced by both sides is compared", func(t *testing.T) {
		source := &stubSource{snapshots: []types.OddsSnapshot{
			snapshot(1, "pinnacle", 2.50, 3.00, fptr(4.00)), // draw prob 0.25
			snapshot(1, "draftkings", 2.50, 3.00, fptr(4.60)),
		}}
		engine := newTestEngine(source)

		discs, err := engine.Discrepancies(context.Background(), 1, 5.0)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(discs) != 1 {
			t.Fatalf("expected 1 draw discrepancy, got %d: %+v", len(discs), discs)
		}
		if discs[0].Selection != types.SelectionDraw {
			t.Errorf("expected draw selection, got %s", discs[0].Selection)
		}

		wantEdge := (4.60/4.00 - 1) * 100
		if math.Abs(discs[0].EdgePercent-wantEdge) > 1e-6 {
			t.Errorf("expected edge %v, got %v", wantEdge, discs[0].EdgePercent)
		}
	})
}

func TestEngine_Discrepancies_MonotonicInOfferedOdds(t *testing.T) {
	// For a fixed consensus, raising the soft book's price never lowers
	// the computed edge.
	consensusProb := 0.60
	prevEdge := math.Inf(-1)

	for _, offered := range []float64{1.50, 1.70, 1.80, 2.00, 2.50} {
		source := &stubSource{snapshots: []types.OddsSnapshot{
			snapshot(1, "pinnacle", 1/consensusProb, 1/(1-consensusProb), nil),
			snapshot(1, "draftkings", offered, 2.20, nil),
		}}
		engine := newTestEngine(source)

		// Threshold low enough that every price is emitted.
		discs, err := engine.Discrepancies(context.Background(), 1, -1000)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var homeEdge float64
		found := false
		for _, d := range discs {
			if d.Selection == types.SelectionHome && d.Bookmaker == "draftkings" {
				homeEdge = d.EdgePercent
				found = true
			}
		}
		if !found {
			t.Fatalf("expected a home discrepancy for odds %v", offered)
		}

		if homeEdge < prevEdge {
			t.Errorf("edge decreased from %v to %v when odds rose to %v", prevEdge, homeEdge, offered)
		}
		prevEdge = homeEdge
	}
}
