package portfolio

import (
	"testing"

	"github.com/mbomani/soulscout/internal/domain"
)

func TestValuator_Value(t *testing.T) {
	v := NewValuator(5.0, 50)

	holdings := []domain.Holding{
		{Mint: "A", Symbol: "AAA", Amount: 10, USDPrice: 2, USDValue: 20, Priced: true, Tag: domain.ValuationCG},
		{Mint: "B", Symbol: "BBB", Amount: 100, USDPrice: 1, USDValue: 100, Priced: true, Tag: domain.ValuationDEX},
		{Mint: "C", Symbol: "CCC", Amount: 50, USDPrice: 1, USDValue: 50, Priced: true, Tag: domain.ValuationEst50},
		{Mint: "D", Symbol: "DDD", Amount: 1, USDPrice: 0, USDValue: 0, Priced: false, Tag: domain.ValuationNA},
		{Mint: "E", Symbol: "EEE", Amount: 1, USDPrice: 1, USDValue: 1, Priced: true, Tag: domain.ValuationCG}, // dust
	}

	summary := v.Value(holdings)

	if summary.TotalUSD != 120 {
		t.Errorf("expected total 120 (20+100), got %v", summary.TotalUSD)
	}
	if summary.IncludedCount != 2 {
		t.Errorf("expected 2 included, got %d", summary.IncludedCount)
	}
	if summary.HaircutSubtotalUSD != 25 {
		t.Errorf("expected haircut subtotal 25 (50*0.5), got %v", summary.HaircutSubtotalUSD)
	}
	if summary.ExcludedCount != 1 {
		t.Errorf("expected 1 excluded (NA), got %d", summary.ExcludedCount)
	}
	// dust holding E ($1 < $5 floor) should not appear at all
	for _, h := range summary.Holdings {
		if h.Mint == "E" {
			t.Error("dust holding should have been dropped")
		}
	}
	// sorted descending by USD value: B(100) before C(25 haircut) before A(20)
	if summary.Holdings[0].Mint != "B" {
		t.Errorf("expected B first, got %s", summary.Holdings[0].Mint)
	}
}

func TestValuator_NotesComposition(t *testing.T) {
	v := NewValuator(0, 50)
	holdings := []domain.Holding{
		{Mint: "A", Priced: false, Tag: domain.ValuationNA},
		{Mint: "B", Priced: true, USDValue: 10, Tag: domain.ValuationEst50},
	}
	summary := v.Value(holdings)
	if summary.Notes == "" {
		t.Error("expected non-empty notes when both excluded and haircut are present")
	}
}
