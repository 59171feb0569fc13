package notifier

import (
	"strings"
	"testing"

	"github.com/mbomani/soulscout/internal/domain"
)

func TestFormatAlert_Basic(t *testing.T) {
	alert := domain.AlertRecord{
		Band:         domain.BandActionable,
		Symbol:       "WIF",
		Price:        1.234567,
		Confidence:   82,
		Reasons:      []string{"S1 liquidity=0.80", "S4 momentum=0.75"},
		ExitPlan:     "Trim 25% at +15%; 25% at +30%; trail rest",
		SolPath:      "2 hop(s), 0.30% deviation",
		EstImpactPct: 1.2,
		TimestampMs:  1_700_000_000_000,
	}

	formatted := FormatAlert(alert)

	if !strings.Contains(formatted.Text, "Actionable") {
		t.Error("expected band display name in text")
	}
	if !strings.Contains(formatted.Text, "WIF") {
		t.Error("expected symbol in text")
	}
	if !strings.Contains(formatted.Text, "• S1 liquidity=0.80") {
		t.Error("expected bulleted reason")
	}
	if !strings.Contains(formatted.Text, "<b>Plan:</b>") {
		t.Error("expected plan section")
	}
	if formatted.SplitRequired {
		t.Error("short alert should not require splitting")
	}
	if len(formatted.Parts) != 1 {
		t.Errorf("expected 1 part, got %d", len(formatted.Parts))
	}
}

func TestFormatAlert_SplitsLongMessage(t *testing.T) {
	reasons := make([]string, 0, 400)
	for i := 0; i < 400; i++ {
		reasons = append(reasons, "padding reason line to force overflow of the telegram length limit")
	}
	alert := domain.AlertRecord{
		Band:    domain.BandHighConviction,
		Symbol:  "BONK",
		Price:   0.00001234,
		Reasons: reasons,
	}

	formatted := FormatAlert(alert)

	if !formatted.SplitRequired {
		t.Fatal("expected split required for long alert")
	}
	if len(formatted.Parts) < 2 {
		t.Fatalf("expected multiple parts, got %d", len(formatted.Parts))
	}
	for i, part := range formatted.Parts {
		if len(part) > TelegramMaxLength {
			t.Errorf("part %d exceeds max length: %d", i, len(part))
		}
	}
}
