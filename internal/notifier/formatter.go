package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/mbomani/soulscout/internal/domain"
)

// TelegramMaxLength is the delivery transport's message length limit.
// The notifier formats against it even though the transport itself is
// out of scope, so a FormattedAlert is always ready to send as-is.
const TelegramMaxLength = 4096

// FormattedAlert is the HTML-formatted delivery unit, pre-split into
// transport-sized parts.
type FormattedAlert struct {
	Text          string
	Parts         []string
	SplitRequired bool
}

var bandDisplay = map[domain.Band]string{
	domain.BandHeadsUp:        "Heads-up",
	domain.BandActionable:     "Actionable",
	domain.BandHighConviction: "High Conviction",
}

func buildTitle(alert domain.AlertRecord) string {
	display, ok := bandDisplay[alert.Band]
	if !ok {
		display = string(alert.Band)
	}
	return fmt.Sprintf("%s BUY — %s @ $%.6f (C=%d)", display, alert.Symbol, alert.Price, alert.Confidence)
}

// FormatAlert renders an AlertRecord into HTML for the delivery
// transport, splitting into multiple parts if it exceeds
// TelegramMaxLength.
func FormatAlert(alert domain.AlertRecord) FormattedAlert {
	var b strings.Builder
	b.WriteString(buildTitle(alert))
	b.WriteString("\n\n")

	for _, reason := range alert.Reasons {
		b.WriteString("• ")
		b.WriteString(reason)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if alert.ExitPlan != "" {
		b.WriteString("<b>Plan:</b> ")
		b.WriteString(alert.ExitPlan)
		b.WriteString("\n")
	}

	if alert.SolPath != "" {
		b.WriteString("<b>Exit to SOL:</b> ")
		b.WriteString(alert.SolPath)
		b.WriteString(fmt.Sprintf(" (est impact %.1f%%)", alert.EstImpactPct))
		b.WriteString("\n")
	}

	if alert.TimestampMs > 0 {
		ts := time.UnixMilli(alert.TimestampMs).UTC().Format(time.RFC3339)
		b.WriteString("\n<i>" + ts + "</i>")
	}

	text := b.String()
	parts := splitIfNeeded(text)
	return FormattedAlert{Text: text, Parts: parts, SplitRequired: len(parts) > 1}
}

// splitIfNeeded breaks text on newline boundaries so no part exceeds
// TelegramMaxLength, prefixing continuation parts with a marker.
func splitIfNeeded(text string) []string {
	if len(text) <= TelegramMaxLength {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	lines := strings.SplitAfter(text, "\n")

	for _, line := range lines {
		if current.Len()+len(line) > TelegramMaxLength {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
				current.WriteString("...(continued)\n\n")
			}
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}
