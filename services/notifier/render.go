package notifier

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"sjsage522/cardwatch/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
)

// ChartCaption is attached to the trend chart
const ChartCaption = "📈 Price trend"

var tableColumns = []string{"Seller", "Qty", "Price", "Country", "Sales"}

// RenderTable builds a fixed-width text table of offers
func RenderTable(offers []model.Offer) string {
	rows := make([][]string, 0, len(offers))
	for _, o := range offers {
		rows = append(rows, []string{o.Seller, o.Quantity, o.PriceText, countryLabel(o.Country), o.Sales})
	}

	widths := make([]int, len(tableColumns))
	for i, col := range tableColumns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], utf8.RuneCountInString(cell))
		}
	}

	var sep strings.Builder
	sep.WriteString("+")
	for _, w := range widths {
		sep.WriteString(strings.Repeat("-", w+2))
		sep.WriteString("+")
	}

	lines := []string{sep.String(), tableRow(tableColumns, widths), sep.String()}
	for _, row := range rows {
		lines = append(lines, tableRow(row, widths))
	}
	lines = append(lines, sep.String())
	return strings.Join(lines, "\n")
}

func tableRow(cells []string, widths []int) string {
	padded := make([]string, len(cells))
	for i, cell := range cells {
		padded[i] = cell + strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell))
	}
	return "| " + strings.Join(padded, " | ") + " |"
}

// RenderSummary lists the present prices and, only when both are present,
// the delta relative to the lowest offer
func RenderSummary(summary model.PriceSummary) string {
	var lines []string
	if summary.LowestOffer.Valid {
		lines = append(lines, fmt.Sprintf("Cardmarket min: %s €", summary.LowestOffer))
	}
	if summary.Reference.Valid {
		lines = append(lines, fmt.Sprintf("CardTrader Zero: %s €", summary.Reference))
	}
	if delta, ok := summary.Delta(); ok {
		lines = append(lines, renderDelta(delta, summary.LowestOffer.Amount))
	}
	return strings.Join(lines, "\n")
}

func renderDelta(delta, base decimal.Decimal) string {
	pct := decimal.Zero
	if !base.IsZero() {
		pct = delta.Div(base).Mul(decimal.NewFromInt(100))
	}
	sign := "+"
	if delta.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("Delta: %s%s € (%s%s%%)", sign, delta.Abs().StringFixed(2), sign, pct.Abs().StringFixed(1))
}

// RenderReport combines a title, the offer table and the price summary
func RenderReport(title string, offers []model.Offer, summary model.PriceSummary) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n```\n")
	b.WriteString(RenderTable(offers))
	b.WriteString("\n```")
	if s := RenderSummary(summary); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	return b.String()
}

// AlertTitle is the headline of an immediate target-price alert
func AlertTitle(name, listingURL string, lowest model.Price, target decimal.Decimal) string {
	return fmt.Sprintf("✅ [%s](%s) reached %s € ≤ %s €",
		escape(name), listingURL, lowest, target.StringFixed(2))
}

// DigestTitle is the headline of one digest entry
func DigestTitle(name string, target decimal.Decimal) string {
	return fmt.Sprintf("📊 *%s* (target: %s €)", escape(name), target.StringFixed(2))
}

func escape(text string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, text)
}
