package notifier

import (
	"fmt"
	"strings"
	"time"

	"TradeSentinel/internal/model"
)

// FormatReceipt formats an order confirmation into a Telegram message.
func FormatReceipt(r *model.Receipt) string {
	var b strings.Builder

	icon := "🟢"
	if r.Side == "sell" {
		icon = "🔴"
	}
	b.WriteString(fmt.Sprintf("%s <b>Order submitted</b>\n\n", icon))
	b.WriteString(fmt.Sprintf("%s %s x%d (%s)\n", strings.ToUpper(r.Side), r.Symbol, r.Qty, r.Kind))
	b.WriteString(fmt.Sprintf("Status: %s\n", r.Status))
	b.WriteString(fmt.Sprintf("Submitted: %s\n", r.SubmittedAt.Format("2006-01-02 15:04:05 MST")))
	b.WriteString(fmt.Sprintf("Order ID: <code>%s</code>", r.ID))
	return b.String()
}

// FormatSessionSummary formats the end-of-session receipt list.
func FormatSessionSummary(receipts []model.Receipt) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>TradeSentinel session</b> | %s\n\n", time.Now().Format("2006-01-02")))
	if len(receipts) == 0 {
		b.WriteString("No orders this session.")
		return b.String()
	}

	buys, sells := 0, 0
	for _, r := range receipts {
		if r.Side == "buy" {
			buys++
		} else {
			sells++
		}
		b.WriteString(fmt.Sprintf("  %s %s x%d (%s): %s\n",
			strings.ToUpper(r.Side), r.Symbol, r.Qty, r.Kind, r.Status))
	}
	b.WriteString(fmt.Sprintf("\nTotal: %d orders (%d buys, %d sells)", len(receipts), buys, sells))
	return b.String()
}

// FormatStatus formats the current bot state for the /status command.
func FormatStatus(running bool, lastRun time.Time, receiptCount int) string {
	var b strings.Builder
	b.WriteString("📦 <b>TradeSentinel status</b>\n\n")
	if running {
		b.WriteString("Session: running\n")
	} else {
		b.WriteString("Session: idle\n")
	}
	if lastRun.IsZero() {
		b.WriteString("Last run: never\n")
	} else {
		b.WriteString(fmt.Sprintf("Last run: %s\n", lastRun.Format("2006-01-02 15:04")))
	}
	b.WriteString(fmt.Sprintf("Receipts this run: %d\n", receiptCount))
	return b.String()
}
