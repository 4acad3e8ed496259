package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/wonny/fiscalrisk/internal/contracts"
	"github.com/wonny/fiscalrisk/pkg/currency"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// ═══════════════════════════════════════════════════════════

const lineWidth = 59

// PrintHeader prints a titled block header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println(strings.Repeat("─", lineWidth))
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println(strings.Repeat("═", lineWidth))
}

// PrintField prints an aligned "label : value" line
func PrintField(label string, value interface{}) {
	fmt.Printf("  %-22s: %v\n", label, value)
}

// PrintMoney prints an aligned currency amount
func PrintMoney(label string, amount float64) {
	PrintField(label, currency.Format(amount))
}

// PrintPercent prints an aligned percentage; value is already in percent
func PrintPercent(label string, value float64) {
	PrintField(label, fmt.Sprintf("%.2f%%", value))
}

// PrintAlerts prints allocation alerts with a severity marker
func PrintAlerts(alerts []contracts.Alert) {
	if len(alerts) == 0 {
		return
	}
	PrintSeparator()
	for _, a := range alerts {
		marker := "ℹ️ "
		if a.Severity == contracts.SeverityWarning {
			marker = "⚠️ "
		}
		fmt.Printf("  %s %s\n", marker, a.Message)
	}
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// parseAge parses a Go duration such as "720h"
func parseAge(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}
