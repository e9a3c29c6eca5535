package services

import "fmt"

// FormatWarning renders one human-readable budget warning line. It is a
// pure function of its inputs: pct is the projected percentage of the cap,
// remaining is cap minus projected spending (negative when over), label
// names the scope ("Groceries", "Monthly").
func FormatWarning(pct, remaining float64, label string, limit float64) string {
	switch thresholdBand(pct) {
	case bandOver:
		return fmt.Sprintf("🚨 %s budget exceeded: %.0f%% of $%.2f ($%.2f over)",
			label, pct, limit, -remaining)
	case bandWarn95, bandWarn90:
		return fmt.Sprintf("⚠️ %s budget at %.0f%% of $%.2f ($%.2f remaining)",
			label, pct, limit, remaining)
	case bandInfo50:
		return fmt.Sprintf("💡 %s budget at %.0f%% of $%.2f ($%.2f remaining)",
			label, pct, limit, remaining)
	default:
		return ""
	}
}
