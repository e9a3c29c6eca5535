// Package reply maps free-text confirmation replies onto actions. The
// channel is noisy (SMS), so matching is deliberately strict: exact match
// first, the "yes <amount>" prefix second, and everything else is treated
// as an unrelated new message rather than a confirmation.
package reply

import (
	"strconv"
	"strings"
)

// Action is the interpreted intent of a confirmation reply.
type Action string

const (
	// ActionConfirm commits the pending expense, optionally with an
	// adjusted amount.
	ActionConfirm Action = "confirm"
	// ActionSkip drops the pending expense without committing anything.
	ActionSkip Action = "skip"
	// ActionCancelRequest is the first half of the two-step cancel gate.
	// It mutates nothing; the caller answers with instructions to reply
	// "delete" if the user really wants to stop the recurring expense.
	ActionCancelRequest Action = "cancel_request"
	// ActionDelete deactivates the recurring template and removes its
	// pending expense.
	ActionDelete Action = "delete"
	// ActionUnknown means the text is not a confirmation reply at all.
	ActionUnknown Action = "unknown"
)

// Parse interprets a confirmation reply. The amount is only non-nil for
// "yes <amount>" replies; dollar signs and thousands separators are
// accepted ("yes $1,050.50").
func Parse(text string) (Action, *float64) {
	norm := strings.ToLower(strings.TrimSpace(text))

	switch norm {
	case "yes":
		return ActionConfirm, nil
	case "skip":
		return ActionSkip, nil
	case "cancel":
		return ActionCancelRequest, nil
	case "delete":
		return ActionDelete, nil
	}

	if rest, ok := strings.CutPrefix(norm, "yes "); ok {
		if amount, ok := parseAmount(rest); ok {
			return ActionConfirm, &amount
		}
		// "yes" followed by something that isn't an amount is ambiguous;
		// fall through rather than guess.
	}

	return ActionUnknown, nil
}

// parseAmount parses a dollar amount, tolerating a leading "$" and commas.
func parseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
