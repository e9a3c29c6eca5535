package reply

import "testing"

func TestParse(t *testing.T) {
	t.Run("plain_yes", func(t *testing.T) {
		action, amount := Parse("yes")
		if action != ActionConfirm {
			t.Errorf("expected confirm, got %s", action)
		}
		if amount != nil {
			t.Errorf("expected no amount, got %v", *amount)
		}
	})

	t.Run("yes_with_dollar_amount", func(t *testing.T) {
		action, amount := Parse("yes $1,050.50")
		if action != ActionConfirm {
			t.Fatalf("expected confirm, got %s", action)
		}
		if amount == nil || *amount != 1050.50 {
			t.Errorf("expected amount 1050.50, got %v", amount)
		}
	})

	t.Run("yes_with_bare_amount", func(t *testing.T) {
		action, amount := Parse("yes 42")
		if action != ActionConfirm {
			t.Fatalf("expected confirm, got %s", action)
		}
		if amount == nil || *amount != 42 {
			t.Errorf("expected amount 42, got %v", amount)
		}
	})

	t.Run("case_and_whitespace_insensitive", func(t *testing.T) {
		action, _ := Parse("  YES  ")
		if action != ActionConfirm {
			t.Errorf("expected confirm, got %s", action)
		}

		action, _ = Parse("Skip")
		if action != ActionSkip {
			t.Errorf("expected skip, got %s", action)
		}
	})

	t.Run("skip", func(t *testing.T) {
		action, amount := Parse("skip")
		if action != ActionSkip || amount != nil {
			t.Errorf("expected (skip, nil), got (%s, %v)", action, amount)
		}
	})

	t.Run("cancel_is_a_soft_gate", func(t *testing.T) {
		action, _ := Parse("cancel")
		if action != ActionCancelRequest {
			t.Errorf("expected cancel_request, got %s", action)
		}
	})

	t.Run("delete", func(t *testing.T) {
		action, _ := Parse("delete")
		if action != ActionDelete {
			t.Errorf("expected delete, got %s", action)
		}
	})

	t.Run("unrelated_text_is_unknown", func(t *testing.T) {
		for _, text := range []string{"maybe", "", "yess", "confirm", "yes please", "yes -5", "yes $0"} {
			action, amount := Parse(text)
			if action != ActionUnknown || amount != nil {
				t.Errorf("Parse(%q) = (%s, %v), want (unknown, nil)", text, action, amount)
			}
		}
	})
}
