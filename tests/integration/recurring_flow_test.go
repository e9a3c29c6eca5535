package integration

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"
)

// The full reminder loop: a recurring template is created over the API, a
// scheduler tick turns it into a pending instance, and an inbound message
// confirms it into a committed expense.
func TestRecurringFlow_TickAndConfirmBySMS(t *testing.T) {
	today := time.Date(2024, time.January, 20, 8, 0, 0, 0, time.UTC)
	app := setupApp(t, today)
	phone := "+15551230001"
	token := app.registerUser(t, "flow@test.com", phone, "password123")

	// Step 1: Create a monthly template billed on the 15th
	rec := app.request("POST", "/api/v1/templates",
		`{"name":"Netflix","amount":15.49,"category":"entertainment","frequency":"monthly","day_of_month":15}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating template, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 2: Run a tick; the 15th has passed, so a reminder appears
	stats, err := app.Scheduler.RunTick(context.Background())
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if stats.Triggered != 1 {
		t.Fatalf("expected 1 trigger, got %+v", stats)
	}

	rec = app.request("GET", "/api/v1/pending", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing pending, got %d: %s", rec.Code, rec.Body.String())
	}
	pendingResult := parseJSON(t, rec)
	data := pendingResult["data"].([]interface{})
	if len(data) != 1 {
		t.Fatalf("expected 1 pending instance, got %d", len(data))
	}

	// Step 3: A second tick changes nothing
	stats, err = app.Scheduler.RunTick(context.Background())
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if stats.Triggered != 0 {
		t.Fatalf("second tick should be a no-op, got %+v", stats)
	}

	// Step 4: Confirm over SMS with an adjusted amount
	resp := app.sms(t, phone, "yes $16.49")
	if handled, _ := resp["handled"].(bool); !handled {
		t.Fatalf("expected message to be handled: %v", resp)
	}

	// Step 5: The expense is committed and the reminder is gone
	rec = app.request("GET", "/api/v1/expenses", "", token)
	expResult := parseJSON(t, rec)
	expData := expResult["data"].([]interface{})
	if len(expData) != 1 {
		t.Fatalf("expected 1 expense, got %d", len(expData))
	}
	expense := expData[0].(map[string]interface{})
	if expense["amount"].(float64) != 16.49 {
		t.Errorf("expense amount = %v, want 16.49", expense["amount"])
	}

	rec = app.request("GET", "/api/v1/pending", "", token)
	pendingResult = parseJSON(t, rec)
	if len(pendingResult["data"].([]interface{})) != 0 {
		t.Error("expected no pending instances after confirmation")
	}

	// Step 6: The monthly summary reflects the commit
	rec = app.request("GET", "/api/v1/expenses/summary?year=2024&month=1", "", token)
	sumResult := parseJSON(t, rec)
	summary := sumResult["summary"].(map[string]interface{})
	if summary["total"].(float64) != 16.49 {
		t.Errorf("summary total = %v, want 16.49", summary["total"])
	}
}

func TestRecurringFlow_SkipBySMS(t *testing.T) {
	today := time.Date(2024, time.January, 20, 8, 0, 0, 0, time.UTC)
	app := setupApp(t, today)
	phone := "+15551230002"
	token := app.registerUser(t, "skip@test.com", phone, "password123")

	rec := app.request("POST", "/api/v1/templates",
		`{"name":"Gym","amount":45,"category":"health","frequency":"monthly","day_of_month":1}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating template, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := app.Scheduler.RunTick(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	resp := app.sms(t, phone, "skip")
	if handled, _ := resp["handled"].(bool); !handled {
		t.Fatalf("expected message to be handled: %v", resp)
	}

	rec = app.request("GET", "/api/v1/expenses", "", token)
	expResult := parseJSON(t, rec)
	if len(expResult["data"].([]interface{})) != 0 {
		t.Error("skip must not record an expense")
	}
}

func TestRecurringFlow_CancelBySMSRequiresDelete(t *testing.T) {
	today := time.Date(2024, time.January, 20, 8, 0, 0, 0, time.UTC)
	app := setupApp(t, today)
	phone := "+15551230003"
	token := app.registerUser(t, "cancel@test.com", phone, "password123")

	rec := app.request("POST", "/api/v1/templates",
		`{"name":"Magazine","amount":12,"category":"entertainment","frequency":"monthly","day_of_month":1}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating template, got %d: %s", rec.Code, rec.Body.String())
	}
	tplResult := parseJSON(t, rec)
	tplID := tplResult["template"].(map[string]interface{})["id"].(string)

	if _, err := app.Scheduler.RunTick(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}

	// CANCEL alone only prompts; the template stays active
	app.sms(t, phone, "cancel")
	rec = app.request("GET", fmt.Sprintf("/api/v1/templates/%s", tplID), "", token)
	tplResult = parseJSON(t, rec)
	if active := tplResult["template"].(map[string]interface{})["is_active"].(bool); !active {
		t.Fatal("cancel alone must not deactivate the template")
	}

	// DELETE deactivates it and clears the reminder
	resp := app.sms(t, phone, "delete")
	if handled, _ := resp["handled"].(bool); !handled {
		t.Fatalf("expected delete to be handled: %v", resp)
	}

	rec = app.request("GET", fmt.Sprintf("/api/v1/templates/%s", tplID), "", token)
	tplResult = parseJSON(t, rec)
	if active := tplResult["template"].(map[string]interface{})["is_active"].(bool); active {
		t.Error("expected template to be deactivated")
	}

	rec = app.request("GET", "/api/v1/pending", "", token)
	pendingResult := parseJSON(t, rec)
	if len(pendingResult["data"].([]interface{})) != 0 {
		t.Error("expected pending instance to be removed")
	}

	// A later tick does not resurrect the canceled template
	stats, err := app.Scheduler.RunTick(context.Background())
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if stats.Triggered != 0 {
		t.Errorf("canceled template must not trigger, got %+v", stats)
	}
}
