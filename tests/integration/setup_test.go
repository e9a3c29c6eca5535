package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"pocketwatch/internal/clock"
	"pocketwatch/internal/handlers"
	"pocketwatch/internal/logger"
	"pocketwatch/internal/middleware"
	"pocketwatch/internal/models"
	"pocketwatch/internal/scheduler"
	"pocketwatch/internal/services"
	"pocketwatch/internal/validator"
)

const webhookKey = "test-webhook-key"

// testApp holds the full application stack for integration tests. The clock
// is pinned so scheduler ticks are deterministic.
type testApp struct {
	DB        *gorm.DB
	Router    *gin.Engine
	Scheduler *scheduler.Scheduler
	Today     time.Time
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.RecurringTemplate{},
		&models.PendingInstance{},
		&models.Expense{},
		&models.Budget{},
		&models.MonthlyWarningRecord{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite, with the clock pinned to today.
func setupApp(t *testing.T, today time.Time) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	clk := clock.Fixed{T: today}

	// Services
	userService := services.NewUserService(db)
	templateService := services.NewTemplateService(db)
	budgetService := services.NewBudgetService(db)
	expenseService := services.NewExpenseService(db, budgetService)
	reminderService := services.NewReminderService(db, expenseService, clk)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	templateHandler := handlers.NewTemplateHandler(templateService)
	pendingHandler := handlers.NewPendingHandler(reminderService)
	expenseHandler := handlers.NewExpenseHandler(expenseService, clk)
	budgetHandler := handlers.NewBudgetHandler(budgetService)
	webhookHandler := handlers.NewWebhookHandler(userService, reminderService, templateService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	webhook := v1.Group("/webhook")
	webhook.Use(middleware.WebhookAuthMiddleware(webhookKey))
	webhook.POST("/sms", webhookHandler.Receive)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	templates := protected.Group("/templates")
	templates.POST("", templateHandler.Create)
	templates.GET("", templateHandler.List)
	templates.GET("/:id", templateHandler.Get)
	templates.DELETE("/:id", templateHandler.Cancel)

	pending := protected.Group("/pending")
	pending.GET("", pendingHandler.List)
	pending.POST("/:id/confirm", pendingHandler.Confirm)
	pending.POST("/:id/skip", pendingHandler.Skip)

	expenses := protected.Group("/expenses")
	expenses.POST("", expenseHandler.Create)
	expenses.GET("", expenseHandler.List)
	expenses.GET("/summary", expenseHandler.Summary)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.Set)
	budgets.GET("", budgetHandler.List)
	budgets.DELETE("/:id", budgetHandler.Delete)

	sched := scheduler.New(db, reminderService, scheduler.LogNotifier{}, clk, time.Hour, 2)

	return &testApp{DB: db, Router: router, Scheduler: sched, Today: today}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// sms posts an inbound message as the gateway would.
func (app *testApp) sms(t *testing.T, from, body string) map[string]interface{} {
	t.Helper()
	payload := fmt.Sprintf(`{"from":%q,"body":%q}`, from, body)
	req := httptest.NewRequest("POST", "/api/v1/webhook/sms", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", webhookKey)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	if rec.Code != 200 && rec.Code != 404 {
		t.Fatalf("webhook failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns an access token for them.
func (app *testApp) registerUser(t *testing.T, email, phone, password string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"phone":%q,"first_name":"Test"}`, email, password, phone)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != 201 {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("POST", "/api/v1/auth/login",
		fmt.Sprintf(`{"email":%q,"password":%q}`, email, password), "")
	if rec.Code != 200 {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	return result["access_token"].(string)
}
