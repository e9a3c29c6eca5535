package services

import (
	"testing"

	"pocketwatch/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	t.Run("valid_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		user, err := svc.CreateUser("Alex@Example.com", "password123", "+15551234567", "Alex")
		testutil.AssertNoError(t, err)

		if user.Email != "alex@example.com" {
			t.Errorf("email = %q, want lowercased", user.Email)
		}
		if user.Password == "password123" {
			t.Error("password must be stored hashed")
		}
		if !user.IsActive {
			t.Error("new users should be active")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("alex@example.com", "password123", "+15551234567", "Alex")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("alex@example.com", "password123", "+15557654321", "Alex")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("duplicate_phone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("alex@example.com", "password123", "+15551234567", "Alex")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser("sam@example.com", "password123", "+15551234567", "Sam")
		testutil.AssertAppError(t, err, "DUPLICATE_PHONE")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("", "password123", "+15551234567", "Alex")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateUser("alex@example.com", "password123", "", "Alex")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserByPhone(t *testing.T) {
	t.Run("resolves_sender", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		created, err := svc.CreateUser("alex@example.com", "password123", "+15551234567", "Alex")
		testutil.AssertNoError(t, err)

		user, err := svc.GetUserByPhone("+15551234567")
		testutil.AssertNoError(t, err)
		if user.ID != created.ID {
			t.Errorf("resolved wrong user: %s", user.ID)
		}
	})

	t.Run("unknown_sender", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.GetUserByPhone("+15550000000")
		testutil.AssertAppError(t, err, "UNKNOWN_SENDER")
	})
}

func TestAttemptLogin(t *testing.T) {
	t.Run("valid_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("alex@example.com", "password123", "+15551234567", "Alex")
		testutil.AssertNoError(t, err)

		user, err := svc.AttemptLogin("alex@example.com", "password123")
		testutil.AssertNoError(t, err)
		if user.LastLoginAt == nil {
			t.Error("expected last_login_at to be stamped")
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.CreateUser("alex@example.com", "password123", "+15551234567", "Alex")
		testutil.AssertNoError(t, err)

		_, err = svc.AttemptLogin("alex@example.com", "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email_looks_like_bad_credentials", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewUserService(db)

		_, err := svc.AttemptLogin("nobody@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestStoreAndGetRefreshTokenHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewUserService(db)

	user, err := svc.CreateUser("alex@example.com", "password123", "+15551234567", "Alex")
	testutil.AssertNoError(t, err)

	hash := "abcdef1234567890abcdef1234567890abcdef1234567890abcdef1234567890"
	err = svc.StoreRefreshTokenHash(user.ID, hash)
	testutil.AssertNoError(t, err)

	got, err := svc.GetRefreshTokenHash(user.ID)
	testutil.AssertNoError(t, err)
	if got != hash {
		t.Errorf("expected hash %s, got %s", hash, got)
	}

	err = svc.StoreRefreshTokenHash("00000000-0000-0000-0000-000000000000", hash)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
