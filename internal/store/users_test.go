package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/erazemk/skinledger/internal/db"
	"github.com/erazemk/skinledger/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "testuser")
	if user.Username != "testuser" {
		t.Errorf("expected username 'testuser', got %q", user.Username)
	}
	if user.Status != model.UserStatusActive {
		t.Errorf("expected status 'active', got %q", user.Status)
	}

	got, err := GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "testuser@example.com" {
		t.Errorf("expected email 'testuser@example.com', got %q", got.Email)
	}
}

func TestGetUserByLogin(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	createTestUser(t, database, "alice1")

	byName, err := GetUserByLogin(ctx, database, "alice1")
	if err != nil {
		t.Fatalf("GetUserByLogin: %v", err)
	}
	if byName == nil || byName.Username != "alice1" {
		t.Fatalf("expected alice1 by username, got %+v", byName)
	}

	byEmail, err := GetUserByLogin(ctx, database, "alice1@example.com")
	if err != nil {
		t.Fatalf("GetUserByLogin: %v", err)
	}
	if byEmail == nil || byEmail.ID != byName.ID {
		t.Fatalf("expected alice1 by email, got %+v", byEmail)
	}

	missing, err := GetUserByLogin(ctx, database, "bob")
	if err != nil {
		t.Fatalf("GetUserByLogin: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing user")
	}
}

func TestCreateUserConflict(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	createTestUser(t, database, "alice1")

	_, err := CreateUser(ctx, database, &model.User{
		ID:           uuid.NewString(),
		Username:     "alice1",
		Email:        "other@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate username, got %v", err)
	}

	_, err = CreateUser(ctx, database, &model.User{
		ID:           uuid.NewString(),
		Username:     "other1",
		Email:        "alice1@example.com",
		PasswordHash: "hash",
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate email, got %v", err)
	}
}

func TestUpdateUserPasswordAndStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user := createTestUser(t, database, "alice1")

	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	if err := SetUserStatus(ctx, database, user.ID, model.UserStatusDisabled); err != nil {
		t.Fatalf("SetUserStatus: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected updated hash, got %q", got.PasswordHash)
	}
	if got.Active() {
		t.Error("expected disabled user")
	}
}
