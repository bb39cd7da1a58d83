package main

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/skinledger/internal/db"
	"github.com/erazemk/skinledger/internal/service"
	"github.com/erazemk/skinledger/internal/store"
)

func TestSeedDatabaseIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		if err := seedDatabase(ctx, database, bcrypt.MinCost, now); err != nil {
			t.Fatalf("seed run %d: %v", i+1, err)
		}
	}

	users := service.NewUserService(database, bcrypt.MinCost)
	demo, err := users.Signin(ctx, "demouser", "Password123!")
	if err != nil {
		t.Fatalf("signin demouser: %v", err)
	}
	owner, err := users.Signin(ctx, "items@example.com", "Password456!")
	if err != nil {
		t.Fatalf("signin itemuser: %v", err)
	}

	if n, _ := store.CountItems(ctx, database, demo.ID); n != 0 {
		t.Errorf("demouser has %d items, want 0", n)
	}
	n, err := store.CountItems(ctx, database, owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(seedUsers[1].items) {
		t.Errorf("itemuser has %d items, want %d", n, len(seedUsers[1].items))
	}
}

func TestParseFlags(t *testing.T) {
	o, err := parseFlags("serve", []string{"-d", "x.db", "-addr", ":9000"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if o.dbPath != "x.db" || o.addr != ":9000" {
		t.Errorf("options = %+v", o)
	}

	if _, err := parseFlags("serve", []string{"extra"}); err == nil {
		t.Error("expected error for positional argument")
	}
}
