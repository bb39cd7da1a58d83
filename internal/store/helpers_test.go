package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erazemk/skinledger/internal/model"
)

func createTestUser(t *testing.T, database *sql.DB, username string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), database, &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    1700000000000,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func newTestItem(ownerID, name, buyPrice string, buyDate int64) *model.Item {
	return &model.Item{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Name:      name,
		BuyPrice:  decimal.RequireFromString(buyPrice),
		BuyDate:   buyDate,
		CreatedAt: buyDate,
		UpdatedAt: buyDate,
	}
}
