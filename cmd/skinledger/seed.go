package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/erazemk/skinledger/internal/config"
	"github.com/erazemk/skinledger/internal/model"
	"github.com/erazemk/skinledger/internal/service"
)

type seedUser struct {
	username string
	email    string
	password string
	items    []seedItem
}

// seedItem describes a sample purchase relative to the time of seeding.
// An empty soldPrice leaves the item unsold.
type seedItem struct {
	name      string
	buyPrice  string
	boughtAgo time.Duration
	soldPrice string
	soldAgo   time.Duration
	imageURL  string
}

const day = 24 * time.Hour

var seedUsers = []seedUser{
	{
		username: "demouser",
		email:    "demo@example.com",
		password: "Password123!",
	},
	{
		username: "itemuser",
		email:    "items@example.com",
		password: "Password456!",
		items: []seedItem{
			{name: "AK-47 | Redline (Field-Tested)", buyPrice: "12.40", boughtAgo: 120 * day, soldPrice: "15.10", soldAgo: 90 * day},
			{name: "AWP | Asiimov (Battle-Scarred)", buyPrice: "68.00", boughtAgo: 100 * day, soldPrice: "74.25", soldAgo: 40 * day},
			{name: "★ Karambit | Doppler (Factory New)", buyPrice: "910.00", boughtAgo: 75 * day, soldPrice: "980.00", soldAgo: 20 * day},
			{name: "StatTrak™ USP-S | Kill Confirmed (Minimal Wear)", buyPrice: "95.50", boughtAgo: 60 * day, soldPrice: "88.00", soldAgo: 10 * day},
			{name: "Glock-18 | Water Elemental (Minimal Wear)", buyPrice: "4.75", boughtAgo: 30 * day},
			{name: "M4A1-S | Printstream (Field-Tested)", buyPrice: "140.00", boughtAgo: 5 * day},
			{name: "Sticker | Crown (Foil)", buyPrice: "310.00", boughtAgo: 2 * day},
		},
	},
}

// seed creates the demo accounts. Accounts that already exist are left
// untouched, so running it twice changes nothing.
func seed(cfg *config.Config) error {
	ctx := context.Background()

	database, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close()

	return seedDatabase(ctx, database, cfg.Auth.BcryptCost, time.Now())
}

func seedDatabase(ctx context.Context, database *sql.DB, bcryptCost int, now time.Time) error {
	users := service.NewUserService(database, bcryptCost)
	items := service.NewItemService(database, nil)
	items.Now = func() time.Time { return now }

	for _, su := range seedUsers {
		user, err := users.Signup(ctx, service.SignupInput{
			Username:        su.username,
			Email:           su.email,
			Password:        su.password,
			ConfirmPassword: su.password,
		})
		if errors.Is(err, service.ErrConflict) {
			slog.Info("seed user exists, skipping", "user", su.username)
			continue
		}
		if err != nil {
			return fmt.Errorf("creating %s: %w", su.username, err)
		}

		for _, si := range su.items {
			if _, err := items.Create(ctx, user.ID, si.input(now)); err != nil {
				return fmt.Errorf("creating item %q for %s: %w", si.name, su.username, err)
			}
		}
		slog.Info("seed user created", "user", su.username, "id", user.ID, "items", len(su.items))
	}
	return nil
}

func (si seedItem) input(now time.Time) model.ItemInput {
	stamp := func(ago time.Duration) model.Raw {
		return model.NewRaw(strconv.FormatInt(now.Add(-ago).UnixMilli(), 10))
	}

	in := model.ItemInput{
		Name:     model.NewRaw(si.name),
		BuyPrice: model.NewRaw(si.buyPrice),
		BuyDate:  stamp(si.boughtAgo),
		ImageURL: model.NewRaw(si.imageURL),
	}
	if si.soldPrice != "" {
		in.SoldPrice = model.NewRaw(si.soldPrice)
		in.SoldDate = stamp(si.soldAgo)
	}
	return in
}
