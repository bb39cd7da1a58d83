package service

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/skinledger/internal/db"
	"github.com/erazemk/skinledger/internal/model"
)

// fixedNow is 15 March 2024, 12:00 UTC.
var fixedNow = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type memCache struct {
	mu          sync.Mutex
	gens        map[string]int64
	entries     map[string]model.Stats
	maxAge      time.Duration
	invalidated int

	// beforeSet runs at the start of Set, outside the lock.
	beforeSet func()
}

func newMemCache() *memCache {
	return &memCache{gens: make(map[string]int64), entries: make(map[string]model.Stats)}
}

func memKey(ownerID string, gen int64) string {
	return ownerID + ":" + strconv.FormatInt(gen, 10)
}

func (c *memCache) Get(_ context.Context, ownerID string) (*model.Stats, int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	gen := c.gens[ownerID]
	s, ok := c.entries[memKey(ownerID, gen)]
	if !ok {
		return nil, gen, false, nil
	}
	return &s, gen, true, nil
}

func (c *memCache) Set(_ context.Context, ownerID string, gen int64, s *model.Stats, maxAge time.Duration) error {
	if hook := c.beforeSet; hook != nil {
		c.beforeSet = nil
		hook()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[memKey(ownerID, gen)] = *s
	c.maxAge = maxAge
	return nil
}

func (c *memCache) Invalidate(_ context.Context, ownerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[ownerID]++
	c.invalidated++
	return nil
}

func newTestServices(t *testing.T) (*ItemService, *UserService, *memCache, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	c := newMemCache()

	items := NewItemService(database, c)
	items.Now = clock
	users := NewUserService(database, bcrypt.MinCost)
	users.Now = clock
	return items, users, c, database
}

func signupUser(t *testing.T, users *UserService, username string) *model.User {
	t.Helper()
	u, err := users.Signup(context.Background(), SignupInput{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "Password1!",
		ConfirmPassword: "Password1!",
	})
	if err != nil {
		t.Fatalf("signing up %s: %v", username, err)
	}
	return u
}

// day returns a submitted timestamp for 10:00 UTC on the given date.
func day(year int, month time.Month, d int) model.Raw {
	return model.NewRaw(strconv.FormatInt(time.Date(year, month, d, 10, 0, 0, 0, time.UTC).UnixMilli(), 10))
}

func itemInput(name, buyPrice string, buyDate model.Raw) model.ItemInput {
	return model.ItemInput{
		Name:     model.NewRaw(name),
		BuyPrice: model.NewRaw(buyPrice),
		BuyDate:  buyDate,
	}
}
