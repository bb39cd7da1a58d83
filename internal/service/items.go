package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/skinledger/internal/cache"
	"github.com/erazemk/skinledger/internal/imaging"
	"github.com/erazemk/skinledger/internal/metrics"
	"github.com/erazemk/skinledger/internal/model"
	"github.com/erazemk/skinledger/internal/stats"
	"github.com/erazemk/skinledger/internal/store"
	"github.com/erazemk/skinledger/internal/validate"
)

// Listing limits and defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 50
	DefaultSort  = "createdAt"
)

var errItemNotFound = failure(ErrNotFound, "Item not found")

// StatsCache keeps computed stats between writes. Get reports the owner's
// current generation and Set stores under the generation the snapshot was
// computed at. Invalidate starts a new generation, so a snapshot computed
// before a write is never returned after it.
type StatsCache interface {
	Get(ctx context.Context, ownerID string) (*model.Stats, int64, bool, error)
	Set(ctx context.Context, ownerID string, gen int64, s *model.Stats, maxAge time.Duration) error
	Invalidate(ctx context.Context, ownerID string) error
}

// ListQuery selects one page of an owner's items.
type ListQuery struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// ParseListQuery reads paging and sorting query parameters. Empty values
// take their defaults.
func ParseListQuery(page, limit, sort, order string) (ListQuery, error) {
	q := ListQuery{Page: DefaultPage, Limit: DefaultLimit, Sort: DefaultSort, Order: "desc"}

	if page = strings.TrimSpace(page); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return q, rejected(&validate.FieldError{Field: "page", Message: "Page must be a whole number"})
		}
		q.Page = n
	}
	if limit = strings.TrimSpace(limit); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return q, rejected(&validate.FieldError{Field: "limit", Message: "Limit must be a whole number"})
		}
		q.Limit = n
	}
	if sort != "" {
		q.Sort = sort
	}
	if order != "" {
		q.Order = strings.ToLower(order)
	}
	return q, rejected(q.check())
}

func (q ListQuery) check() error {
	switch {
	case q.Page < 1:
		return &validate.FieldError{Field: "page", Message: "Page must be 1 or greater"}
	case q.Limit < 1 || q.Limit > MaxLimit:
		return &validate.FieldError{Field: "limit", Message: fmt.Sprintf("Limit must be between 1 and %d", MaxLimit)}
	case !store.ValidSort(q.Sort):
		return &validate.FieldError{Field: "sort", Message: "Unknown sort field"}
	case q.Order != "asc" && q.Order != "desc":
		return &validate.FieldError{Field: "order", Message: "Order must be asc or desc"}
	}
	return nil
}

// ItemService manages an owner's items.
type ItemService struct {
	DB    *sql.DB
	Cache StatsCache
	Now   func() time.Time
}

// NewItemService returns a service using the wall clock. A nil cache
// disables stats caching.
func NewItemService(db *sql.DB, c StatsCache) *ItemService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ItemService{DB: db, Cache: c, Now: time.Now}
}

// Create validates input and stores a new item for ownerID.
func (s *ItemService) Create(ctx context.Context, ownerID string, in model.ItemInput) (*model.Item, error) {
	now := s.Now()
	item, err := validate.NewItem(in, now)
	if err != nil {
		return nil, rejected(err)
	}

	item.ID = uuid.NewString()
	item.OwnerID = ownerID
	item.CreatedAt = now.UnixMilli()
	item.UpdatedAt = item.CreatedAt

	created, err := store.CreateItem(ctx, s.DB, item)
	if errors.Is(err, store.ErrConflict) {
		return nil, fmt.Errorf("creating item: %w", ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	metrics.ItemWrites.WithLabelValues("create").Inc()
	return created, nil
}

// List returns one page of items together with its pagination metadata.
func (s *ItemService) List(ctx context.Context, ownerID string, q ListQuery) ([]model.Item, model.Pagination, error) {
	if err := q.check(); err != nil {
		return nil, model.Pagination{}, err
	}

	total, err := store.CountItems(ctx, s.DB, ownerID)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	items, err := store.ListItems(ctx, s.DB, ownerID, store.ListOptions{
		Sort:   q.Sort,
		Desc:   q.Order == "desc",
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, model.Pagination{}, err
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, model.NewPagination(total, q.Page, q.Limit), nil
}

// Get returns one of the owner's items. Items of other owners are reported
// as missing.
func (s *ItemService) Get(ctx context.Context, ownerID, id string) (*model.Item, error) {
	if !validID(id) {
		return nil, errItemNotFound
	}
	item, err := store.GetItem(ctx, s.DB, ownerID, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, errItemNotFound
	}
	return item, nil
}

// Update applies the supplied fields of input to an existing item.
func (s *ItemService) Update(ctx context.Context, ownerID, id string, in model.ItemInput) (*model.Item, error) {
	existing, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	merged, err := validate.MergeItem(*existing, in, now)
	if err != nil {
		return nil, rejected(err)
	}
	merged.UpdatedAt = now.UnixMilli()

	ok, err := store.UpdateItem(ctx, s.DB, merged)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errItemNotFound
	}

	s.invalidate(ctx, ownerID)
	metrics.ItemWrites.WithLabelValues("update").Inc()
	return s.Get(ctx, ownerID, id)
}

// Delete soft-deletes an item. Deleting it again reports ErrNotFound.
func (s *ItemService) Delete(ctx context.Context, ownerID, id string) error {
	if !validID(id) {
		return errItemNotFound
	}
	ok, err := store.DeleteItem(ctx, s.DB, ownerID, id, s.Now().UnixMilli())
	if err != nil {
		return err
	}
	if !ok {
		return errItemNotFound
	}

	s.invalidate(ctx, ownerID)
	metrics.ItemWrites.WithLabelValues("delete").Inc()
	return nil
}

// Stats summarizes all of the owner's items, using the cache when it has a
// snapshot for the current generation. Snapshots do not outlive the month
// they were computed in.
func (s *ItemService) Stats(ctx context.Context, ownerID string) (*model.Stats, error) {
	cached, gen, ok, cacheErr := s.Cache.Get(ctx, ownerID)
	switch {
	case cacheErr != nil:
		metrics.StatsCacheLookups.WithLabelValues("error").Inc()
		slog.Warn("stats cache read failed", "owner", ownerID, "error", cacheErr)
	case ok:
		metrics.StatsCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.StatsCacheLookups.WithLabelValues("miss").Inc()
	}

	items, err := store.ListAllItems(ctx, s.DB, ownerID)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	result := stats.Compute(items, now)

	// Without a known generation the snapshot could land under a stale one.
	if cacheErr == nil {
		if err := s.Cache.Set(ctx, ownerID, gen, &result, untilNextMonth(now)); err != nil {
			slog.Warn("stats cache write failed", "owner", ownerID, "error", err)
		}
	}
	return &result, nil
}

func untilNextMonth(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month()+1, 1, 0, 0, 0, 0, now.Location())
	return next.Sub(now)
}

// SetImage processes an uploaded picture and attaches it to an item.
func (s *ItemService) SetImage(ctx context.Context, ownerID, id string, r io.Reader) (*model.Item, error) {
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return nil, err
	}

	pic, err := imaging.Process(r)
	if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
		return nil, rejected(&validate.FieldError{Field: "image", Message: err.Error()})
	}
	if err != nil {
		return nil, err
	}

	ok, err := store.SetItemImage(ctx, s.DB, ownerID, id, pic.Data, pic.MIME, s.Now().UnixMilli())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errItemNotFound
	}

	metrics.ItemWrites.WithLabelValues("image").Inc()
	return s.Get(ctx, ownerID, id)
}

// Image returns an item's stored picture and its MIME type.
func (s *ItemService) Image(ctx context.Context, ownerID, id string) ([]byte, string, error) {
	if !validID(id) {
		return nil, "", errItemNotFound
	}
	data, mime, err := store.GetItemImage(ctx, s.DB, ownerID, id)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		return nil, "", errItemNotFound
	}
	return data, mime, nil
}

func (s *ItemService) invalidate(ctx context.Context, ownerID string) {
	if err := s.Cache.Invalidate(ctx, ownerID); err != nil {
		slog.Warn("stats cache invalidation failed", "owner", ownerID, "error", err)
	}
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// rejected counts a validation failure by field and passes err through.
// A nil err stays nil.
func rejected(err error) error {
	var fe *validate.FieldError
	if errors.As(err, &fe) {
		metrics.ValidationFailures.WithLabelValues(fe.Field).Inc()
	}
	return err
}
