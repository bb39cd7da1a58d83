package store

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/erazemk/skinledger/internal/model"
)

const itemColumns = `id, owner_id, name, buy_price, buy_date, sold_price, sold_date, image_url,
	image IS NOT NULL, is_deleted, deleted_at, created_at, updated_at`

// sortColumns maps API sort keys to ORDER BY expressions.
var sortColumns = map[string]string{
	"name":      "name COLLATE NOCASE",
	"buyPrice":  "buy_price",
	"buyDate":   "buy_date",
	"soldPrice": "sold_price",
	"soldDate":  "sold_date",
	"createdAt": "created_at",
}

// ValidSort reports whether key can be used as ListOptions.Sort.
func ValidSort(key string) bool {
	_, ok := sortColumns[key]
	return ok
}

// ListOptions controls ordering and paging for ListItems.
type ListOptions struct {
	Sort   string
	Desc   bool
	Limit  int
	Offset int
}

var (
	minCents = decimal.NewFromInt(math.MinInt64)
	maxCents = decimal.NewFromInt(math.MaxInt64)
)

func toCents(d decimal.Decimal) (int64, error) {
	c := d.Shift(2)
	if !c.IsInteger() || c.LessThan(minCents) || c.GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s", ErrPriceRange, d)
	}
	return c.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	var buyPrice int64
	var soldPrice, soldDate, deletedAt sql.NullInt64
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &buyPrice, &item.BuyDate,
		&soldPrice, &soldDate, &item.ImageURL, &item.HasImage, &item.IsDeleted, &deletedAt,
		&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}

	item.BuyPrice = fromCents(buyPrice)
	if soldPrice.Valid {
		item.SoldPrice = decimal.NewNullDecimal(fromCents(soldPrice.Int64))
	}
	if soldDate.Valid {
		item.SoldDate = &soldDate.Int64
	}
	if deletedAt.Valid {
		item.DeletedAt = &deletedAt.Int64
	}
	return item, nil
}

func nullCents(d decimal.NullDecimal) (sql.NullInt64, error) {
	if !d.Valid {
		return sql.NullInt64{}, nil
	}
	c, err := toCents(d.Decimal)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: c, Valid: true}, nil
}

func itemCents(item *model.Item) (int64, sql.NullInt64, error) {
	buy, err := toCents(item.BuyPrice)
	if err != nil {
		return 0, sql.NullInt64{}, err
	}
	sold, err := nullCents(item.SoldPrice)
	if err != nil {
		return 0, sql.NullInt64{}, err
	}
	return buy, sold, nil
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// CreateItem inserts item. ID, OwnerID and the timestamps must already be set.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	buy, sold, err := itemCents(item)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO items (id, owner_id, name, buy_price, buy_date, sold_price, sold_date,
		                    image_url, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OwnerID, item.Name, buy, item.BuyDate,
		sold, nullInt(item.SoldDate), item.ImageURL,
		item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("creating item: %w", ErrConflict)
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, item.OwnerID, item.ID)
}

// GetItem returns a non-deleted item owned by ownerID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, ownerID, id string) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+`
		 FROM items WHERE id = ? AND owner_id = ? AND is_deleted = 0`, id, ownerID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns one page of an owner's non-deleted items.
func ListItems(ctx context.Context, db *sql.DB, ownerID string, opts ListOptions) ([]model.Item, error) {
	col, ok := sortColumns[opts.Sort]
	if !ok {
		return nil, fmt.Errorf("listing items: unknown sort field %q", opts.Sort)
	}
	dir := "ASC"
	if opts.Desc {
		dir = "DESC"
	}

	query := `SELECT ` + itemColumns + `
		FROM items WHERE owner_id = ? AND is_deleted = 0
		ORDER BY ` + col + ` ` + dir + `, id ` + dir
	args := []any{ownerID}
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListAllItems returns every non-deleted item of an owner in purchase order.
func ListAllItems(ctx context.Context, db *sql.DB, ownerID string) ([]model.Item, error) {
	return ListItems(ctx, db, ownerID, ListOptions{Sort: "buyDate"})
}

// CountItems returns the number of non-deleted items of an owner.
func CountItems(ctx context.Context, db *sql.DB, ownerID string) (int, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM items WHERE owner_id = ? AND is_deleted = 0`, ownerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting items: %w", err)
	}
	return n, nil
}

// UpdateItem writes the mutable fields of item. It reports false when the
// item no longer exists for its owner.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) (bool, error) {
	buy, sold, err := itemCents(item)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, buy_price = ?, buy_date = ?, sold_price = ?, sold_date = ?,
		                  image_url = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND is_deleted = 0`,
		item.Name, buy, item.BuyDate, sold,
		nullInt(item.SoldDate), item.ImageURL, item.UpdatedAt,
		item.ID, item.OwnerID,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	return affected(result)
}

// DeleteItem soft-deletes an item. It reports false when there was nothing to delete.
func DeleteItem(ctx context.Context, db *sql.DB, ownerID, id string, at int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET is_deleted = 1, deleted_at = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND is_deleted = 0`,
		at, at, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return affected(result)
}

// SetItemImage stores an uploaded image on an item.
func SetItemImage(ctx context.Context, db *sql.DB, ownerID, id string, image []byte, mime string, at int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = ?
		 WHERE id = ? AND owner_id = ? AND is_deleted = 0`,
		image, mime, at, id, ownerID,
	)
	if err != nil {
		return false, fmt.Errorf("setting item image: %w", err)
	}
	return affected(result)
}

// GetItemImage returns an item's image data and MIME type. Data is nil when
// the item is missing or has no image.
func GetItemImage(ctx context.Context, db *sql.DB, ownerID, id string) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items
		 WHERE id = ? AND owner_id = ? AND is_deleted = 0`, id, ownerID,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}

func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reading affected rows: %w", err)
	}
	return n > 0, nil
}
