package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/skinledger/internal/model"
)

// Item field names as used in requests and error messages.
const (
	FieldName      = "name"
	FieldBuyPrice  = "buyPrice"
	FieldBuyDate   = "buyDate"
	FieldSoldPrice = "soldPrice"
	FieldSoldDate  = "soldDate"
	FieldImageURL  = "imageUrl"
)

// MaxPrice is the largest accepted amount. Prices are stored as integer
// cents, so anything above this cannot be kept exactly.
var MaxPrice = decimal.RequireFromString("999999999999999.99")

var (
	namePattern      = regexp.MustCompile(`^[a-zA-Z0-9! |★壱()\-™]+$`)
	pricePattern     = regexp.MustCompile(`^-?\d+(\.\d{1,2})?$`)
	timestampPattern = regexp.MustCompile(`^\d+$`)
	imageURLPattern  = regexp.MustCompile(`^https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)
)

var fieldLabels = map[string]string{
	FieldBuyPrice:  "Buy price",
	FieldBuyDate:   "Buy date",
	FieldSoldPrice: "Sold price",
	FieldSoldDate:  "Sold date",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

// Name trims and checks an item name against the allowed character set.
func Name(raw model.Raw) (string, error) {
	name := strings.TrimSpace(raw.Value)
	if !raw.Set || name == "" {
		return "", fieldError(FieldName, "Item name is required")
	}
	if !namePattern.MatchString(name) {
		return "", fieldError(FieldName, "Item name contains invalid characters")
	}
	return name, nil
}

// Price parses a non-negative amount with at most two fractional digits.
// An absent value is an error only when required is set.
func Price(raw model.Raw, field string, required bool) (decimal.NullDecimal, error) {
	if !raw.Present() {
		if required {
			return decimal.NullDecimal{}, fieldError(field, label(field)+" is required")
		}
		return decimal.NullDecimal{}, nil
	}

	s := strings.TrimSpace(raw.Value)
	if !pricePattern.MatchString(s) {
		return decimal.NullDecimal{}, fieldError(field, label(field)+" must be a valid number with up to 2 decimal places")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fieldError(field, label(field)+" must be a valid number with up to 2 decimal places")
	}
	if d.IsNegative() {
		return decimal.NullDecimal{}, fieldError(field, label(field)+" must be 0 or greater")
	}
	if d.GreaterThan(MaxPrice) {
		return decimal.NullDecimal{}, fieldError(field, label(field)+" must be a valid number no greater than "+MaxPrice.String())
	}
	return decimal.NewNullDecimal(d), nil
}

// Timestamp parses an epoch-millisecond integer. An absent value is an error
// only when required is set.
func Timestamp(raw model.Raw, field string, required bool) (*int64, error) {
	if !raw.Present() {
		if required {
			return nil, fieldError(field, label(field)+" is required")
		}
		return nil, nil
	}

	s := strings.TrimSpace(raw.Value)
	if !timestampPattern.MatchString(s) {
		return nil, fieldError(field, label(field)+" must be a valid date")
	}

	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fieldError(field, label(field)+" must be a valid date")
	}
	return &ts, nil
}

// ImageURL accepts an empty value or an http(s) URL.
func ImageURL(raw model.Raw) (string, error) {
	u := strings.TrimSpace(raw.Value)
	if u == "" {
		return "", nil
	}
	if !imageURLPattern.MatchString(u) {
		return "", fieldError(FieldImageURL, "Please enter a valid image URL")
	}
	return u, nil
}

// DeriveSoldFields fills in whichever sold field is missing. A sold date
// without a price records a sale at 0. A positive price without a date is
// dated now. A zero price with no date means the item is not sold.
func DeriveSoldFields(soldDate *int64, soldPrice decimal.NullDecimal, now time.Time) (*int64, decimal.NullDecimal) {
	switch {
	case soldDate != nil && (!soldPrice.Valid || soldPrice.Decimal.IsZero()):
		return soldDate, decimal.NewNullDecimal(decimal.Zero)
	case soldDate == nil && soldPrice.Valid && soldPrice.Decimal.IsPositive():
		ms := now.UnixMilli()
		return &ms, soldPrice
	case soldDate == nil:
		return nil, decimal.NullDecimal{}
	}
	return soldDate, soldPrice
}

// TemporalOrder rejects a sold date earlier than the buy date.
func TemporalOrder(buyDate int64, soldDate *int64) error {
	if soldDate != nil && abs(*soldDate) < abs(buyDate) {
		return fieldError(FieldSoldDate, "Sold date cannot be before buy date")
	}
	return nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// NewItem validates a create request. Checks run in a fixed order and the
// first failure is returned.
func NewItem(in model.ItemInput, now time.Time) (*model.Item, error) {
	name, err := Name(in.Name)
	if err != nil {
		return nil, err
	}
	buyPrice, err := Price(in.BuyPrice, FieldBuyPrice, true)
	if err != nil {
		return nil, err
	}
	buyDate, err := Timestamp(in.BuyDate, FieldBuyDate, true)
	if err != nil {
		return nil, err
	}
	soldPrice, err := Price(in.SoldPrice, FieldSoldPrice, false)
	if err != nil {
		return nil, err
	}
	soldDate, err := Timestamp(in.SoldDate, FieldSoldDate, false)
	if err != nil {
		return nil, err
	}

	soldDate, soldPrice = DeriveSoldFields(soldDate, soldPrice, now)
	if err := TemporalOrder(*buyDate, soldDate); err != nil {
		return nil, err
	}

	imageURL, err := ImageURL(in.ImageURL)
	if err != nil {
		return nil, err
	}

	return &model.Item{
		Name:      name,
		BuyPrice:  buyPrice.Decimal,
		BuyDate:   *buyDate,
		SoldPrice: soldPrice,
		SoldDate:  soldDate,
		ImageURL:  imageURL,
	}, nil
}

// MergeItem validates the supplied fields of an update and returns existing
// with them applied. Fields that were not supplied keep their stored values,
// and the buy/sold ordering is checked against the merged result. An empty
// soldPrice or soldDate marks the item unsold.
func MergeItem(existing model.Item, in model.ItemInput, now time.Time) (*model.Item, error) {
	merged := existing

	if in.Name.Set {
		name, err := Name(in.Name)
		if err != nil {
			return nil, err
		}
		merged.Name = name
	}
	if in.BuyPrice.Set {
		buyPrice, err := Price(in.BuyPrice, FieldBuyPrice, true)
		if err != nil {
			return nil, err
		}
		merged.BuyPrice = buyPrice.Decimal
	}
	if in.BuyDate.Set {
		buyDate, err := Timestamp(in.BuyDate, FieldBuyDate, true)
		if err != nil {
			return nil, err
		}
		merged.BuyDate = *buyDate
	}

	if in.SoldPrice.Blank() || in.SoldDate.Blank() {
		if err := clearSold(in); err != nil {
			return nil, err
		}
		merged.SoldPrice = decimal.NullDecimal{}
		merged.SoldDate = nil
	}

	soldSupplied := in.SoldPrice.Present() || in.SoldDate.Present()
	if in.SoldPrice.Present() {
		soldPrice, err := Price(in.SoldPrice, FieldSoldPrice, false)
		if err != nil {
			return nil, err
		}
		merged.SoldPrice = soldPrice
	}
	if in.SoldDate.Present() {
		soldDate, err := Timestamp(in.SoldDate, FieldSoldDate, false)
		if err != nil {
			return nil, err
		}
		merged.SoldDate = soldDate
	}
	if soldSupplied {
		merged.SoldDate, merged.SoldPrice = DeriveSoldFields(merged.SoldDate, merged.SoldPrice, now)
	}

	if err := TemporalOrder(merged.BuyDate, merged.SoldDate); err != nil {
		return nil, err
	}

	if in.ImageURL.Set {
		imageURL, err := ImageURL(in.ImageURL)
		if err != nil {
			return nil, err
		}
		merged.ImageURL = imageURL
	}

	return &merged, nil
}

// clearSold rejects an update that empties one sold field while setting the other.
func clearSold(in model.ItemInput) error {
	const msg = "Sold price and sold date must be cleared together"
	switch {
	case in.SoldPrice.Present():
		return fieldError(FieldSoldPrice, msg)
	case in.SoldDate.Present():
		return fieldError(FieldSoldDate, msg)
	}
	return nil
}
