package stats

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/skinledger/internal/model"
)

var now = time.Date(2026, time.April, 20, 15, 0, 0, 0, time.UTC)

func ms(t time.Time) int64 { return t.UnixMilli() }

func item(name, buy string, buyDate time.Time, sold string, soldDate *time.Time) model.Item {
	it := model.Item{
		ID:       name,
		Name:     name,
		BuyPrice: decimal.RequireFromString(buy),
		BuyDate:  ms(buyDate),
	}
	if soldDate != nil {
		at := ms(*soldDate)
		it.SoldDate = &at
		it.SoldPrice = decimal.NewNullDecimal(decimal.RequireFromString(sold))
	}
	return it
}

func at(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 10, 0, 0, 0, time.UTC)
	return &t
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeEmpty(t *testing.T) {
	s := Compute(nil, now)

	if s.AverageROI != "0%" {
		t.Errorf("AverageROI = %q, want 0%%", s.AverageROI)
	}
	if !s.AveragePrices.Buy.IsZero() || !s.AveragePrices.Sell.IsZero() {
		t.Errorf("AveragePrices = %+v, want zeros", s.AveragePrices)
	}
	if s.HighestProfitItem != nil {
		t.Errorf("HighestProfitItem = %+v, want nil", s.HighestProfitItem)
	}
	if s.ItemsPurchasedThisMonth != 0 {
		t.Errorf("ItemsPurchasedThisMonth = %d, want 0", s.ItemsPurchasedThisMonth)
	}
	if len(s.MonthlyData) != 4 {
		t.Fatalf("expected 4 monthly points (Jan-Apr), got %d", len(s.MonthlyData))
	}
	for _, p := range s.MonthlyData {
		if !p.Value.IsZero() {
			t.Errorf("month %s = %s, want 0", p.Name, p.Value)
		}
	}
}

func TestComputeUnsoldOnly(t *testing.T) {
	items := []model.Item{
		item("A", "10", *at(2026, time.April, 2), "", nil),
		item("B", "20", *at(2026, time.January, 5), "", nil),
	}
	s := Compute(items, now)

	if s.AverageROI != "0%" {
		t.Errorf("AverageROI = %q, want 0%%", s.AverageROI)
	}
	if s.HighestProfitItem != nil {
		t.Errorf("expected no highest profit item, got %+v", s.HighestProfitItem)
	}
	if s.ItemsPurchasedThisMonth != 1 {
		t.Errorf("ItemsPurchasedThisMonth = %d, want 1", s.ItemsPurchasedThisMonth)
	}
	if s.TotalItems != 2 || s.SoldItems != 0 {
		t.Errorf("TotalItems/SoldItems = %d/%d, want 2/0", s.TotalItems, s.SoldItems)
	}
}

func TestComputeScenario(t *testing.T) {
	items := []model.Item{
		item("Winner", "100", *at(2026, time.January, 3), "150", at(2026, time.February, 10)),
		item("Loser", "200", *at(2026, time.January, 4), "180", at(2026, time.April, 1)),
	}
	s := Compute(items, now)

	if s.AverageROI != "20%" {
		t.Errorf("AverageROI = %q, want 20%%", s.AverageROI)
	}
	if !s.AveragePrices.Buy.Equal(dec("150")) {
		t.Errorf("average buy = %s, want 150", s.AveragePrices.Buy)
	}
	if !s.AveragePrices.Sell.Equal(dec("165")) {
		t.Errorf("average sell = %s, want 165", s.AveragePrices.Sell)
	}
	if s.HighestProfitItem == nil {
		t.Fatal("expected highest profit item")
	}
	if s.HighestProfitItem.ItemName != "Winner" || !s.HighestProfitItem.Profit.Equal(dec("50")) {
		t.Errorf("HighestProfitItem = %+v, want Winner/50", s.HighestProfitItem)
	}
	if !s.TotalProfit.Equal(dec("30")) {
		t.Errorf("TotalProfit = %s, want 30", s.TotalProfit)
	}

	want := map[string]string{"Jan": "0", "Feb": "50", "Mar": "0", "Apr": "-20"}
	for _, p := range s.MonthlyData {
		if !p.Value.Equal(dec(want[p.Name])) {
			t.Errorf("month %s = %s, want %s", p.Name, p.Value, want[p.Name])
		}
	}
	if s.MonthlyData[0].Name != "Jan" || s.MonthlyData[3].Name != "Apr" {
		t.Errorf("monthly data out of order: %+v", s.MonthlyData)
	}
}

func TestComputeAllLosses(t *testing.T) {
	items := []model.Item{
		item("A", "100", *at(2026, time.January, 1), "90", at(2026, time.January, 2)),
		item("B", "50", *at(2026, time.January, 1), "50", at(2026, time.January, 2)),
	}
	s := Compute(items, now)

	if s.HighestProfitItem != nil {
		t.Errorf("expected no highest profit item for loss/break-even portfolio, got %+v", s.HighestProfitItem)
	}
	if s.AverageROI != "-5%" {
		t.Errorf("AverageROI = %q, want -5%%", s.AverageROI)
	}
}

func TestComputeZeroBuyPriceSkippedFromROI(t *testing.T) {
	items := []model.Item{
		item("Gift", "0", *at(2026, time.March, 1), "30", at(2026, time.March, 2)),
		item("Flip", "10", *at(2026, time.March, 1), "11", at(2026, time.March, 2)),
	}
	s := Compute(items, now)

	if s.AverageROI != "10%" {
		t.Errorf("AverageROI = %q, want 10%%", s.AverageROI)
	}
	if s.HighestProfitItem == nil || s.HighestProfitItem.ItemName != "Gift" {
		t.Errorf("expected Gift as highest profit item, got %+v", s.HighestProfitItem)
	}
	if !s.AveragePrices.Buy.Equal(dec("5")) {
		t.Errorf("average buy = %s, want 5", s.AveragePrices.Buy)
	}
}

func TestComputeRounding(t *testing.T) {
	items := []model.Item{
		item("A", "3", *at(2026, time.January, 1), "4", at(2026, time.January, 2)),
		item("B", "3", *at(2026, time.January, 1), "4", at(2026, time.January, 2)),
		item("C", "3", *at(2026, time.January, 1), "3.01", at(2026, time.January, 2)),
	}
	s := Compute(items, now)

	// (33.333.. + 33.333.. + 0.333..) / 3 = 22.333..
	if s.AverageROI != "22.33%" {
		t.Errorf("AverageROI = %q, want 22.33%%", s.AverageROI)
	}
	if !s.AveragePrices.Sell.Equal(dec("3.67")) {
		t.Errorf("average sell = %s, want 3.67", s.AveragePrices.Sell)
	}
}

func TestComputeMonthBoundaries(t *testing.T) {
	start := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC).Add(-time.Millisecond)

	items := []model.Item{
		item("first instant", "1", start, "", nil),
		item("last instant", "1", end, "", nil),
		item("before", "1", start.Add(-time.Millisecond), "", nil),
		item("after", "1", end.Add(time.Millisecond), "", nil),
	}
	s := Compute(items, now)

	if s.ItemsPurchasedThisMonth != 2 {
		t.Errorf("ItemsPurchasedThisMonth = %d, want 2", s.ItemsPurchasedThisMonth)
	}
}

func TestComputeIgnoresOtherYearsAndFutureMonths(t *testing.T) {
	items := []model.Item{
		item("Last year", "10", *at(2025, time.February, 1), "20", at(2025, time.February, 2)),
		item("Future", "10", *at(2026, time.April, 1), "30", at(2026, time.June, 2)),
	}
	s := Compute(items, now)

	for _, p := range s.MonthlyData {
		if !p.Value.IsZero() {
			t.Errorf("month %s = %s, want 0", p.Name, p.Value)
		}
	}
	// Both still count towards the all-time figures.
	if s.SoldItems != 2 {
		t.Errorf("SoldItems = %d, want 2", s.SoldItems)
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0%"},
		{"20", "20%"},
		{"12.5", "12.5%"},
		{"-3.14159", "-3.14%"},
		{"99.999", "100%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(dec(tt.in)); got != tt.want {
			t.Errorf("FormatPercent(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
