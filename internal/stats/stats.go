// Package stats computes portfolio figures over a user's item collection.
//
// Compute is a single pass over items already loaded from storage. It keeps
// no state between calls, so callers rerun it whenever the collection changes.
package stats

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/skinledger/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Compute returns the statistics snapshot for items as of now. Month
// boundaries are taken in now's location. Items must already exclude
// soft-deleted records.
func Compute(items []model.Item, now time.Time) model.Stats {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).UnixMilli() - 1

	var (
		sold         int
		roiSum       decimal.Decimal
		roiCount     int64
		buySum       decimal.Decimal
		sellSum      decimal.Decimal
		totalProfit  decimal.Decimal
		best         *model.Item
		bestProfit   = decimal.Zero
		boughtThisMo int
		monthly      = make([]decimal.Decimal, now.Month())
	)

	for i := range items {
		item := &items[i]

		if item.BuyDate >= monthStart.UnixMilli() && item.BuyDate <= monthEnd {
			boughtThisMo++
		}

		if !item.Sold() {
			continue
		}
		sold++

		profit := item.Profit()
		totalProfit = totalProfit.Add(profit)
		buySum = buySum.Add(item.BuyPrice)
		sellSum = sellSum.Add(item.SoldPrice.Decimal)

		// A zero buy price has no defined ROI; such sales are left out of the average.
		if item.BuyPrice.IsPositive() {
			roiSum = roiSum.Add(profit.Div(item.BuyPrice).Mul(hundred))
			roiCount++
		}

		if profit.GreaterThan(bestProfit) {
			best = item
			bestProfit = profit
		}

		soldAt := time.UnixMilli(*item.SoldDate).In(now.Location())
		if soldAt.Year() == now.Year() && soldAt.Month() <= now.Month() {
			m := soldAt.Month() - 1
			monthly[m] = monthly[m].Add(profit)
		}
	}

	s := model.Stats{
		AverageROI:              FormatPercent(average(roiSum, roiCount)),
		ItemsPurchasedThisMonth: boughtThisMo,
		MonthlyData:             make([]model.MonthlyProfit, 0, len(monthly)),
		TotalItems:              len(items),
		SoldItems:               sold,
		TotalProfit:             totalProfit.Round(2),
		AveragePrices: model.AveragePrices{
			Buy:  average(buySum, int64(sold)).Round(2),
			Sell: average(sellSum, int64(sold)).Round(2),
		},
	}

	if best != nil {
		s.HighestProfitItem = &model.ProfitItem{
			ID:       best.ID,
			ItemName: best.Name,
			Profit:   bestProfit.Round(2),
		}
	}

	for i, v := range monthly {
		s.MonthlyData = append(s.MonthlyData, model.MonthlyProfit{
			Name:  time.Month(i + 1).String()[:3],
			Value: v.Round(2),
		})
	}

	return s
}

func average(sum decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(n))
}

// FormatPercent renders d rounded to two places with a percent sign, e.g. "20%" or "-12.5%".
func FormatPercent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}
