package model

import "github.com/shopspring/decimal"

// Stats is a snapshot of aggregate figures over one user's items.
type Stats struct {
	AverageROI              string          `json:"averageROI"`
	AveragePrices           AveragePrices   `json:"averagePrices"`
	HighestProfitItem       *ProfitItem     `json:"highestProfitItem"`
	ItemsPurchasedThisMonth int             `json:"itemsPurchasedThisMonth"`
	MonthlyData             []MonthlyProfit `json:"monthlyData"`
	TotalItems              int             `json:"totalItems"`
	SoldItems               int             `json:"soldItems"`
	TotalProfit             decimal.Decimal `json:"totalProfit"`
}

// AveragePrices holds mean buy and sell prices over sold items.
type AveragePrices struct {
	Buy  decimal.Decimal `json:"buy"`
	Sell decimal.Decimal `json:"sell"`
}

// ProfitItem identifies the single most profitable sale.
type ProfitItem struct {
	ID       string          `json:"id"`
	ItemName string          `json:"itemName"`
	Profit   decimal.Decimal `json:"profit"`
}

// MonthlyProfit is the realised profit for one calendar month.
type MonthlyProfit struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}
