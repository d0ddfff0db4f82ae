package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardResponse struct {
	Analytics Dashboard `json:"analytics"`
}

type Dashboard struct {
	Revenue   RevenueStats   `json:"revenue"`
	Orders    OrderStats     `json:"orders"`
	Products  ProductStats   `json:"products"`
	Inventory InventoryStats `json:"inventory"`
	Customers CustomerStats  `json:"customers"`
	Period    PeriodDTO      `json:"period"`
}

type RevenueStats struct {
	Total             decimal.Decimal            `json:"total"`
	ByDay             map[string]decimal.Decimal `json:"byDay"`
	AverageOrderValue decimal.Decimal            `json:"averageOrderValue"`
	AOVTrend          []DailyValue               `json:"aovTrend"`
}

type DailyValue struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"aov"`
}

type OrderStats struct {
	Total              int            `json:"total"`
	Pending            int            `json:"pending"`
	Completed          int            `json:"completed"`
	Cancelled          int            `json:"cancelled"`
	ByStatus           map[string]int `json:"byStatus"`
	ByPaymentMethod    map[string]int `json:"byPaymentMethod"`
	ByDayOfWeek        map[string]int `json:"byDayOfWeek"`
	ByHourOfDay        map[string]int `json:"byHourOfDay"`
	AvgFulfillmentDays float64        `json:"avgFulfillmentDays"`
}

type ProductStats struct {
	TopSelling []ProductSales `json:"topSelling"`
	TopRated   []RatedProduct `json:"topRated"`
}

type RatedProduct struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	SalesCount   int             `json:"salesCount"`
	Rating       decimal.Decimal `json:"rating"`
	ReviewsCount int             `json:"reviewsCount"`
}

type ProductSales struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     *string         `json:"image"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type InventoryStats struct {
	Tracked    int `json:"tracked"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

type CustomerStats struct {
	Active             int             `json:"active"`
	Repeat             int             `json:"repeat"`
	RepeatPurchaseRate decimal.Decimal `json:"repeatPurchaseRate"`
	LifetimeValue      decimal.Decimal `json:"lifetimeValue"`
}

type PeriodDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
