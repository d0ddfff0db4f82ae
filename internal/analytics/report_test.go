package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// Friday 1 March 2024.
var day1 = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func sampleOrders() []domain.OrderSnapshot {
	day2 := day1.AddDate(0, 0, 1)
	return []domain.OrderSnapshot{
		{UserID: ptr("u1"), Status: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusPaid, PaymentMethod: domain.PaymentCard, TotalAmount: dec("100"), CreatedAt: day1, DeliveredAt: ptr(day1.Add(72 * time.Hour))},
		{UserID: ptr("u1"), Status: domain.OrderStatusShipped, PaymentStatus: domain.PaymentStatusPaid, PaymentMethod: domain.PaymentCard, TotalAmount: dec("50"), CreatedAt: day2},
		{UserID: ptr("u2"), Status: domain.OrderStatusDelivered, PaymentStatus: domain.PaymentStatusPaid, PaymentMethod: domain.PaymentUPI, TotalAmount: dec("30"), CreatedAt: day2, DeliveredAt: ptr(day2.Add(24 * time.Hour))},
		{Status: domain.OrderStatusPending, PaymentStatus: domain.PaymentStatusPending, PaymentMethod: domain.PaymentCOD, TotalAmount: dec("20"), CreatedAt: day2},
		{UserID: ptr("u3"), Status: domain.OrderStatusCancelled, PaymentStatus: domain.PaymentStatusPaid, PaymentMethod: domain.PaymentCard, TotalAmount: dec("70"), CreatedAt: day1},
	}
}

func TestRevenueStats(t *testing.T) {
	stats := revenueStats(sampleOrders())

	assert.True(t, stats.Total.Equal(dec("180")), "shipped and delivered only, got %s", stats.Total)
	require.Len(t, stats.ByDay, 2)
	assert.True(t, stats.ByDay["2024-03-01"].Equal(dec("100")))
	assert.True(t, stats.ByDay["2024-03-02"].Equal(dec("80")))
	assert.True(t, stats.AverageOrderValue.Equal(dec("60")), "paid and not cancelled, got %s", stats.AverageOrderValue)

	require.Len(t, stats.AOVTrend, 2)
	assert.Equal(t, "2024-03-01", stats.AOVTrend[0].Date)
	assert.True(t, stats.AOVTrend[0].Value.Equal(dec("100")))
	assert.True(t, stats.AOVTrend[1].Value.Equal(dec("40")))
}

func TestRevenueStats_Empty(t *testing.T) {
	stats := revenueStats(nil)
	assert.True(t, stats.Total.IsZero())
	assert.True(t, stats.AverageOrderValue.IsZero())
	assert.NotNil(t, stats.AOVTrend)
}

func TestOrderStats(t *testing.T) {
	stats := orderStats(sampleOrders())

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 2, stats.Completed)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, map[string]int{"card": 3, "upi": 1, "cod": 1}, stats.ByPaymentMethod)
	assert.Equal(t, map[string]int{"Friday": 2, "Saturday": 3}, stats.ByDayOfWeek)
	assert.Equal(t, 5, stats.ByHourOfDay["9"])
	assert.InDelta(t, 2.0, stats.AvgFulfillmentDays, 0.001)
}

func TestProductStats(t *testing.T) {
	items := []domain.ItemSale{
		{ProductID: "mug", ProductName: "Mug", Quantity: 2, TotalPrice: dec("20")},
		{ProductID: "tee", ProductName: "Tee", Quantity: 3, TotalPrice: dec("60")},
		{ProductID: "mug", ProductName: "Mug", Quantity: 2, TotalPrice: dec("20")},
		{ProductID: "cap", ProductName: "Cap", Quantity: 3, TotalPrice: dec("90")},
	}
	for i := range 12 {
		items = append(items, domain.ItemSale{ProductID: "p" + string(rune('a'+i)), Quantity: 1, TotalPrice: dec("1")})
	}

	stats := productStats(items, []domain.ProductStat{{ID: "mug", Name: "Mug", SalesCount: 40}})

	require.Len(t, stats.TopSelling, 10)
	assert.Equal(t, "mug", stats.TopSelling[0].ProductID)
	assert.Equal(t, 4, stats.TopSelling[0].Quantity)
	assert.True(t, stats.TopSelling[0].Revenue.Equal(dec("40")))
	assert.Equal(t, "cap", stats.TopSelling[1].ProductID, "ties broken by revenue")
	assert.Equal(t, "tee", stats.TopSelling[2].ProductID)
	assert.Equal(t, "pa", stats.TopSelling[3].ProductID)

	require.Len(t, stats.TopRated, 1)
	assert.Equal(t, 40, stats.TopRated[0].SalesCount)
}

func TestInventoryStats(t *testing.T) {
	rows := []domain.Inventory{
		{Quantity: 50, LowStockThreshold: 10},
		{Quantity: 12, ReservedQuantity: 4, LowStockThreshold: 10},
		{Quantity: 5, ReservedQuantity: 5, LowStockThreshold: 10},
		{Quantity: 0, LowStockThreshold: 0},
	}

	stats := inventoryStats(rows)
	assert.Equal(t, InventoryStats{Tracked: 4, LowStock: 1, OutOfStock: 2}, stats)
}

func TestCustomerStats(t *testing.T) {
	stats := customerStats(sampleOrders())

	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Repeat)
	assert.True(t, stats.RepeatPurchaseRate.Equal(dec("50")))
	assert.True(t, stats.LifetimeValue.Equal(dec("90")), "got %s", stats.LifetimeValue)
}
