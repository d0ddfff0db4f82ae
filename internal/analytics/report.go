package analytics

import (
	"cmp"
	"maps"
	"math"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

const (
	dayLayout  = "2006-01-02"
	topSelling = 10
)

var hundred = decimal.NewFromInt(100)

type datasets struct {
	orders    []domain.OrderSnapshot
	items     []domain.ItemSale
	products  []domain.ProductStat
	inventory []domain.Inventory
}

func summarize(period Period, data datasets) Dashboard {
	return Dashboard{
		Revenue:   revenueStats(data.orders),
		Orders:    orderStats(data.orders),
		Products:  productStats(data.items, data.products),
		Inventory: inventoryStats(data.inventory),
		Customers: customerStats(data.orders),
		Period:    PeriodDTO{Start: period.Start, End: period.End},
	}
}

func revenueStats(orders []domain.OrderSnapshot) RevenueStats {
	stats := RevenueStats{
		Total:    decimal.Zero,
		ByDay:    make(map[string]decimal.Decimal),
		AOVTrend: []DailyValue{},
	}

	paidTotal, paidCount := decimal.Zero, 0
	type daily struct {
		sum   decimal.Decimal
		count int64
	}
	paidByDay := make(map[string]daily)

	for _, o := range orders {
		day := o.CreatedAt.UTC().Format(dayLayout)
		if o.Revenue() {
			stats.Total = stats.Total.Add(o.TotalAmount)
			stats.ByDay[day] = stats.ByDay[day].Add(o.TotalAmount)
		}
		if o.Paid() {
			paidTotal = paidTotal.Add(o.TotalAmount)
			paidCount++
			d := paidByDay[day]
			d.sum = d.sum.Add(o.TotalAmount)
			d.count++
			paidByDay[day] = d
		}
	}

	stats.AverageOrderValue = average(paidTotal, int64(paidCount))
	for _, day := range slices.Sorted(maps.Keys(paidByDay)) {
		d := paidByDay[day]
		stats.AOVTrend = append(stats.AOVTrend, DailyValue{Date: day, Value: average(d.sum, d.count)})
	}
	return stats
}

func orderStats(orders []domain.OrderSnapshot) OrderStats {
	stats := OrderStats{
		Total:           len(orders),
		ByStatus:        make(map[string]int),
		ByPaymentMethod: make(map[string]int),
		ByDayOfWeek:     make(map[string]int),
		ByHourOfDay:     make(map[string]int),
	}

	var fulfillment float64
	var delivered int
	for _, o := range orders {
		switch o.Status {
		case domain.OrderStatusPending:
			stats.Pending++
		case domain.OrderStatusDelivered:
			stats.Completed++
		case domain.OrderStatusCancelled:
			stats.Cancelled++
		}

		created := o.CreatedAt.UTC()
		stats.ByStatus[string(o.Status)]++
		stats.ByPaymentMethod[string(o.PaymentMethod)]++
		stats.ByDayOfWeek[created.Weekday().String()]++
		stats.ByHourOfDay[strconv.Itoa(created.Hour())]++

		if o.Status == domain.OrderStatusDelivered && o.DeliveredAt != nil {
			fulfillment += o.DeliveredAt.Sub(o.CreatedAt).Hours() / 24
			delivered++
		}
	}

	if delivered > 0 {
		stats.AvgFulfillmentDays = math.Round(fulfillment/float64(delivered)*10) / 10
	}
	return stats
}

// productStats ranks products by units sold in the period, breaking ties by
// revenue.
func productStats(items []domain.ItemSale, products []domain.ProductStat) ProductStats {
	sales := make(map[string]*ProductSales)
	for _, item := range items {
		s, ok := sales[item.ProductID]
		if !ok {
			s = &ProductSales{ProductID: item.ProductID, Name: item.ProductName, Image: item.ProductImage, Revenue: decimal.Zero}
			sales[item.ProductID] = s
		}
		s.Quantity += item.Quantity
		s.Revenue = s.Revenue.Add(item.TotalPrice)
	}

	ranked := make([]ProductSales, 0, len(sales))
	for _, s := range sales {
		ranked = append(ranked, *s)
	}
	slices.SortFunc(ranked, func(a, b ProductSales) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.ProductID, b.ProductID)
	})
	if len(ranked) > topSelling {
		ranked = ranked[:topSelling]
	}

	rated := make([]RatedProduct, 0, len(products))
	for _, p := range products {
		rated = append(rated, RatedProduct{
			ID:           p.ID,
			Name:         p.Name,
			SalesCount:   p.SalesCount,
			Rating:       p.Rating,
			ReviewsCount: p.ReviewsCount,
		})
	}
	return ProductStats{TopSelling: ranked, TopRated: rated}
}

func inventoryStats(rows []domain.Inventory) InventoryStats {
	stats := InventoryStats{Tracked: len(rows)}
	for _, inv := range rows {
		available := inv.Available()
		switch {
		case available == 0:
			stats.OutOfStock++
		case inv.IsLowStock():
			stats.LowStock++
		}
	}
	return stats
}

// customerStats covers signed-in customers with paid orders in the period.
func customerStats(orders []domain.OrderSnapshot) CustomerStats {
	perCustomer := make(map[string]int)
	revenue := decimal.Zero
	for _, o := range orders {
		if !o.Paid() || o.UserID == nil {
			continue
		}
		perCustomer[*o.UserID]++
		revenue = revenue.Add(o.TotalAmount)
	}

	stats := CustomerStats{
		Active:             len(perCustomer),
		RepeatPurchaseRate: decimal.Zero,
		LifetimeValue:      average(revenue, int64(len(perCustomer))),
	}
	for _, n := range perCustomer {
		if n > 1 {
			stats.Repeat++
		}
	}
	if stats.Active > 0 {
		stats.RepeatPurchaseRate = decimal.NewFromInt(int64(stats.Repeat)).
			Mul(hundred).
			Div(decimal.NewFromInt(int64(stats.Active))).
			Round(2)
	}
	return stats
}

func average(sum decimal.Decimal, n int64) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(n)).Round(2)
}
