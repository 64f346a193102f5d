package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
)

// 2024-03-14 是周四
var statsNow = time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC)

func (f *fixture) addOrderAt(t *testing.T, status model.OrderStatus, total string, at time.Time) {
	t.Helper()
	o := &model.Order{
		ID:            uuid.New().String(),
		UserID:        f.user.ID,
		LocationID:    testLocation,
		AddressID:     f.address.ID,
		TotalPrice:    dec(total),
		PaymentMethod: model.PaymentCOD,
		Status:        status,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
	require.NoError(t, repository.NewOrderRepository(f.db).Create(f.ctx, o))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, PeriodMonthly, p)
	p, err = ParsePeriod("weekly")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)
	_, err = ParsePeriod("hourly")
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRevenue_WeeklyBucketsStartMonday(t *testing.T) {
	f := newFixture(t)
	f.addOrderAt(t, model.OrderStatusDelivered, "100", day(2024, 3, 11)) // 周一
	f.addOrderAt(t, model.OrderStatusDelivered, "50.25", day(2024, 3, 13))
	f.addOrderAt(t, model.OrderStatusDelivered, "30", day(2024, 3, 10)) // 周日，归上一周
	f.addOrderAt(t, model.OrderStatusPending, "999", day(2024, 3, 12))
	f.addOrderAt(t, model.OrderStatusCancelled, "999", day(2024, 3, 12))
	f.addOrderAt(t, model.OrderStatusDelivered, "7", day(2023, 6, 1)) // 窗口外

	svc := newStatsService(f.db, 10, func() time.Time { return statsNow })
	points, err := svc.Revenue(f.ctx, PeriodWeekly)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "2024-03-04", points[0].Date)
	assert.True(t, points[0].Total.Equal(dec("30")))
	assert.Equal(t, "2024-03-11", points[1].Date)
	assert.True(t, points[1].Total.Equal(dec("150.25")), points[1].Total.String())
}

func TestOrderCounts_Periods(t *testing.T) {
	f := newFixture(t)
	f.addOrderAt(t, model.OrderStatusPending, "10", day(2024, 3, 13))
	f.addOrderAt(t, model.OrderStatusCancelled, "10", day(2024, 3, 13))
	f.addOrderAt(t, model.OrderStatusDelivered, "10", day(2024, 2, 2))
	f.addOrderAt(t, model.OrderStatusDelivered, "10", day(2021, 5, 5))
	svc := newStatsService(f.db, 10, func() time.Time { return statsNow })

	daily, err := svc.OrderCounts(f.ctx, PeriodDaily)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "2024-03-13", daily[0].Date)
	assert.True(t, daily[0].Total.Equal(dec("2")))

	monthly, err := svc.OrderCounts(f.ctx, PeriodMonthly)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-02-01", monthly[0].Date)
	assert.Equal(t, "2024-03-01", monthly[1].Date)

	yearly, err := svc.OrderCounts(f.ctx, PeriodYearly)
	require.NoError(t, err)
	require.Len(t, yearly, 2)
	assert.Equal(t, "2021-01-01", yearly[0].Date)
	assert.True(t, yearly[1].Total.Equal(dec("3")))

	_, err = svc.OrderCounts(f.ctx, Period("hourly"))
	require.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestCategoryCountsAndLowStock(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, repository.NewCategoryRepository(f.db).Create(f.ctx,
		&model.Category{ID: uuid.New().String(), Name: "Empty", CreatedAt: time.Now(), UpdatedAt: time.Now()}))
	low := f.addProduct(t, "Saffron", "300", 2)
	f.addProduct(t, "Rice", "60", 500)
	svc := NewStatsService(f.db, 5)

	counts, err := svc.CategoryCounts(f.ctx)
	require.NoError(t, err)
	got := map[string]int64{}
	for _, c := range counts {
		got[c.Name] = c.Count
	}
	assert.Equal(t, map[string]int64{"Fruits": 2, "Empty": 0}, got)

	items, err := svc.LowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].ProductID)
	assert.Equal(t, "Saffron", items[0].ProductName)
	assert.Equal(t, low.SKU, items[0].SKU)
	assert.Equal(t, 2, items[0].Quantity)
}
