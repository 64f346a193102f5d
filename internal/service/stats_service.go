package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
)

// Period 统计粒度
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod maps a query value to a Period; empty means monthly.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "":
		return PeriodMonthly, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return Period(s), nil
	}
	return "", ErrInvalidPeriod
}

// StatPoint 一个时间桶；Date 为桶起始日 YYYY-MM-DD
type StatPoint struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type LowStockItem struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	SKU         string `json:"sku"`
	LocationID  string `json:"locationId"`
	Quantity    int    `json:"quantity"`
}

// StatsService 后台看板统计
type StatsService interface {
	// Revenue 已送达订单金额
	Revenue(ctx context.Context, p Period) ([]StatPoint, error)
	// OrderCounts 所有状态的订单数
	OrderCounts(ctx context.Context, p Period) ([]StatPoint, error)
	CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
}

type statsService struct {
	db       *gorm.DB
	lowLimit int
	now      func() time.Time
}

func NewStatsService(db *gorm.DB, lowStockLimit int) StatsService {
	return newStatsService(db, lowStockLimit, time.Now)
}

func newStatsService(db *gorm.DB, lowStockLimit int, now func() time.Time) *statsService {
	if lowStockLimit <= 0 {
		lowStockLimit = 20
	}
	return &statsService{db: db, lowLimit: lowStockLimit, now: now}
}

func (s *statsService) Revenue(ctx context.Context, p Period) ([]StatPoint, error) {
	return s.aggregate(ctx, p, model.OrderStatusDelivered, func(o *model.Order) decimal.Decimal {
		return o.TotalPrice
	})
}

func (s *statsService) OrderCounts(ctx context.Context, p Period) ([]StatPoint, error) {
	one := decimal.NewFromInt(1)
	return s.aggregate(ctx, p, "", func(*model.Order) decimal.Decimal { return one })
}

func (s *statsService) CategoryCounts(ctx context.Context) ([]repository.CategoryCount, error) {
	return repository.NewCategoryRepository(s.db).ProductCounts(ctx)
}

func (s *statsService) LowStock(ctx context.Context) ([]LowStockItem, error) {
	items, err := repository.NewStockRepository(s.db).ListLow(ctx, s.lowLimit)
	if err != nil {
		return nil, err
	}
	out := make([]LowStockItem, 0, len(items))
	for _, it := range items {
		row := LowStockItem{ProductID: it.ProductID, LocationID: it.LocationID, Quantity: it.Quantity}
		if it.Product != nil {
			row.ProductName = it.Product.Name
			row.SKU = it.Product.SKU
		}
		out = append(out, row)
	}
	return out, nil
}

// aggregate 按桶汇总，只返回有数据的桶，按时间升序
func (s *statsService) aggregate(ctx context.Context, p Period, status model.OrderStatus,
	value func(*model.Order) decimal.Decimal) ([]StatPoint, error) {
	since, err := windowStart(p, s.now())
	if err != nil {
		return nil, err
	}
	orders, err := repository.NewOrderRepository(s.db).ListSince(ctx, since, status)
	if err != nil {
		return nil, err
	}

	var out []StatPoint
	index := make(map[string]int)
	for _, o := range orders {
		key := bucketStart(p, o.CreatedAt.In(since.Location())).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, StatPoint{Date: key, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(value(o))
	}
	return out, nil
}

func windowStart(p Period, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodDaily:
		return today.AddDate(0, 0, -7), nil
	case PeriodWeekly:
		return today.AddDate(0, 0, -7*12), nil
	case PeriodMonthly:
		return today.AddDate(0, -12, 0), nil
	case PeriodYearly:
		return today.AddDate(-5, 0, 0), nil
	}
	return time.Time{}, ErrInvalidPeriod
}

func bucketStart(p Period, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch p {
	case PeriodWeekly:
		// 周一为一周起始
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	case PeriodYearly:
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
	}
	return day
}
