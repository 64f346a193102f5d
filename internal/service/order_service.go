package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/cache"
	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
	"github.com/d60-Lab/quickcart/pkg/logger"
)

// totalTolerance 客户端合计与服务端重算合计允许的误差
var totalTolerance = decimal.New(1, -2)

// CartLine 购物车行；Price 为客户端看到的价格，仅作参考
type CartLine struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// PlaceOrderInput 下单参数
type PlaceOrderInput struct {
	Items         []CartLine
	TotalPrice    decimal.Decimal
	AddressID     string
	PaymentMethod model.PaymentMethod
}

// OrderService 订单服务
type OrderService interface {
	// PlaceOrder 校验库存、创建订单与订单行、扣减库存、按需扣减余额，全部在一个事务内
	PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*model.Order, error)
	// UpdateStatus 后台修改状态，只允许 PENDING/CONFIRMED/PACKING
	UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error)
	// CancelOrder 顾客取消订单，回补库存并退回钱包支付
	CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error)
	GetOrder(ctx context.Context, orderID string) (*model.Order, error)
	MyOrders(ctx context.Context, userID string) ([]*model.Order, error)
	ListOrders(ctx context.Context) ([]*model.Order, error)
}

type orderService struct {
	db         *gorm.DB
	cache      *cache.ProductCache
	locationID string
}

// NewOrderService locationID 为履约门店，所有库存校验与扣减都针对它。
// 下单与取消会改动库存，提交后使 productCache 失效；productCache 可为 nil
func NewOrderService(db *gorm.DB, productCache *cache.ProductCache, locationID string) OrderService {
	return &orderService{db: db, cache: productCache, locationID: locationID}
}

func (s *orderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (*model.Order, error) {
	lines, err := mergeLines(in.Items)
	if err != nil {
		return nil, err
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	if in.AddressID == "" {
		return nil, ErrAddressRequired
	}

	var order *model.Order
	var products map[string]*model.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repository.NewAddressRepository(tx).GetForUser(ctx, userID, in.AddressID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAddressNotFound
			}
			return err
		}

		ids := make([]string, len(lines))
		for i, l := range lines {
			ids[i] = l.ProductID
		}
		var err error
		products, err = repository.NewProductRepository(tx).GetByIDs(ctx, ids)
		if err != nil {
			return err
		}

		stock := repository.NewStockRepository(tx)
		total := decimal.Zero
		for _, l := range lines {
			p, ok := products[l.ProductID]
			if !ok {
				return fmt.Errorf("%w: %s", ErrProductNotFound, l.ProductID)
			}
			item, err := stock.GetForUpdate(ctx, l.ProductID, s.locationID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			available := 0
			if item != nil {
				available = item.Quantity
			}
			if available < l.Quantity {
				return &StockError{ProductID: p.ID, ProductName: p.Name, Requested: l.Quantity, Available: available}
			}
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}

		if total.Sub(in.TotalPrice).Abs().GreaterThan(totalTolerance) {
			return fmt.Errorf("%w: expected %s, got %s", ErrTotalMismatch, total.StringFixed(2), in.TotalPrice.StringFixed(2))
		}

		if in.PaymentMethod == model.PaymentWallet {
			user, err := repository.NewUserRepository(tx).GetForUpdate(ctx, userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUserNotFound
				}
				return err
			}
			if user.WalletBalance.LessThan(total) {
				return ErrInsufficientBalance
			}
		}

		now := time.Now()
		order = &model.Order{
			ID:            uuid.New().String(),
			UserID:        userID,
			LocationID:    s.locationID,
			AddressID:     in.AddressID,
			TotalPrice:    total,
			PaymentMethod: in.PaymentMethod,
			Status:        model.OrderStatusPending,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		for _, l := range lines {
			order.Items = append(order.Items, model.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   order.ID,
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				Price:     products[l.ProductID].Price,
			})
		}

		if err := repository.NewOrderRepository(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, l := range lines {
			ok, err := stock.Decrement(ctx, l.ProductID, s.locationID, l.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				// 行锁在 SQLite 上不生效，这里兜底
				return shortfall(ctx, stock, s.locationID, products[l.ProductID].Name, l)
			}
		}

		if in.PaymentMethod == model.PaymentWallet {
			if _, err := applyWallet(ctx, tx, userID, model.TransactionDebit, total, &order.ID,
				fmt.Sprintf("Payment for order %s", order.ID)); err != nil {
				return err
			}
		}

		return enqueueEvent(ctx, tx, newOrderEvent(EventOrderPlaced, order))
	})
	if err != nil {
		if !isBusinessError(err) {
			logger.Error("place order failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, err
	}
	s.cache.Invalidate(ctx)

	for i := range order.Items {
		order.Items[i].Product = products[order.Items[i].ProductID]
	}
	logger.Info("order placed",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID),
		zap.String("payment", string(order.PaymentMethod)),
		zap.String("total", order.TotalPrice.StringFixed(2)))
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (*model.Order, error) {
	if !status.In(model.AdminStatuses) {
		return nil, ErrInvalidStatus
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		order, err := orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if !order.Status.In(model.AdminStatuses) {
			return ErrStatusLocked
		}
		if order.Status == status {
			return nil
		}
		ok, err := orders.Transition(ctx, orderID, model.AdminStatuses, status)
		if err != nil {
			return err
		}
		if !ok {
			return ErrStatusLocked
		}
		order.Status = status
		return enqueueEvent(ctx, tx, newOrderEvent(EventOrderStatusChanged, order))
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID string) (*model.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := repository.NewOrderRepository(tx)
		order, err := orders.GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if order.UserID != userID {
			return ErrOrderNotFound
		}
		if !order.Status.In(model.CancellableStatuses) {
			return ErrNotCancellable
		}
		ok, err := orders.Transition(ctx, orderID, model.CancellableStatuses, model.OrderStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotCancellable
		}

		stock := repository.NewStockRepository(tx)
		for _, it := range order.Items {
			if err := stock.Increment(ctx, it.ProductID, order.LocationID, it.Quantity); err != nil {
				return fmt.Errorf("restock %s: %w", it.ProductID, err)
			}
		}

		if order.PaymentMethod == model.PaymentWallet {
			if _, err := applyWallet(ctx, tx, order.UserID, model.TransactionCredit, order.TotalPrice, &order.ID,
				fmt.Sprintf("Refund for order %s", order.ID)); err != nil {
				return err
			}
		}

		order.Status = model.OrderStatusCancelled
		return enqueueEvent(ctx, tx, newOrderEvent(EventOrderCancelled, order))
	})
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx)
	logger.Info("order cancelled", zap.String("order_id", orderID), zap.String("user_id", userID))
	return s.GetOrder(ctx, orderID)
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := repository.NewOrderRepository(s.db).GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) MyOrders(ctx context.Context, userID string) ([]*model.Order, error) {
	return repository.NewOrderRepository(s.db).ListByUser(ctx, userID)
}

func (s *orderService) ListOrders(ctx context.Context) ([]*model.Order, error) {
	return repository.NewOrderRepository(s.db).ListAll(ctx)
}

// shortfall 条件扣减失败时重新读取实际余量，库存行不存在按 0 计
func shortfall(ctx context.Context, stock repository.StockRepository, locationID, name string, l CartLine) *StockError {
	serr := &StockError{ProductID: l.ProductID, ProductName: name, Requested: l.Quantity}
	if item, err := stock.Get(ctx, l.ProductID, locationID); err == nil {
		serr.Available = item.Quantity
	}
	return serr
}

// mergeLines 校验购物车并合并重复商品行，按商品 id 排序，
// 并发下单时按相同顺序锁库存行
func mergeLines(items []CartLine) ([]CartLine, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	byID := make(map[string]*CartLine, len(items))
	var order []string
	for _, it := range items {
		if it.ProductID == "" {
			return nil, fmt.Errorf("%w: missing product id", ErrProductNotFound)
		}
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if l, ok := byID[it.ProductID]; ok {
			l.Quantity += it.Quantity
			continue
		}
		cp := it
		byID[it.ProductID] = &cp
		order = append(order, it.ProductID)
	}
	sort.Strings(order)
	out := make([]CartLine, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out, nil
}

// isBusinessError 业务规则错误（非基础设施故障）不记 error 日志
func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

var businessErrors = []error{
	ErrEmptyCart, ErrInvalidQuantity, ErrInvalidPaymentMethod, ErrAddressRequired, ErrAddressNotFound,
	ErrInsufficientStock, ErrInsufficientBalance, ErrTotalMismatch, ErrOrderNotFound, ErrInvalidStatus,
	ErrStatusLocked, ErrNotCancellable, ErrInvalidAmount, ErrProductNotFound, ErrCategoryNotFound,
	ErrDuplicateSKU, ErrDuplicateCategory, ErrProductInUse, ErrCategoryInUse, ErrMissingFields,
	ErrInvalidPrice, ErrInvalidStockAmount, ErrOrderNotAvailable, ErrDeliveryNotFound, ErrDeliveryDone,
	ErrUserNotFound, ErrEmailTaken, ErrInvalidCredentials, ErrInvalidPeriod,
}
