package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 创建订单及订单行
	Create(ctx context.Context, order *model.Order) error

	// GetByID 查询订单（含订单行、商品名、下单用户）
	GetByID(ctx context.Context, orderID string) (*model.Order, error)

	// GetForUpdate 加行锁读取订单（不含关联）
	GetForUpdate(ctx context.Context, orderID string) (*model.Order, error)

	// ListByUser 用户自己的订单，按创建时间倒序
	ListByUser(ctx context.Context, userID string) ([]*model.Order, error)

	// ListAll 后台订单列表
	ListAll(ctx context.Context) ([]*model.Order, error)

	// ListDispatchable 可被司机接单且尚未分配的订单
	ListDispatchable(ctx context.Context) ([]*model.Order, error)

	// ListSince 查询 since 之后创建的订单，status 为空表示不过滤
	ListSince(ctx context.Context, since time.Time, status model.OrderStatus) ([]*model.Order, error)

	// Transition 仅当当前状态属于 from 时更新为 to，返回是否更新
	Transition(ctx context.Context, orderID string, from []model.OrderStatus, to model.OrderStatus) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储；传入事务句柄即在事务内工作
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("User").
		Preload("Delivery").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetForUpdate(ctx context.Context, orderID string) (*model.Order, error) {
	var order model.Order
	err := forUpdate(r.db.WithContext(ctx)).
		Preload("Items").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListAll(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Preload("User").
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListDispatchable(ctx context.Context) ([]*model.Order, error) {
	var orders []*model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("User").
		Where("status IN ?", statusStrings(model.DispatchableStatuses)).
		Where("NOT EXISTS (SELECT 1 FROM deliveries d WHERE d.order_id = orders.id)").
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) ListSince(ctx context.Context, since time.Time, status model.OrderStatus) ([]*model.Order, error) {
	q := r.db.WithContext(ctx).Where("created_at >= ?", since)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var orders []*model.Order
	err := q.Order("created_at ASC").Find(&orders).Error
	return orders, err
}

func (r *orderRepository) Transition(ctx context.Context, orderID string, from []model.OrderStatus, to model.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status IN ?", orderID, statusStrings(from)).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
