package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/quickcart/internal/model"
)

// confirmedOrder 下单并确认，使其可被司机接单
func confirmedOrder(t *testing.T, f *fixture) *model.Order {
	t.Helper()
	p := f.addProduct(t, "Eggs", "72.00", 10)
	order, err := NewOrderService(f.db, nil, testLocation).PlaceOrder(f.ctx, f.user.ID, cod(f, "72", CartLine{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	f.setStatus(t, order.ID, model.OrderStatusConfirmed)
	return order
}

func TestAccept_OnlyOneDriverWins(t *testing.T) {
	f := newFixture(t)
	order := confirmedOrder(t, f)
	d1 := f.addUser(t, "d1@example.com", model.RoleDriver)
	d2 := f.addUser(t, "d2@example.com", model.RoleDriver)
	svc := NewDeliveryService(f.db)

	avail, err := svc.Available(f.ctx)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, order.ID, avail[0].ID)

	d, err := svc.Accept(f.ctx, d1.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryAssigned, d.Status)
	assert.Equal(t, d1.ID, d.DriverID)

	_, err = svc.Accept(f.ctx, d2.ID, order.ID)
	require.ErrorIs(t, err, ErrOrderNotAvailable)

	stored, err := NewOrderService(f.db, nil, testLocation).GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusOutForDelivery, stored.Status)

	avail, err = svc.Available(f.ctx)
	require.NoError(t, err)
	assert.Empty(t, avail)
	assert.EqualValues(t, 1, f.count(t, &model.Delivery{}))
}

func TestAccept_Rejections(t *testing.T) {
	f := newFixture(t)
	driver := f.addUser(t, "d@example.com", model.RoleDriver)
	svc := NewDeliveryService(f.db)

	_, err := svc.Accept(f.ctx, driver.ID, "missing")
	require.ErrorIs(t, err, ErrOrderNotFound)

	p := f.addProduct(t, "Bread", "40.00", 3)
	pending, err := NewOrderService(f.db, nil, testLocation).PlaceOrder(f.ctx, f.user.ID, cod(f, "40", CartLine{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = svc.Accept(f.ctx, driver.ID, pending.ID)
	require.ErrorIs(t, err, ErrOrderNotAvailable)
	assert.Zero(t, f.count(t, &model.Delivery{}))
}

func TestComplete_MarksOrderDelivered(t *testing.T) {
	f := newFixture(t)
	order := confirmedOrder(t, f)
	driver := f.addUser(t, "d@example.com", model.RoleDriver)
	other := f.addUser(t, "o@example.com", model.RoleDriver)
	svc := NewDeliveryService(f.db)

	d, err := svc.Accept(f.ctx, driver.ID, order.ID)
	require.NoError(t, err)

	_, err = svc.Complete(f.ctx, other.ID, d.ID)
	require.ErrorIs(t, err, ErrDeliveryNotFound)

	done, err := svc.Complete(f.ctx, driver.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryDelivered, done.Status)
	require.NotNil(t, done.DeliveredAt)

	stored, err := NewOrderService(f.db, nil, testLocation).GetOrder(f.ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusDelivered, stored.Status)

	_, err = svc.Complete(f.ctx, driver.ID, d.ID)
	require.ErrorIs(t, err, ErrDeliveryDone)
	_, err = svc.Complete(f.ctx, driver.ID, "missing")
	require.ErrorIs(t, err, ErrDeliveryNotFound)

	mine, err := svc.MyDeliveries(f.ctx, driver.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, order.ID, mine[0].OrderID)

	var events []model.Outbox
	require.NoError(t, f.db.Where("aggregate_id = ?", order.ID).Order("created_at").Find(&events).Error)
	types := make([]string, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.EventType)
	}
	assert.Contains(t, types, EventDeliveryAssigned)
	assert.Contains(t, types, EventDeliveryCompleted)
}

func TestAdminCannotEditAfterDispatch(t *testing.T) {
	f := newFixture(t)
	order := confirmedOrder(t, f)
	driver := f.addUser(t, "d@example.com", model.RoleDriver)
	_, err := NewDeliveryService(f.db).Accept(f.ctx, driver.ID, order.ID)
	require.NoError(t, err)

	orders := NewOrderService(f.db, nil, testLocation)
	_, err = orders.UpdateStatus(f.ctx, order.ID, model.OrderStatusPacking)
	require.ErrorIs(t, err, ErrStatusLocked)
	_, err = orders.CancelOrder(f.ctx, f.user.ID, order.ID)
	require.ErrorIs(t, err, ErrNotCancellable)
}
