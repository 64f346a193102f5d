package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/quickcart/internal/model"
	"github.com/d60-Lab/quickcart/internal/repository"
	"github.com/d60-Lab/quickcart/pkg/logger"
)

// EventPublisher 事件投递目标
type EventPublisher interface {
	Publish(ctx context.Context, events []*model.Outbox) error
}

// OutboxRelay 轮询 outbox，把已提交的订单事件投递出去
type OutboxRelay struct {
	outbox       repository.OutboxRepository
	publisher    EventPublisher
	workers      int
	claimLimit   int
	pollInterval time.Duration
	// lease 之后仍处于 processing 的行视为崩溃遗留，可被重新领取
	lease        time.Duration
}

const defaultClaimLease = 5 * time.Minute

func NewOutboxRelay(db *gorm.DB, publisher EventPublisher, workers, claimLimit int, pollInterval time.Duration) *OutboxRelay {
	if workers <= 0 {
		workers = 1
	}
	if claimLimit <= 0 {
		claimLimit = 100
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &OutboxRelay{
		outbox:       repository.NewOutboxRepository(db),
		publisher:    publisher,
		workers:      workers,
		claimLimit:   claimLimit,
		pollInterval: pollInterval,
		lease:        defaultClaimLease,
	}
}

// Start 启动若干 worker；返回的停止函数等待 worker 退出或 ctx 超时
func (r *OutboxRelay) Start() func(context.Context) error {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.loop(stop)
		}()
	}
	return func(ctx context.Context) error {
		close(stop)
		done := make(chan struct{})
		go func() { wg.Wait(); close(done) }()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (r *OutboxRelay) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := r.ProcessOnce(context.Background()); err != nil {
				logger.Warn("outbox relay round failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce 领取一批事件并投递，返回投递条数。
// 投递或标记失败的行退回 pending，下一轮重试（至少一次语义）
func (r *OutboxRelay) ProcessOnce(ctx context.Context) (int, error) {
	batch, err := r.outbox.Claim(ctx, r.claimLimit, time.Now().Add(-r.lease))
	if err != nil {
		return 0, err
	}
	if len(batch) == 0 {
		return 0, nil
	}
	ids := make([]string, len(batch))
	for i, ev := range batch {
		ids[i] = ev.ID
	}

	if err := r.publisher.Publish(ctx, batch); err != nil {
		if rerr := r.outbox.Release(ctx, ids); rerr != nil {
			logger.Error("outbox release failed", zap.Strings("ids", ids), zap.Error(rerr))
		}
		return 0, err
	}
	if err := r.outbox.MarkDone(ctx, ids); err != nil {
		if rerr := r.outbox.Release(ctx, ids); rerr != nil {
			logger.Error("outbox release failed", zap.Strings("ids", ids), zap.Error(rerr))
		}
		return 0, err
	}
	for _, ev := range batch {
		logger.Debug("outbox event published",
			zap.String("event_id", ev.ID),
			zap.String("type", ev.EventType),
			zap.Duration("lag", time.Since(ev.CreatedAt)))
	}
	return len(batch), nil
}
