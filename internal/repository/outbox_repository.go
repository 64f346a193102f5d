package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/quickcart/internal/model"
)

// OutboxRepository 事件外发盒
type OutboxRepository interface {
	Add(ctx context.Context, ev *model.Outbox) error
	// Claim 认领一批 pending 事件并置为 processing；
	// claimed_at 早于 staleBefore 的 processing 行（relay 中途崩溃）一并认领
	Claim(ctx context.Context, limit int, staleBefore time.Time) ([]*model.Outbox, error)
	MarkDone(ctx context.Context, ids []string) error
	// Release 投递失败，退回 pending 等待下次认领
	Release(ctx context.Context, ids []string) error
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type outboxRepository struct{ db *gorm.DB }

func NewOutboxRepository(db *gorm.DB) OutboxRepository { return &outboxRepository{db: db} }

func (r *outboxRepository) Add(ctx context.Context, ev *model.Outbox) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *outboxRepository) Claim(ctx context.Context, limit int, staleBefore time.Time) ([]*model.Outbox, error) {
	var batch []*model.Outbox
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// SELECT ... FOR UPDATE SKIP LOCKED，多个 relay 实例互不阻塞
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", model.OutboxPending).
			Or("status = ? AND claimed_at < ?", model.OutboxProcessing, staleBefore).
			Order("created_at").
			Limit(limit).
			Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		ids := make([]string, len(batch))
		for i, b := range batch {
			ids[i] = b.ID
		}
		now := time.Now()
		for _, b := range batch {
			b.Status = model.OutboxProcessing
			b.ClaimedAt = &now
			b.Attempts++
		}
		return tx.Model(&model.Outbox{}).
			Where("id IN ?", ids).
			Updates(map[string]any{
				"status":     model.OutboxProcessing,
				"claimed_at": now,
				"attempts":   gorm.Expr("attempts + 1"),
			}).Error
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

func (r *outboxRepository) MarkDone(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": model.OutboxDone, "processed_at": now}).Error
}

func (r *outboxRepository) Release(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.Outbox{}).
		Where("id IN ?", ids).
		Update("status", model.OutboxPending).Error
}

func (r *outboxRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Outbox{}).Where("status = ?", status).Count(&cnt).Error
	return cnt, err
}
