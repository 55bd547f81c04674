package repo

import (
	"LostFound/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrClaimNotPending сигнализирует, что условное обновление статуса заявки
// не нашло строку в состоянии pending: заявка уже решена или удалена.
var ErrClaimNotPending = errors.New("claim is not pending")

// ClaimRepository определяет контракт доступа к Claim для слоя сервиса.
type ClaimRepository interface {
	// Create сохраняет новую заявку. Нарушение уникального индекса
	// активной заявки (item_id, claimant_id, active) возвращается ошибкой БД.
	Create(ctx context.Context, claim *model.Claim) error

	// GetByID ищет заявку по идентификатору.
	GetByID(ctx context.Context, id string) (*model.Claim, error)

	// FindActive возвращает активную (pending/approved) заявку пары
	// (предмет, заявитель) либо gorm.ErrRecordNotFound.
	FindActive(ctx context.Context, itemID string, claimantID int64) (*model.Claim, error)

	// ListByClaimant возвращает заявки пользователя, новые первыми.
	// Непустой status сужает выборку.
	ListByClaimant(ctx context.Context, claimantID int64, status string) ([]model.Claim, error)

	// ListPendingForItems возвращает pending-заявки на перечисленные
	// предметы вместе с заявителями, новые первыми.
	ListPendingForItems(ctx context.Context, itemIDs []string) ([]model.Claim, error)

	// ListByItem возвращает все заявки на предмет вместе с заявителями,
	// новые первыми.
	ListByItem(ctx context.Context, itemID string) ([]model.Claim, error)

	// Decide атомарно переводит заявку из pending в указанный статус.
	// Условное обновление — единственная точка выхода из pending: из двух
	// конкурентных решений выигрывает ровно одно, проигравший получает
	// ErrClaimNotPending. При approve в той же транзакции предмет
	// помечается claimed и закрепляется за заявителем.
	Decide(ctx context.Context, claim *model.Claim, status string) error

	// HasApproved отвечает, есть ли у заявителя одобренная заявка на предмет.
	HasApproved(ctx context.Context, itemID string, claimantID int64) (bool, error)
}

type claimRepo struct {
	db *gorm.DB
}

// NewClaimRepository создаёт реализацию репозитория для Claim.
func NewClaimRepository(db *gorm.DB) ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) Create(ctx context.Context, claim *model.Claim) error {
	return r.db.WithContext(ctx).Create(claim).Error
}

func (r *claimRepo) GetByID(ctx context.Context, id string) (*model.Claim, error) {
	var c model.Claim
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *claimRepo) FindActive(ctx context.Context, itemID string, claimantID int64) (*model.Claim, error) {
	var c model.Claim
	err := r.db.WithContext(ctx).
		Where("item_id = ? AND claimant_id = ? AND status IN ?",
			itemID, claimantID, []string{model.ClaimPending, model.ClaimApproved}).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *claimRepo) ListByClaimant(ctx context.Context, claimantID int64, status string) ([]model.Claim, error) {
	q := r.db.WithContext(ctx).
		Where("claimant_id = ?", claimantID).
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var claims []model.Claim
	if err := q.Find(&claims).Error; err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepo) ListPendingForItems(ctx context.Context, itemIDs []string) ([]model.Claim, error) {
	if len(itemIDs) == 0 {
		return []model.Claim{}, nil
	}
	var claims []model.Claim
	err := r.db.WithContext(ctx).
		Preload("Claimant").
		Where("item_id IN ? AND status = ?", itemIDs, model.ClaimPending).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepo) ListByItem(ctx context.Context, itemID string) ([]model.Claim, error) {
	var claims []model.Claim
	err := r.db.WithContext(ctx).
		Preload("Claimant").
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&claims).Error
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (r *claimRepo) Decide(ctx context.Context, claim *model.Claim, status string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": status}
		if status == model.ClaimRejected {
			// снимаем признак активности: отклонённая заявка не должна
			// блокировать повторную подачу
			updates["active"] = nil
		}

		res := tx.Model(&model.Claim{}).
			Where("id = ? AND status = ?", claim.ID, model.ClaimPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrClaimNotPending
		}

		if status == model.ClaimApproved {
			return tx.Model(&model.Item{}).
				Where("id = ?", claim.ItemID).
				Updates(map[string]any{
					"status":     model.StatusClaimed,
					"claimed_by": claim.ClaimantID,
				}).Error
		}
		return nil
	})
}

func (r *claimRepo) HasApproved(ctx context.Context, itemID string, claimantID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Claim{}).
		Where("item_id = ? AND claimant_id = ? AND status = ?",
			itemID, claimantID, model.ClaimApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
