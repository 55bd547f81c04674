package repo

import (
	"LostFound/internal/model"
	"context"

	"gorm.io/gorm"
)

// ItemFilter — параметры публичной выборки объявлений.
// Пустые поля фильтрацию не включают.
type ItemFilter struct {
	Type     string
	Category string
	Search   string // подстрока без учёта регистра по name/description/location
}

// ItemRepository определяет контракт доступа к Item для слоя сервиса.
type ItemRepository interface {
	// CreateWithQuestions сохраняет предмет и (для найденных) его набор
	// проверочных вопросов в одной транзакции: не должно оставаться
	// найденных предметов без вопросов.
	CreateWithQuestions(ctx context.Context, item *model.Item, vq *model.VerificationQuestion) error

	// GetByID ищет предмет по идентификатору.
	GetByID(ctx context.Context, id string) (*model.Item, error)

	// List возвращает объявления по фильтру вместе с авторами, новые первыми.
	List(ctx context.Context, f ItemFilter) ([]model.Item, error)

	// ListByUser возвращает объявления пользователя, опционально по типу.
	ListByUser(ctx context.Context, userID int64, itemType string) ([]model.Item, error)

	// ListClaimedBy возвращает предметы, закреплённые за заявителем,
	// вместе с владельцами.
	ListClaimedBy(ctx context.Context, userID int64) ([]model.Item, error)

	// DeleteCascade удаляет предмет вместе с его заявками и набором
	// вопросов в одной транзакции.
	DeleteCascade(ctx context.Context, itemID string) error
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) CreateWithQuestions(ctx context.Context, item *model.Item, vq *model.VerificationQuestion) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		if vq != nil {
			vq.ItemID = item.ID
			if err := tx.Create(vq).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	var it model.Item
	if err := r.db.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) List(ctx context.Context, f ItemFilter) ([]model.Item, error) {
	q := r.db.WithContext(ctx).Preload("User").Order("created_at DESC")

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Search != "" {
		// LOWER с обеих сторон — единообразно для sqlite и postgres
		pattern := "%" + f.Search + "%"
		q = q.Where(
			"LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(location) LIKE LOWER(?)",
			pattern, pattern, pattern,
		)
	}

	var items []model.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) ListByUser(ctx context.Context, userID int64, itemType string) ([]model.Item, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC")
	if itemType != "" {
		q = q.Where("type = ?", itemType)
	}
	var items []model.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) ListClaimedBy(ctx context.Context, userID int64) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("claimed_by = ? AND status = ?", userID, model.StatusClaimed).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *itemRepo) DeleteCascade(ctx context.Context, itemID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", itemID).Delete(&model.Claim{}).Error; err != nil {
			return err
		}
		if err := tx.Where("item_id = ?", itemID).Delete(&model.VerificationQuestion{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Item{}, "id = ?", itemID).Error
	})
}
