package repo

import (
	"LostFound/internal/model"
	"context"

	"gorm.io/gorm"
)

// QuestionRepository — доступ к наборам проверочных вопросов.
// Создание набора идёт через ItemRepository.CreateWithQuestions, чтобы
// предмет и вопросы записывались в одной транзакции.
type QuestionRepository interface {
	// GetByItemID возвращает набор вопросов предмета.
	// Если набора нет — gorm.ErrRecordNotFound.
	GetByItemID(ctx context.Context, itemID string) (*model.VerificationQuestion, error)
}

type questionRepo struct {
	db *gorm.DB
}

// NewQuestionRepository создаёт реализацию репозитория для VerificationQuestion.
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepo{db: db}
}

func (r *questionRepo) GetByItemID(ctx context.Context, itemID string) (*model.VerificationQuestion, error) {
	var vq model.VerificationQuestion
	if err := r.db.WithContext(ctx).Where("item_id = ?", itemID).First(&vq).Error; err != nil {
		return nil, err
	}
	return &vq, nil
}
