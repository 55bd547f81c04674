package service

import (
	"LostFound/internal/metrics"
	"LostFound/internal/model"
	"LostFound/internal/repo"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// QuestionInput — пара вопрос/ответ из формы создания найденного предмета.
type QuestionInput struct {
	Question string
	Answer   string
}

// CreateItemInput — проверенные данные нового объявления.
// ID может быть сгенерирован заранее (хендлер именует файл картинки по ID
// предмета до записи в БД); пустой ID сервис заполняет сам.
type CreateItemInput struct {
	ID          string
	UserID      int64
	Type        string
	Name        string
	Category    string
	Description string
	Date        time.Time
	Time        string
	Location    string
	Image       string
	Questions   []QuestionInput
}

// ItemWithPoster — объявление с публичной проекцией автора.
type ItemWithPoster struct {
	model.Item
	PostedBy model.Contact `json:"postedBy"`
}

// ItemResponses — заявка на предмет глазами владельца: контакты заявителя
// и данные им ответы.
type ItemResponses struct {
	ClaimID   string                `json:"claim_id"`
	Claimant  model.Contact         `json:"claimant"`
	Responses []model.ClaimResponse `json:"responses"`
	Status    string                `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
}

// ItemService инкапсулирует реестр объявлений.
type ItemService struct {
	items     repo.ItemRepository
	claims    repo.ClaimRepository
	questions repo.QuestionRepository
	users     repo.UserRepository
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

// NewItemService создаёт сервис объявлений.
func NewItemService(
	items repo.ItemRepository,
	claims repo.ClaimRepository,
	questions repo.QuestionRepository,
	users repo.UserRepository,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) *ItemService {
	return &ItemService{
		items:     items,
		claims:    claims,
		questions: questions,
		users:     users,
		metrics:   m,
		logger:    logger,
	}
}

// CreateItem сохраняет объявление; для найденного предмета — вместе с
// набором проверочных вопросов в одной транзакции, чтобы не оставлять
// найденных предметов без вопросов при частичном сбое.
func (s *ItemService) CreateItem(ctx context.Context, in CreateItemInput) (*model.Item, error) {
	item := &model.Item{
		ID:          in.ID,
		UserID:      in.UserID,
		Type:        in.Type,
		Name:        strings.TrimSpace(in.Name),
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		Date:        in.Date,
		Time:        in.Time,
		Location:    strings.TrimSpace(in.Location),
		Image:       in.Image,
		Status:      model.StatusOpen,
	}
	if item.ID == "" {
		item.ID = model.NewItemID()
	}

	var vq *model.VerificationQuestion
	if in.Type == model.TypeFound {
		if len(in.Questions) == 0 {
			return nil, ErrQuestionsRequired
		}
		pairs := make([]model.QuestionPair, 0, len(in.Questions))
		for _, q := range in.Questions {
			pairs = append(pairs, model.QuestionPair{
				ID:       uuid.NewString(),
				Question: strings.TrimSpace(q.Question),
				Answer:   strings.TrimSpace(q.Answer),
			})
		}
		vq = &model.VerificationQuestion{Questions: pairs}
	}

	if err := s.items.CreateWithQuestions(ctx, item, vq); err != nil {
		return nil, err
	}

	s.metrics.ItemsCreated.Inc()
	s.logger.Infow("item created", "item_id", item.ID, "type", item.Type, "user_id", item.UserID)
	return item, nil
}

// ListItems — публичная выдача с авторами (без телефонов).
func (s *ItemService) ListItems(ctx context.Context, f repo.ItemFilter) ([]ItemWithPoster, error) {
	items, err := s.items.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]ItemWithPoster, 0, len(items))
	for _, it := range items {
		out = append(out, ItemWithPoster{Item: it, PostedBy: model.ContactOf(it.User, false)})
	}
	return out, nil
}

// ListUserItems — объявления пользователя, опционально по типу.
func (s *ItemService) ListUserItems(ctx context.Context, userID int64, itemType string) ([]model.Item, error) {
	return s.items.ListByUser(ctx, userID, itemType)
}

// ListClaimedItems — предметы, закреплённые за заявителем, с контактами владельцев.
func (s *ItemService) ListClaimedItems(ctx context.Context, userID int64) ([]ItemWithPoster, error) {
	items, err := s.items.ListClaimedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ItemWithPoster, 0, len(items))
	for _, it := range items {
		out = append(out, ItemWithPoster{Item: it, PostedBy: model.ContactOf(it.User, true)})
	}
	return out, nil
}

// GetClaimedItemDetails — детали закреплённого предмета, только для заявителя.
func (s *ItemService) GetClaimedItemDetails(ctx context.Context, itemID string, userID int64) (*ItemWithPoster, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.Status != model.StatusClaimed || item.ClaimedBy == nil || *item.ClaimedBy != userID {
		return nil, ErrNotClaimant
	}
	owner, err := s.users.GetUserByID(ctx, item.UserID)
	if err != nil {
		return nil, err
	}
	return &ItemWithPoster{Item: *item, PostedBy: model.ContactOf(owner, true)}, nil
}

// GetItemDetails — детали объявления с контактами автора (для аутентифицированных).
func (s *ItemService) GetItemDetails(ctx context.Context, itemID string) (*ItemWithPoster, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	owner, err := s.users.GetUserByID(ctx, item.UserID)
	if err != nil {
		return nil, err
	}
	return &ItemWithPoster{Item: *item, PostedBy: model.ContactOf(owner, true)}, nil
}

// GetItemResponses — все заявки на предмет с ответами заявителей.
// Доступно только владельцу предмета.
func (s *ItemService) GetItemResponses(ctx context.Context, itemID string, callerID int64) ([]ItemResponses, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != callerID {
		return nil, ErrNotOwner
	}

	claims, err := s.claims.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	out := make([]ItemResponses, 0, len(claims))
	for _, c := range claims {
		out = append(out, ItemResponses{
			ClaimID:   c.ID,
			Claimant:  model.ContactOf(c.Claimant, true),
			Responses: c.Responses,
			Status:    c.Status,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}

// DeleteItem удаляет объявление владельца вместе с заявками и вопросами.
// Возвращает удалённый предмет, чтобы хендлер мог прибрать файл картинки.
func (s *ItemService) DeleteItem(ctx context.Context, itemID string, callerID int64) (*model.Item, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != callerID {
		return nil, ErrNotOwner
	}
	if err := s.items.DeleteCascade(ctx, itemID); err != nil {
		return nil, err
	}
	s.logger.Infow("item deleted", "item_id", itemID, "user_id", callerID)
	return item, nil
}

func (s *ItemService) getItem(ctx context.Context, itemID string) (*model.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}
