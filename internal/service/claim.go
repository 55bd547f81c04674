package service

import (
	"LostFound/internal/metrics"
	"LostFound/internal/model"
	"LostFound/internal/notify"
	"LostFound/internal/repo"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ResponseInput — ответ заявителя на один вопрос из формы подачи заявки.
type ResponseInput struct {
	QuestionID string
	Response   string
}

// ItemProjection — срез полей предмета, присоединяемый к заявке.
type ItemProjection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Location    string    `json:"location"`
	Image       string    `json:"image,omitempty"`
	Type        string    `json:"type"`
}

// ClaimWithItem — заявка пользователя с проекцией предмета.
// Item == nil, если предмет успели удалить.
type ClaimWithItem struct {
	ID        string                `json:"id"`
	Status    string                `json:"status"`
	Responses []model.ClaimResponse `json:"responses"`
	CreatedAt time.Time             `json:"created_at"`
	Item      *ItemProjection       `json:"item,omitempty"`
}

// PendingClaim — ожидающая заявка глазами владельца предмета.
type PendingClaim struct {
	ID        string                `json:"id"`
	ItemID    string                `json:"item_id"`
	ItemName  string                `json:"item_name"`
	Claimant  model.Contact         `json:"claimant"`
	Responses []model.ClaimResponse `json:"responses"`
	CreatedAt time.Time             `json:"created_at"`
}

// ClaimedItem — предмет с одобренной заявкой и контактами владельца.
type ClaimedItem struct {
	model.Item
	PostedBy model.Contact `json:"postedBy"`
}

// ClaimService — движок процесса заявок: подача, решение владельца и
// вытекающая из него смена состояния предмета, проверка права на картинку.
type ClaimService struct {
	claims    repo.ClaimRepository
	items     repo.ItemRepository
	questions repo.QuestionRepository
	users     repo.UserRepository
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	logger    *zap.SugaredLogger
}

// NewClaimService создаёт движок заявок.
func NewClaimService(
	claims repo.ClaimRepository,
	items repo.ItemRepository,
	questions repo.QuestionRepository,
	users repo.UserRepository,
	notifier notify.Notifier,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
) *ClaimService {
	return &ClaimService{
		claims:    claims,
		items:     items,
		questions: questions,
		users:     users,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

// ListQuestions возвращает вопросы предмета со снятыми ответами.
func (s *ClaimService) ListQuestions(ctx context.Context, itemID string) ([]model.PublicQuestion, error) {
	if _, err := s.getItem(ctx, itemID); err != nil {
		return nil, err
	}
	vq, err := s.getQuestions(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return vq.PublicQuestions(), nil
}

// SubmitClaim регистрирует заявку пользователя на предмет.
//
// Порядок проверок повторяет контракт: предмет существует; заявитель не
// владелец; набор вопросов существует; активной заявки этой пары ещё нет.
// Ответы на неизвестные вопросы молча отбрасываются, но если отброшено всё
// при непустом входе — ErrNoMatchedAnswers. Текст вопроса снапшотится.
func (s *ClaimService) SubmitClaim(ctx context.Context, itemID string, claimantID int64, responses []ResponseInput) (*model.Claim, error) {
	item, err := s.getItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID == claimantID {
		return nil, ErrSelfClaim
	}

	vq, err := s.getQuestions(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if _, err := s.claims.FindActive(ctx, itemID, claimantID); err == nil {
		return nil, ErrDuplicateClaim
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	questionText := make(map[string]string, len(vq.Questions))
	for _, q := range vq.Questions {
		questionText[q.ID] = q.Question
	}

	kept := make([]model.ClaimResponse, 0, len(responses))
	for _, r := range responses {
		text, ok := questionText[r.QuestionID]
		if !ok {
			s.logger.Warnw("claim response references unknown question",
				"item_id", itemID, "question_id", r.QuestionID)
			continue
		}
		kept = append(kept, model.ClaimResponse{
			QuestionID: r.QuestionID,
			Question:   text,
			Answer:     r.Response,
		})
	}
	if len(kept) == 0 && len(responses) > 0 {
		return nil, ErrNoMatchedAnswers
	}

	claim := &model.Claim{
		ID:         uuid.NewString(),
		ItemID:     itemID,
		ClaimantID: claimantID,
		Responses:  kept,
		Status:     model.ClaimPending,
		Active:     model.ClaimActive(),
	}
	if err := s.claims.Create(ctx, claim); err != nil {
		// проигравший гонку одновременных подач упирается в уникальный
		// индекс активной заявки
		if repo.IsDuplicatedKey(err) {
			return nil, ErrDuplicateClaim
		}
		return nil, err
	}

	s.metrics.ClaimsSubmitted.Inc()
	s.emitNotifyIntent(ctx, claim, item)
	return claim, nil
}

// ListClaimsByClaimant — заявки пользователя с проекциями предметов, новые первыми.
func (s *ClaimService) ListClaimsByClaimant(ctx context.Context, claimantID int64) ([]ClaimWithItem, error) {
	claims, err := s.claims.ListByClaimant(ctx, claimantID, "")
	if err != nil {
		return nil, err
	}
	out := make([]ClaimWithItem, 0, len(claims))
	for _, c := range claims {
		entry := ClaimWithItem{
			ID:        c.ID,
			Status:    c.Status,
			Responses: c.Responses,
			CreatedAt: c.CreatedAt,
		}
		if item, err := s.items.GetByID(ctx, c.ItemID); err == nil {
			entry.Item = projectItem(item)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// ListPendingClaimsForOwner — ожидающие заявки на все предметы владельца,
// с контактами заявителей, новые первыми.
func (s *ClaimService) ListPendingClaimsForOwner(ctx context.Context, ownerID int64) ([]PendingClaim, error) {
	items, err := s.items.ListByUser(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	names := make(map[string]string, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
		names[it.ID] = it.Name
	}

	claims, err := s.claims.ListPendingForItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]PendingClaim, 0, len(claims))
	for _, c := range claims {
		out = append(out, PendingClaim{
			ID:        c.ID,
			ItemID:    c.ItemID,
			ItemName:  names[c.ItemID],
			Claimant:  model.ContactOf(c.Claimant, true),
			Responses: c.Responses,
			CreatedAt: c.CreatedAt,
		})
	}
	return out, nil
}

// Decide — решение владельца по заявке: approved или rejected.
//
// Повторное решение — ErrClaimDecided, даже с тем же статусом. Одобрение
// атомарно закрепляет предмет за заявителем; отклонение предмет не трогает.
func (s *ClaimService) Decide(ctx context.Context, claimID string, callerID int64, status string) (*model.Claim, error) {
	if status != model.ClaimApproved && status != model.ClaimRejected {
		return nil, ErrInvalidStatus
	}

	claim, err := s.claims.GetByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClaimNotFound
		}
		return nil, err
	}
	if claim.Status != model.ClaimPending {
		return nil, ErrClaimDecided
	}

	item, err := s.getItem(ctx, claim.ItemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != callerID {
		return nil, ErrNotOwner
	}

	if err := s.claims.Decide(ctx, claim, status); err != nil {
		// проигравший из двух конкурентных решений
		if errors.Is(err, repo.ErrClaimNotPending) {
			return nil, ErrClaimDecided
		}
		return nil, err
	}

	claim.Status = status
	if status == model.ClaimApproved {
		s.metrics.ClaimsApproved.Inc()
	} else {
		s.metrics.ClaimsRejected.Inc()
		claim.Active = nil
	}
	s.logger.Infow("claim decided",
		"claim_id", claim.ID, "item_id", claim.ItemID, "status", status, "owner_id", callerID)
	return claim, nil
}

// ListApprovedClaimedItems — предметы, по которым у заявителя одобрена
// заявка, с контактами владельцев. Удалённые предметы молча пропускаются.
func (s *ClaimService) ListApprovedClaimedItems(ctx context.Context, claimantID int64) ([]ClaimedItem, error) {
	claims, err := s.claims.ListByClaimant(ctx, claimantID, model.ClaimApproved)
	if err != nil {
		return nil, err
	}
	out := make([]ClaimedItem, 0, len(claims))
	for _, c := range claims {
		item, err := s.items.GetByID(ctx, c.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}
		owner, err := s.users.GetUserByID(ctx, item.UserID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		out = append(out, ClaimedItem{Item: *item, PostedBy: model.ContactOf(owner, true)})
	}
	return out, nil
}

// CheckImageAccess — предикат права на закрытую картинку предмета:
// владелец либо заявитель с одобренной заявкой. Это проверка возможности,
// а не чтение данных: любая ошибка поиска означает отказ, не исключение.
func (s *ClaimService) CheckImageAccess(ctx context.Context, userID int64, itemID string) bool {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return false
	}
	if item.UserID == userID {
		return true
	}
	ok, err := s.claims.HasApproved(ctx, itemID, userID)
	if err != nil {
		return false
	}
	return ok
}

func (s *ClaimService) emitNotifyIntent(ctx context.Context, claim *model.Claim, item *model.Item) {
	owner, err := s.users.GetUserByID(ctx, item.UserID)
	if err != nil {
		s.logger.Warnw("item owner not found during claim submission",
			"item_id", item.ID, "owner_id", item.UserID)
		return
	}
	ev := notify.ClaimEvent{
		ClaimID:    claim.ID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		OwnerID:    owner.ID,
		OwnerEmail: owner.Email,
		ClaimantID: claim.ClaimantID,
	}
	if err := s.notifier.ClaimSubmitted(ctx, ev); err != nil {
		// намерение уведомить не должно ронять подачу заявки
		s.logger.Errorw("failed to publish claim notification intent",
			"claim_id", claim.ID, "error", err)
	}
}

func (s *ClaimService) getItem(ctx context.Context, itemID string) (*model.Item, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *ClaimService) getQuestions(ctx context.Context, itemID string) (*model.VerificationQuestion, error) {
	vq, err := s.questions.GetByItemID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionsNotFound
		}
		return nil, err
	}
	return vq, nil
}

func projectItem(it *model.Item) *ItemProjection {
	return &ItemProjection{
		ID:          it.ID,
		Name:        it.Name,
		Category:    it.Category,
		Description: it.Description,
		Date:        it.Date,
		Time:        it.Time,
		Location:    it.Location,
		Image:       it.Image,
		Type:        it.Type,
	}
}
