package service

import (
	"LostFound/internal/metrics"
	"LostFound/internal/model"
	"LostFound/internal/notify"
	"LostFound/internal/repo"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func submitResponses(vqAnswers []model.PublicQuestion, answer string) []ResponseInput {
	out := make([]ResponseInput, 0, len(vqAnswers))
	for _, q := range vqAnswers {
		out = append(out, ResponseInput{QuestionID: q.ID, Response: answer})
	}
	return out
}

func TestClaimService_ListQuestionsStripsAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@vitstudent.ac.in")
	claimant := env.addUser(t, "claimant@vitstudent.ac.in")
	item := env.addFoundItem(t, owner.ID,
		QuestionInput{Question: "What is engraved on it?", Answer: "AB-1999"})
	_ = claimant

	questions, err := env.claims.ListQuestions(ctx, item.ID)
	assert.NoError(t, err)
	if assert.Len(t, questions, 1) {
		assert.Equal(t, "What is engraved on it?", questions[0].Question)
		assert.NotEmpty(t, questions[0].ID)
	}
}

func TestClaimService_SubmitClaim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@vitstudent.ac.in")
	claimant := env.addUser(t, "claimant@vitstudent.ac.in")
	item := env.addFoundItem(t, owner.ID)

	questions, err := env.claims.ListQuestions(ctx, item.ID)
	assert.NoError(t, err)

	t.Run("owner cannot claim own item", func(t *testing.T) {
		_, err := env.claims.SubmitClaim(ctx, item.ID, owner.ID, submitResponses(questions, "blue"))
		assert.ErrorIs(t, err, ErrSelfClaim)
	})

	t.Run("unknown item", func(t *testing.T) {
		_, err := env.claims.SubmitClaim(ctx, "ffffffffffffffffffffffff", claimant.ID, nil)
		assert.ErrorIs(t, err, ErrItemNotFound)
	})

	t.Run("responses to unknown questions are dropped", func(t *testing.T) {
		mixed := append(submitResponses(questions, "blue"),
			ResponseInput{QuestionID: "no-such-question", Response: "x"})
		claim, err := env.claims.SubmitClaim(ctx, item.ID, claimant.ID, mixed)
		assert.NoError(t, err)
		if assert.Len(t, claim.Responses, 1) {
			// текст вопроса снапшотится в заявку
			assert.Equal(t, questions[0].Question, claim.Responses[0].Question)
			assert.Equal(t, "blue", claim.Responses[0].Answer)
		}
		assert.Equal(t, model.ClaimPending, claim.Status)
	})

	t.Run("duplicate active claim is rejected", func(t *testing.T) {
		_, err := env.claims.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "blue"))
		assert.ErrorIs(t, err, ErrDuplicateClaim)
	})

	t.Run("all responses unmatched", func(t *testing.T) {
		other := env.addUser(t, "other@vitstudent.ac.in")
		_, err := env.claims.SubmitClaim(ctx, item.ID, other.ID,
			[]ResponseInput{{QuestionID: "bogus", Response: "x"}})
		assert.ErrorIs(t, err, ErrNoMatchedAnswers)
	})
}

// racingClaimRepo имитирует окно гонки двух одновременных подач: проверка
// FindActive «не видит» чужую заявку, и дубликат доходит до уникального
// индекса хранилища.
type racingClaimRepo struct{ repo.ClaimRepository }

func (racingClaimRepo) FindActive(context.Context, string, int64) (*model.Claim, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestClaimService_SubmitRaceLoserGetsDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@vitstudent.ac.in")
	claimant := env.addUser(t, "claimant@vitstudent.ac.in")
	item := env.addFoundItem(t, owner.ID)

	logger := zap.NewNop().Sugar()
	svc := NewClaimService(
		racingClaimRepo{repo.NewClaimRepository(env.db)},
		repo.NewItemRepository(env.db),
		repo.NewQuestionRepository(env.db),
		env.users,
		&notify.LogNotifier{Logger: logger},
		metrics.New(prometheus.NewRegistry()),
		logger,
	)

	questions, _ := env.claims.ListQuestions(ctx, item.ID)
	_, err := svc.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "blue"))
	assert.NoError(t, err)

	// проигравший гонку упирается в индекс; сырая ошибка sqlite должна
	// отобразиться в ErrDuplicateClaim, а не уйти наверх как 500
	_, err = svc.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "blue"))
	assert.ErrorIs(t, err, ErrDuplicateClaim)
}

func TestClaimService_Decide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@vitstudent.ac.in")
	claimant := env.addUser(t, "claimant@vitstudent.ac.in")
	stranger := env.addUser(t, "stranger@vitstudent.ac.in")
	item := env.addFoundItem(t, owner.ID)

	questions, _ := env.claims.ListQuestions(ctx, item.ID)
	claim, err := env.claims.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "blue"))
	assert.NoError(t, err)

	t.Run("invalid status", func(t *testing.T) {
		_, err := env.claims.Decide(ctx, claim.ID, owner.ID, "maybe")
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("only owner decides", func(t *testing.T) {
		_, err := env.claims.Decide(ctx, claim.ID, stranger.ID, model.ClaimApproved)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("approve pins the item to the claimant", func(t *testing.T) {
		decided, err := env.claims.Decide(ctx, claim.ID, owner.ID, model.ClaimApproved)
		assert.NoError(t, err)
		assert.Equal(t, model.ClaimApproved, decided.Status)

		var it model.Item
		assert.NoError(t, env.db.First(&it, "id = ?", item.ID).Error)
		assert.Equal(t, model.StatusClaimed, it.Status)
		if assert.NotNil(t, it.ClaimedBy) {
			assert.Equal(t, claimant.ID, *it.ClaimedBy)
		}
	})

	t.Run("second decision conflicts even with same status", func(t *testing.T) {
		_, err := env.claims.Decide(ctx, claim.ID, owner.ID, model.ClaimApproved)
		assert.ErrorIs(t, err, ErrClaimDecided)
	})

	t.Run("unknown claim", func(t *testing.T) {
		_, err := env.claims.Decide(ctx, "00000000-0000-0000-0000-000000000000", owner.ID, model.ClaimRejected)
		assert.ErrorIs(t, err, ErrClaimNotFound)
	})
}

func TestClaimService_RejectAllowsResubmission(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@vitstudent.ac.in")
	claimant := env.addUser(t, "claimant@vitstudent.ac.in")
	item := env.addFoundItem(t, owner.ID)
	questions, _ := env.claims.ListQuestions(ctx, item.ID)

	claim, err := env.claims.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "wrong"))
	assert.NoError(t, err)

	decided, err := env.claims.Decide(ctx, claim.ID, owner.ID, model.ClaimRejected)
	assert.NoError(t, err)
	assert.Equal(t, model.ClaimRejected, decided.Status)

	// отклонение не трогает предмет
	var it model.Item
	assert.NoError(t, env.db.First(&it, "id = ?", item.ID).Error)
	assert.Equal(t, model.StatusOpen, it.Status)
	assert.Nil(t, it.ClaimedBy)

	// и не блокирует новую попытку того же заявителя
	again, err := env.claims.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "blue"))
	assert.NoError(t, err)
	assert.NotEqual(t, claim.ID, again.ID)
}

func TestClaimService_OwnerAndClaimantViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@vitstudent.ac.in")
	claimant := env.addUser(t, "claimant@vitstudent.ac.in")
	item := env.addFoundItem(t, owner.ID)
	questions, _ := env.claims.ListQuestions(ctx, item.ID)

	claim, err := env.claims.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "blue"))
	assert.NoError(t, err)

	// владелец видит ожидающую заявку с контактами заявителя
	pending, err := env.claims.ListPendingClaimsForOwner(ctx, owner.ID)
	assert.NoError(t, err)
	if assert.Len(t, pending, 1) {
		assert.Equal(t, claim.ID, pending[0].ID)
		assert.Equal(t, item.Name, pending[0].ItemName)
		assert.Equal(t, claimant.Email, pending[0].Claimant.Email)
	}

	// заявитель видит свою заявку с проекцией предмета
	mine, err := env.claims.ListClaimsByClaimant(ctx, claimant.ID)
	assert.NoError(t, err)
	if assert.Len(t, mine, 1) {
		assert.NotNil(t, mine[0].Item)
		assert.Equal(t, item.ID, mine[0].Item.ID)
	}

	// после одобрения предмет появляется в claimed-items с контактами владельца
	_, err = env.claims.Decide(ctx, claim.ID, owner.ID, model.ClaimApproved)
	assert.NoError(t, err)

	claimed, err := env.claims.ListApprovedClaimedItems(ctx, claimant.ID)
	assert.NoError(t, err)
	if assert.Len(t, claimed, 1) {
		assert.Equal(t, item.ID, claimed[0].Item.ID)
		assert.Equal(t, owner.Email, claimed[0].PostedBy.Email)
		assert.Equal(t, owner.Phone, claimed[0].PostedBy.Phone)
	}

	// удалённый предмет молча выпадает из выдачи
	assert.NoError(t, env.db.Where("item_id = ?", item.ID).Delete(&model.VerificationQuestion{}).Error)
	assert.NoError(t, env.db.Delete(&model.Item{}, "id = ?", item.ID).Error)
	claimed, err = env.claims.ListApprovedClaimedItems(ctx, claimant.ID)
	assert.NoError(t, err)
	assert.Empty(t, claimed)
}

func TestClaimService_CheckImageAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.addUser(t, "owner@vitstudent.ac.in")
	claimant := env.addUser(t, "claimant@vitstudent.ac.in")
	stranger := env.addUser(t, "stranger@vitstudent.ac.in")
	item := env.addFoundItem(t, owner.ID)
	questions, _ := env.claims.ListQuestions(ctx, item.ID)

	// владелец — всегда да, остальные — нет
	assert.True(t, env.claims.CheckImageAccess(ctx, owner.ID, item.ID))
	assert.False(t, env.claims.CheckImageAccess(ctx, claimant.ID, item.ID))
	assert.False(t, env.claims.CheckImageAccess(ctx, stranger.ID, item.ID))

	// pending-заявка доступ не открывает
	claim, err := env.claims.SubmitClaim(ctx, item.ID, claimant.ID, submitResponses(questions, "blue"))
	assert.NoError(t, err)
	assert.False(t, env.claims.CheckImageAccess(ctx, claimant.ID, item.ID))

	// одобренная — открывает, и только заявителю
	_, err = env.claims.Decide(ctx, claim.ID, owner.ID, model.ClaimApproved)
	assert.NoError(t, err)
	assert.True(t, env.claims.CheckImageAccess(ctx, claimant.ID, item.ID))
	assert.False(t, env.claims.CheckImageAccess(ctx, stranger.ID, item.ID))

	// несуществующий предмет — отказ, не ошибка
	assert.False(t, env.claims.CheckImageAccess(ctx, owner.ID, "ffffffffffffffffffffffff"))
}
