package service

import (
	"LostFound/internal/metrics"
	"LostFound/internal/model"
	"LostFound/internal/notify"
	"LostFound/internal/repo"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// testEnv — сервисы поверх настоящих репозиториев и in-memory SQLite.
// Процесс заявок завязан на поведение хранилища (уникальный индекс,
// условные обновления), поэтому мокать репозитории здесь бессмысленно.
type testEnv struct {
	db     *gorm.DB
	users  repo.UserRepository
	items  *ItemService
	claims *ClaimService
	usrSvc *UserService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dial := gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Item{}, &model.VerificationQuestion{}, &model.Claim{}); err != nil {
		t.Fatalf("failed to automigrate: %v", err)
	}

	logger := zap.NewNop().Sugar()
	m := metrics.New(prometheus.NewRegistry())
	notifier := &notify.LogNotifier{Logger: logger}

	userRepo := repo.NewUserRepository(db)
	itemRepo := repo.NewItemRepository(db)
	questionRepo := repo.NewQuestionRepository(db)
	claimRepo := repo.NewClaimRepository(db)

	return &testEnv{
		db:     db,
		users:  userRepo,
		items:  NewItemService(itemRepo, claimRepo, questionRepo, userRepo, m, logger),
		claims: NewClaimService(claimRepo, itemRepo, questionRepo, userRepo, notifier, m, logger),
		usrSvc: NewUserService(userRepo),
	}
}

func (e *testEnv) addUser(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Name: "Test User", Email: email, Phone: "9876543210", Password: "hash"}
	if err := e.db.Create(u).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func (e *testEnv) addFoundItem(t *testing.T, ownerID int64, questions ...QuestionInput) *model.Item {
	t.Helper()
	if len(questions) == 0 {
		questions = []QuestionInput{{Question: "What color is it?", Answer: "blue"}}
	}
	item, err := e.items.CreateItem(t.Context(), CreateItemInput{
		UserID:      ownerID,
		Type:        model.TypeFound,
		Name:        "Blue Wallet",
		Category:    "personal_belongings",
		Description: "found near the library entrance",
		Date:        time.Now().AddDate(0, 0, -1),
		Time:        "15:45",
		Location:    "Library",
		Questions:   questions,
	})
	if err != nil {
		t.Fatalf("failed to seed found item: %v", err)
	}
	return item
}
