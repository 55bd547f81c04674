package handlers_test

import (
	"LostFound/internal/config"
	"LostFound/internal/handlers"
	"LostFound/internal/metrics"
	"LostFound/internal/middleware"
	"LostFound/internal/model"
	"LostFound/internal/notify"
	"LostFound/internal/repo"
	"LostFound/internal/service"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// testServer — полный роутер поверх in-memory SQLite и временных каталогов.
// Сервисы и база открыты для прямой подготовки данных в тестах.
type testServer struct {
	router http.Handler
	cfg    *config.Config
	db     *gorm.DB
	users  *service.UserService
	items  *service.ItemService
	claims *service.ClaimService
}

func newTestServer(t *testing.T) *testServer {
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

	dir := t.TempDir()
	cfg := &config.Config{
		AuthSecret:          "test-secret",
		TokenTTLHours:       1,
		ImageMaxMB:          1,
		PrivateUploadDir:    filepath.Join(dir, "private"),
		PublicUploadDir:     filepath.Join(dir, "public"),
		PlaceholderPath:     filepath.Join(dir, "placeholder.jpg"),
		AllowedEmailDomains: "vitstudent.ac.in,vit.ac.in",
	}
	for _, d := range []string{cfg.PrivateUploadDir, cfg.PublicUploadDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("failed to create upload dir: %v", err)
		}
	}
	if err := os.WriteFile(cfg.PlaceholderPath, []byte("PLACEHOLDER"), 0o644); err != nil {
		t.Fatalf("failed to write placeholder: %v", err)
	}

	logger := zap.NewNop().Sugar()
	m := metrics.New(prometheus.NewRegistry())
	notifier := &notify.LogNotifier{Logger: logger}

	userRepo := repo.NewUserRepository(db)
	itemRepo := repo.NewItemRepository(db)
	questionRepo := repo.NewQuestionRepository(db)
	claimRepo := repo.NewClaimRepository(db)

	userSvc := service.NewUserService(userRepo)
	itemSvc := service.NewItemService(itemRepo, claimRepo, questionRepo, userRepo, m, logger)
	claimSvc := service.NewClaimService(claimRepo, itemRepo, questionRepo, userRepo, notifier, m, logger)

	h := handlers.NewHandler(userSvc, itemSvc, claimSvc, m, logger, cfg)
	return &testServer{
		router: h.Router,
		cfg:    cfg,
		db:     db,
		users:  userSvc,
		items:  itemSvc,
		claims: claimSvc,
	}
}

func (s *testServer) addUser(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := s.users.Register(t.Context(), "Test User", email, "9876543210", "password123")
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	return u
}

func (s *testServer) addFoundItem(t *testing.T, ownerID int64) *model.Item {
	t.Helper()
	item, err := s.items.CreateItem(t.Context(), service.CreateItemInput{
		UserID:      ownerID,
		Type:        model.TypeFound,
		Name:        "Blue Wallet",
		Category:    "personal_belongings",
		Description: "found near the library",
		Date:        time.Now().AddDate(0, 0, -1),
		Time:        "12:00",
		Location:    "Library",
		Questions:   []service.QuestionInput{{Question: "What color is it?", Answer: "blue"}},
	})
	if err != nil {
		t.Fatalf("failed to seed found item: %v", err)
	}
	return item
}

func (s *testServer) questionID(t *testing.T, itemID string) string {
	t.Helper()
	questions, err := s.claims.ListQuestions(t.Context(), itemID)
	if err != nil || len(questions) == 0 {
		t.Fatalf("failed to list questions: %v", err)
	}
	return questions[0].ID
}

func (s *testServer) token(t *testing.T, userID int64) string {
	t.Helper()
	token, err := middleware.BuildToken(userID, s.cfg.AuthSecret, time.Hour)
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}
	return token
}

// doJSON выполняет запрос с JSON-телом; userID == 0 — без аутентификации.
func (s *testServer) doJSON(t *testing.T, method, target string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+s.token(t, userID))
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

// decodeEnvelope разбирает единый конверт ответа.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) (bool, string, json.RawMessage) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v (body: %s)", err, rr.Body.String())
	}
	return env.Success, env.Message, env.Data
}
