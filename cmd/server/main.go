package main

import (
	"LostFound/internal/config"
	"LostFound/internal/handlers"
	"LostFound/internal/metrics"
	"LostFound/internal/middleware"
	"LostFound/internal/notify"
	"LostFound/internal/repo"
	"LostFound/internal/service"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	for _, dir := range []string{cfg.PrivateUploadDir, cfg.PublicUploadDir, filepath.Dir(cfg.PlaceholderPath)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			sugar.Fatalw("failed to create upload directory", "dir", dir, "error", err)
		}
	}

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}

	userRepo := repo.NewUserRepository(gormDB)
	itemRepo := repo.NewItemRepository(gormDB)
	questionRepo := repo.NewQuestionRepository(gormDB)
	claimRepo := repo.NewClaimRepository(gormDB)

	m := metrics.New(prometheus.DefaultRegisterer)

	var notifier notify.Notifier = &notify.LogNotifier{Logger: sugar}
	if cfg.RedisURL != "" {
		notifier, err = notify.NewRedisNotifier(cfg.RedisURL)
		if err != nil {
			sugar.Fatalw("failed to connect to redis", "error", err)
		}
	}
	defer func() {
		if err := notifier.Close(); err != nil {
			sugar.Errorw("Failed to close notifier", "error", err)
		}
	}()

	userService := service.NewUserService(userRepo)
	itemService := service.NewItemService(itemRepo, claimRepo, questionRepo, userRepo, m, sugar)
	claimService := service.NewClaimService(claimRepo, itemRepo, questionRepo, userRepo, notifier, m, sugar)

	h := handlers.NewHandler(userService, itemService, claimService, m, sugar, cfg)

	sugar.Infow(
		"Starting server",
		"addr", cfg.RunAddr,
	)

	sugar.Infow("Config",
		"RunAddr", cfg.RunAddr,
		"DatabaseDSN", cfg.DatabaseDSN,
		"RedisURL", cfg.RedisURL,
		"PrivateUploadDir", cfg.PrivateUploadDir,
		"PublicUploadDir", cfg.PublicUploadDir,
	)

	if err := http.ListenAndServe(cfg.RunAddr, h.Router); err != nil {
		sugar.Fatalw("Server failed", "error", err)
	}
}
