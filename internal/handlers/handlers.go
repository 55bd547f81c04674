package handlers

import (
	"LostFound/internal/config"
	"LostFound/internal/metrics"
	"LostFound/internal/middleware"
	"LostFound/internal/service"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	itemService *service.ItemService,
	claimService *service.ClaimService,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	v := newValidator(config.EmailDomains())

	// Handlers
	userHandler := NewUserHandler(userService, logger, config, v)
	itemHandler := NewItemHandler(itemService, logger, config, v)
	claimHandler := NewClaimHandler(claimService, logger, v)
	imageHandler := NewImageHandler(claimService, m, logger, config)

	// Auth routes
	r.Post("/api/auth/register", userHandler.Register)
	r.Post("/api/auth/login", userHandler.Login)
	r.Post("/api/auth/change-password", userHandler.ChangePassword)

	// Item routes
	r.Get("/api/items", itemHandler.List)
	r.Post("/api/items", itemHandler.Create)
	r.Get("/api/items/user", itemHandler.UserItems)
	r.Get("/api/items/claimed", itemHandler.ClaimedItems)
	r.Get("/api/items/claimed/{itemId}", itemHandler.ClaimedItemDetails)
	r.Get("/api/items/details/{itemId}", itemHandler.Details)
	r.Get("/api/items/{itemId}/responses", itemHandler.Responses)
	r.Delete("/api/items/{itemId}", itemHandler.Delete)

	// Claim routes
	r.Get("/api/claims/items/{itemId}/questions", claimHandler.Questions)
	r.Post("/api/claims/items/{itemId}/claim", claimHandler.Submit)
	r.Get("/api/claims/my-claims", claimHandler.MyClaims)
	r.Get("/api/claims/my-items-claims", claimHandler.MyItemsClaims)
	r.Get("/api/claims/claimed-items", claimHandler.ClaimedItems)
	r.Put("/api/claims/{claimId}/verify", claimHandler.Verify)

	// Картинки: закрытые через проверку доступа, открытые — как статика
	r.Get("/secure-image/{filename}", imageHandler.ServeSecureImage)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(config.PublicUploadDir))))

	r.Handle("/metrics", promhttp.Handler())

	return &Handler{Router: r}
}
