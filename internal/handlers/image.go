package handlers

import (
	"LostFound/internal/config"
	"LostFound/internal/metrics"
	"LostFound/internal/middleware"
	"LostFound/internal/service"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// imagePrefixRe — имя файла закрытой картинки начинается с ID предмета.
var imagePrefixRe = regexp.MustCompile(`(?i)^([a-f0-9]{24})`)

// ImageHandler выдаёт закрытые картинки найденных предметов.
// Доступ разрешён владельцу объявления и заявителям с одобренной заявкой,
// токен передаётся query-параметром (тег img не умеет ставить заголовки).
// При любом отказе клиенту уходит картинка-заглушка, а не JSON.
type ImageHandler struct {
	ClaimService *service.ClaimService
	Metrics      *metrics.Metrics
	Logger       *zap.SugaredLogger
	Config       *config.Config
}

// NewImageHandler создаёт хендлер закрытых картинок.
func NewImageHandler(claimService *service.ClaimService, m *metrics.Metrics, logger *zap.SugaredLogger, cfg *config.Config) *ImageHandler {
	return &ImageHandler{ClaimService: claimService, Metrics: m, Logger: logger, Config: cfg}
}

// ServeSecureImage — GET /secure-image/{filename}?token=...
func (h *ImageHandler) ServeSecureImage(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			h.Logger.Errorw("panic while serving secure image", "panic", rec)
			h.placeholder(w, r, http.StatusInternalServerError)
		}
	}()

	filename := chi.URLParam(r, "filename")
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		h.placeholder(w, r, http.StatusBadRequest)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		h.placeholder(w, r, http.StatusUnauthorized)
		return
	}
	userID, err := middleware.ParseToken(token, h.Config.AuthSecret)
	if err != nil {
		h.Metrics.ImageAccessDenied.Inc()
		h.placeholder(w, r, http.StatusForbidden)
		return
	}

	m := imagePrefixRe.FindStringSubmatch(filename)
	if m == nil {
		h.placeholder(w, r, http.StatusBadRequest)
		return
	}
	itemID := strings.ToLower(m[1])

	if !h.ClaimService.CheckImageAccess(r.Context(), userID, itemID) {
		h.Metrics.ImageAccessDenied.Inc()
		h.Logger.Infow("secure image access denied", "user_id", userID, "item_id", itemID)
		h.placeholder(w, r, http.StatusForbidden)
		return
	}

	path := filepath.Join(h.Config.PrivateUploadDir, filename)
	if _, err := os.Stat(path); err != nil {
		// снаружи отказ в доступе и отсутствие файла неразличимы
		h.Logger.Warnw("secure image file missing", "path", path)
		h.placeholder(w, r, http.StatusForbidden)
		return
	}
	http.ServeFile(w, r, path)
}

// placeholder отдаёт картинку-заглушку с заданным статусом.
func (h *ImageHandler) placeholder(w http.ResponseWriter, r *http.Request, status int) {
	data, err := os.ReadFile(h.Config.PlaceholderPath)
	if err != nil {
		h.Logger.Errorw("placeholder image unreadable", "path", h.Config.PlaceholderPath, "error", err)
		http.Error(w, "Placeholder not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
