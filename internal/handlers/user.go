package handlers

import (
	"LostFound/internal/config"
	"LostFound/internal/middleware"
	"LostFound/internal/service"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// UserHandler обрабатывает регистрацию, вход и смену пароля.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
	Validate    *validator.Validate
}

// NewUserHandler создаёт хендлер пользователей.
func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config, v *validator.Validate) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg, Validate: v}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=50,alphaspace"`
	Email    string `json:"email" validate:"required,email,campusemail"`
	Phone    string `json:"phone" validate:"required,phone10"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// authResponse — токен и публичные поля пользователя.
type authResponse struct {
	Token string   `json:"token"`
	User  userInfo `json:"user"`
}

type userInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Register регистрирует пользователя и сразу выдаёт токен.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if err := h.Validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusCreated, "registration successful", authResponse{
		Token: token,
		User:  userInfo{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone},
	})
}

// Login проверяет учётные данные и выдаёт токен.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.Validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	user, err := h.UserService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "login successful", authResponse{
		Token: token,
		User:  userInfo{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone},
	})
}

// ChangePassword меняет пароль аутентифицированного пользователя.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "password changed successfully", nil)
}

func (h *UserHandler) issueToken(userID int64) (string, error) {
	ttl := time.Duration(h.Config.TokenTTLHours) * time.Hour
	return middleware.BuildToken(userID, h.Config.AuthSecret, ttl)
}

// requireAuth достаёт пользователя из контекста; без него — 401 с конвертом.
func requireAuth(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		writeFail(w, http.StatusUnauthorized, "authorization required")
		return 0, false
	}
	return userID, true
}
