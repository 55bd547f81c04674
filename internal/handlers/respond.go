package handlers

import (
	"LostFound/internal/repo"
	"LostFound/internal/service"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// envelope — единый конверт всех JSON-ответов API.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeFail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Message: message})
}

// writeError отображает сентинельные ошибки сервисов в HTTP-статусы.
// Неожиданные ошибки логируются с подробностями, клиенту уходит общий текст.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrWrongPassword):
		writeFail(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrSelfClaim),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrNotClaimant):
		writeFail(w, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrClaimNotFound),
		errors.Is(err, service.ErrQuestionsNotFound):
		writeFail(w, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrDuplicateClaim),
		errors.Is(err, service.ErrClaimDecided),
		errors.Is(err, repo.ErrClaimNotPending):
		writeFail(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrQuestionsRequired),
		errors.Is(err, service.ErrNoMatchedAnswers),
		errors.Is(err, service.ErrInvalidItemID):
		writeFail(w, http.StatusBadRequest, err.Error())

	default:
		logger.Errorw("internal error", "error", err)
		writeFail(w, http.StatusInternalServerError, "internal server error")
	}
}
