package handlers

import (
	"LostFound/internal/service"
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// itemIDRe — форма идентификатора предмета: 24 hex-символа.
var itemIDRe = regexp.MustCompile(`^[a-f0-9]{24}$`)

// ClaimHandler обрабатывает процесс заявок на предметы.
type ClaimHandler struct {
	ClaimService *service.ClaimService
	Logger       *zap.SugaredLogger
	Validate     *validator.Validate
}

// NewClaimHandler создаёт хендлер заявок.
func NewClaimHandler(claimService *service.ClaimService, logger *zap.SugaredLogger, v *validator.Validate) *ClaimHandler {
	return &ClaimHandler{ClaimService: claimService, Logger: logger, Validate: v}
}

type submitClaimRequest struct {
	Responses []claimResponseInput `json:"responses" validate:"required,dive"`
}

type claimResponseInput struct {
	QuestionID string `json:"questionId" validate:"required"`
	Response   string `json:"response"`
}

type verifyClaimRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

// Questions — GET /claims/items/{itemId}/questions: вопросы без ответов.
func (h *ClaimHandler) Questions(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(w, r); !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	questions, err := h.ClaimService.ListQuestions(r.Context(), itemID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", questions)
}

// Submit — POST /claims/items/{itemId}/claim: подача заявки.
func (h *ClaimHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	var req submitClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	responses := make([]service.ResponseInput, 0, len(req.Responses))
	for _, in := range req.Responses {
		responses = append(responses, service.ResponseInput{QuestionID: in.QuestionID, Response: in.Response})
	}

	if _, err := h.ClaimService.SubmitClaim(r.Context(), itemID, userID, responses); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusCreated,
		"claim submitted successfully, the item owner will review your answers", nil)
}

// MyClaims — GET /claims/my-claims: заявки пользователя с предметами.
func (h *ClaimHandler) MyClaims(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	claims, err := h.ClaimService.ListClaimsByClaimant(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", claims)
}

// MyItemsClaims — GET /claims/my-items-claims: ожидающие заявки на предметы
// владельца.
func (h *ClaimHandler) MyItemsClaims(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	claims, err := h.ClaimService.ListPendingClaimsForOwner(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", claims)
}

// Verify — PUT /claims/{claimId}/verify: решение владельца по заявке.
func (h *ClaimHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	claimID := chi.URLParam(r, "claimId")

	var req verifyClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	claim, err := h.ClaimService.Decide(r.Context(), claimID, userID, req.Status)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "claim "+claim.Status+" successfully", claim)
}

// ClaimedItems — GET /claims/claimed-items: предметы с одобренной заявкой
// пользователя и контактами владельцев.
func (h *ClaimHandler) ClaimedItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	items, err := h.ClaimService.ListApprovedClaimedItems(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", items)
}

// itemIDParam валидирует path-параметр itemId; не 24 hex — 400.
func itemIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "itemId")
	if !itemIDRe.MatchString(id) {
		writeFail(w, http.StatusBadRequest, "invalid item ID format")
		return "", false
	}
	return id, true
}
