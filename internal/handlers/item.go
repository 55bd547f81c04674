package handlers

import (
	"LostFound/internal/config"
	"LostFound/internal/imaging"
	"LostFound/internal/model"
	"LostFound/internal/repo"
	"LostFound/internal/service"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ItemHandler обрабатывает реестр объявлений и загрузку картинок.
type ItemHandler struct {
	ItemService *service.ItemService
	Logger      *zap.SugaredLogger
	Config      *config.Config
	Validate    *validator.Validate
}

// NewItemHandler создаёт хендлер объявлений.
func NewItemHandler(itemService *service.ItemService, logger *zap.SugaredLogger, cfg *config.Config, v *validator.Validate) *ItemHandler {
	return &ItemHandler{ItemService: itemService, Logger: logger, Config: cfg, Validate: v}
}

type createItemRequest struct {
	Type        string `validate:"required,oneof=lost found"`
	Name        string `validate:"required,max=50"`
	Category    string `validate:"required,category"`
	Description string `validate:"required,max=500"`
	Date        string `validate:"required"`
	Time        string `validate:"required,hhmm"`
	Location    string `validate:"required,max=100"`
}

type questionInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// List — GET /items: публичная выдача с фильтрами search/category/type.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repo.ItemFilter{
		Type:   q.Get("type"),
		Search: q.Get("search"),
	}
	// фронтовое значение «все категории» фильтр не включает
	if c := q.Get("category"); c != "" && c != "All Categories" {
		f.Category = c
	}

	items, err := h.ItemService.ListItems(r.Context(), f)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", items)
}

// Create — POST /items: multipart-форма с полями объявления, опциональной
// картинкой и (для найденных) JSON-списком проверочных вопросов.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}

	maxImage := int64(h.Config.ImageMaxMB) * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, maxImage+1024*1024)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := createItemRequest{
		Type:        r.FormValue("type"),
		Name:        strings.TrimSpace(r.FormValue("name")),
		Category:    r.FormValue("category"),
		Description: strings.TrimSpace(r.FormValue("description")),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Location:    strings.TrimSpace(r.FormValue("location")),
	}
	if err := h.Validate.Struct(req); err != nil {
		writeFail(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeFail(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	if date.After(time.Now()) {
		writeFail(w, http.StatusBadRequest, "date must not be in the future")
		return
	}

	questions, ok := h.parseQuestions(w, req.Type, r.FormValue("questions"))
	if !ok {
		return
	}

	// ID генерируется заранее: имя файла картинки начинается с ID предмета —
	// этого требует контракт secure-image
	itemID := model.NewItemID()

	imageName, ok := h.storeImage(w, r, itemID, req.Type, maxImage)
	if !ok {
		return
	}

	item, err := h.ItemService.CreateItem(r.Context(), service.CreateItemInput{
		ID:          itemID,
		UserID:      userID,
		Type:        req.Type,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Date:        date,
		Time:        req.Time,
		Location:    req.Location,
		Image:       imageName,
		Questions:   questions,
	})
	if err != nil {
		// компенсация: запись в БД не удалась — файл не должен осиротеть
		if imageName != "" {
			_ = os.Remove(filepath.Join(h.uploadDir(req.Type), imageName))
		}
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusCreated, "", item)
}

// UserItems — GET /items/user: объявления пользователя.
func (h *ItemHandler) UserItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	items, err := h.ItemService.ListUserItems(r.Context(), userID, r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", items)
}

// ClaimedItems — GET /items/claimed: предметы, закреплённые за пользователем.
func (h *ItemHandler) ClaimedItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	items, err := h.ItemService.ListClaimedItems(r.Context(), userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", items)
}

// ClaimedItemDetails — GET /items/claimed/{itemId}: детали для заявителя.
func (h *ItemHandler) ClaimedItemDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	item, err := h.ItemService.GetClaimedItemDetails(r.Context(), itemID, userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", item)
}

// Details — GET /items/details/{itemId}: объявление с контактами автора.
func (h *ItemHandler) Details(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(w, r); !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	item, err := h.ItemService.GetItemDetails(r.Context(), itemID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", item)
}

// Responses — GET /items/{itemId}/responses: заявки на предмет, владельцу.
func (h *ItemHandler) Responses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}
	claims, err := h.ItemService.GetItemResponses(r.Context(), itemID, userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", claims)
}

// Delete — DELETE /items/{itemId}: каскадное удаление объявления владельцем.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(w, r)
	if !ok {
		return
	}
	itemID, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	item, err := h.ItemService.DeleteItem(r.Context(), itemID, userID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if item.Image != "" {
		path := filepath.Join(h.uploadDir(item.Type), item.Image)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			h.Logger.Warnw("failed to remove item image", "path", path, "error", err)
		}
	}
	writeOK(w, http.StatusOK, "item and associated data deleted successfully", nil)
}

// parseQuestions разбирает и проверяет JSON-поле questions формы.
// Для потерянных предметов вопросы игнорируются.
func (h *ItemHandler) parseQuestions(w http.ResponseWriter, itemType, raw string) ([]service.QuestionInput, bool) {
	if itemType != model.TypeFound {
		return nil, true
	}
	if raw == "" {
		writeFail(w, http.StatusBadRequest, "verification questions are required for found items")
		return nil, false
	}

	var parsed []questionInput
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		writeFail(w, http.StatusBadRequest, "invalid questions format")
		return nil, false
	}
	if len(parsed) == 0 {
		writeFail(w, http.StatusBadRequest, "verification questions are required for found items")
		return nil, false
	}

	out := make([]service.QuestionInput, 0, len(parsed))
	for _, q := range parsed {
		question := strings.TrimSpace(q.Question)
		answer := strings.TrimSpace(q.Answer)
		if len(question) < 5 {
			writeFail(w, http.StatusBadRequest, "each question must be at least 5 characters long")
			return nil, false
		}
		if answer == "" {
			writeFail(w, http.StatusBadRequest, "each question must have an answer")
			return nil, false
		}
		out = append(out, service.QuestionInput{Question: question, Answer: answer})
	}
	return out, true
}

// storeImage обрабатывает опциональную картинку формы и пишет её на диск.
// Возвращает имя файла ("" — картинки нет) и признак успеха.
func (h *ItemHandler) storeImage(w http.ResponseWriter, r *http.Request, itemID, itemType string, maxImage int64) (string, bool) {
	file, _, err := r.FormFile("image")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", true
		}
		writeFail(w, http.StatusBadRequest, "invalid image upload")
		return "", false
	}
	defer file.Close()

	data, err := imaging.Process(file, maxImage)
	if err != nil {
		writeFail(w, http.StatusBadRequest, err.Error())
		return "", false
	}

	name := itemID + "-" + strconv.FormatInt(time.Now().UnixNano(), 10) + ".jpg"
	path := filepath.Join(h.uploadDir(itemType), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		h.Logger.Errorw("failed to store image", "path", path, "error", err)
		writeFail(w, http.StatusInternalServerError, "failed to store image")
		return "", false
	}
	return name, true
}

// uploadDir выбирает каталог: картинки найденных предметов закрыты
// (выдача через /secure-image), потерянных — публичны.
func (h *ItemHandler) uploadDir(itemType string) string {
	if itemType == model.TypeFound {
		return h.Config.PrivateUploadDir
	}
	return h.Config.PublicUploadDir
}
