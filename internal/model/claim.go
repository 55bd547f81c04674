package model

import "time"

// Статусы заявки. Переходы только pending -> approved и pending -> rejected.
const (
	ClaimPending  = "pending"
	ClaimApproved = "approved"
	ClaimRejected = "rejected"
)

// ClaimResponse — ответ заявителя на один проверочный вопрос.
// Текст вопроса снапшотится на момент подачи: последующие правки набора
// вопросов не меняют содержимое уже поданной заявки.
type ClaimResponse struct {
	QuestionID string `json:"questionId"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// Claim — попытка пользователя доказать владение предметом.
//
// Поле Active держит инвариант «не более одной активной заявки на пару
// (предмет, заявитель)»: true пока заявка pending/approved и NULL после
// rejected. NULL-значения не конфликтуют в уникальном индексе, поэтому
// отклонённые заявки не блокируют повторную подачу, а гонка двух
// одновременных подач закрывается на уровне хранилища.
type Claim struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ItemID     string `gorm:"size:24;not null;index;uniqueIndex:idx_active_claim,priority:1" json:"item_id"`
	ClaimantID int64  `gorm:"not null;index;uniqueIndex:idx_active_claim,priority:2" json:"claimant_id"`

	Claimant *User `gorm:"foreignKey:ClaimantID;constraint:OnDelete:CASCADE" json:"-"`

	Responses []ClaimResponse `json:"responses" gorm:"serializer:json"`

	Status string `gorm:"not null;default:pending" json:"status"`
	Active *bool  `gorm:"uniqueIndex:idx_active_claim,priority:3" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ClaimActive — значение Active для заявки в состоянии pending/approved.
func ClaimActive() *bool {
	v := true
	return &v
}
