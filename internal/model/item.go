package model

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Тип объявления.
const (
	TypeLost  = "lost"
	TypeFound = "found"
)

// Статусы предмета. StatusPendingClaim зарезервирован схемой,
// но ни один код его не выставляет — переходы только open -> claimed.
const (
	StatusOpen         = "open"
	StatusPendingClaim = "pending_claim"
	StatusClaimed      = "claimed"
)

// Categories — закрытый перечень категорий предметов.
var Categories = []string{
	"electronics",
	"personal_belongings",
	"documents",
	"clothing",
	"accessories",
	"keys",
	"bags",
	"jewelry",
	"eyewear",
	"umbrellas",
	"chargers",
	"headphones",
	"water_bottles",
	"other",
}

// Item — одно объявление о потерянном или найденном предмете.
// Инвариант: ClaimedBy != nil тогда и только тогда, когда Status == claimed.
type Item struct {
	ID     string `gorm:"primaryKey;size:24" json:"id"`
	UserID int64  `gorm:"not null;index" json:"user_id"`

	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	Type        string    `gorm:"not null" json:"type"`
	Name        string    `gorm:"not null" json:"name"`
	Category    string    `gorm:"not null" json:"category"`
	Description string    `gorm:"not null" json:"description"`
	Date        time.Time `gorm:"not null" json:"date"`
	Time        string    `gorm:"not null" json:"time"`
	Location    string    `gorm:"not null" json:"location"`
	Image       string    `json:"image,omitempty"`

	Status    string `gorm:"not null;default:open" json:"status"`
	ClaimedBy *int64 `gorm:"index" json:"claimed_by,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewItemID генерирует идентификатор предмета: 24 hex-символа.
// Такая форма — часть контракта secure-image: идентификатор предмета
// извлекается как ведущий сегмент имени файла.
func NewItemID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand на поддерживаемых платформах не возвращает ошибок
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// ValidCategory проверяет категорию по закрытому перечню.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
