package model

import "time"

// User — зарегистрированный пользователь кампуса.
// Пароль хранится только как bcrypt-хеш и никогда не сериализуется в ответы.
type User struct {
	ID    int64  `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Phone string `gorm:"not null" json:"phone"`

	Password string `gorm:"not null" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Contact — публичная проекция контактов пользователя для выдач,
// где владельцу/заявителю положено видеть контакты второй стороны.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// ContactOf собирает контактную проекцию. withPhone=false — для публичных списков.
func ContactOf(u *User, withPhone bool) Contact {
	if u == nil {
		return Contact{}
	}
	c := Contact{Name: u.Name, Email: u.Email}
	if withPhone {
		c.Phone = u.Phone
	}
	return c
}
