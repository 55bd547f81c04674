package repo

import (
	"LostFound/internal/model"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	// успешное создание
	u, err := r.CreateUser(ctx, &model.User{
		Name: "John Doe", Email: "john@vitstudent.ac.in", Phone: "9876543210", Password: "hash",
	})
	assert.NoError(t, err)
	assert.NotZero(t, u.ID)

	// поиск по email — найдено
	got, err := r.GetUserByEmail(ctx, "john@vitstudent.ac.in")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	// уникальный email — вторая вставка распознаётся как дубликат
	// (на modernc-sqlite это сырой код 2067, не gorm.ErrDuplicatedKey)
	_, err = r.CreateUser(ctx, &model.User{
		Name: "Clone", Email: "john@vitstudent.ac.in", Phone: "1234567890", Password: "x",
	})
	assert.Error(t, err)
	assert.True(t, IsDuplicatedKey(err))

	// поиск несуществующего — ожидаем gorm.ErrRecordNotFound
	got, err = r.GetUserByEmail(ctx, "nobody@vitstudent.ac.in")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepository(db)
	ctx := context.Background()

	u, err := r.CreateUser(ctx, &model.User{
		Name: "Alice", Email: "alice@vit.ac.in", Phone: "9000000001", Password: "old-hash",
	})
	assert.NoError(t, err)

	assert.NoError(t, r.UpdatePassword(ctx, u.ID, "new-hash"))

	got, err := r.GetUserByID(ctx, u.ID)
	assert.NoError(t, err)
	assert.Equal(t, "new-hash", got.Password)
}
