package repo

import (
	"LostFound/internal/model"
	"errors"
	"strings"

	gormpg "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"modernc.org/sqlite"
)

// Коды расширенных ошибок SQLite для нарушений уникальности.
const (
	sqliteConstraintUnique     = 2067
	sqliteConstraintPrimaryKey = 1555
)

// IsDuplicatedKey распознаёт нарушение уникального индекса на обоих
// диалектах. TranslateError переводит его в gorm.ErrDuplicatedKey только
// для Postgres: транслятор sqlite-драйвера знает лишь ошибки mattn,
// поэтому ошибка modernc проходит сырой и проверяется по коду.
func IsDuplicatedKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqliteConstraintUnique || code == sqliteConstraintPrimaryKey
	}
	return false
}

// InitDB открывает соединение и прогоняет миграции всех моделей.
// По DSN выбирается диалект: строки подключения Postgres — боевой режим,
// всё остальное трактуем как путь к SQLite (локальный запуск и тесты).
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch {
	case strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.Contains(dsn, "host="):
		dial = gormpg.Open(dsn)
	default:
		// DriverName "sqlite" — драйвер modernc.org/sqlite, без cgo
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: dsn}
	}

	// TranslateError — нарушения уникальных индексов приходят как
	// gorm.ErrDuplicatedKey независимо от диалекта
	db, err := gorm.Open(dial, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Item{},
		&model.VerificationQuestion{},
		&model.Claim{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
