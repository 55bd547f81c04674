package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// userIDKey — ключ контекста для идентификатора пользователя.
const userIDKey contextKey = "user_id"

// ErrInvalidToken возвращается ParseToken для просроченного или
// неподписанного нашим секретом токена.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims — полезная нагрузка JWT: минимум идентификатор пользователя.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// BuildToken подписывает HS256-токен с указанным сроком жизни.
func BuildToken(userID int64, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})
	return token.SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок действия, возвращает идентификатор
// пользователя.
func ParseToken(tokenString, secret string) (int64, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// WithAuth извлекает bearer-токен из заголовка Authorization и кладёт
// идентификатор пользователя в контекст. Мидлварь не отклоняет запросы:
// решение «401 или нет» принимает каждый хендлер, публичным маршрутам
// аутентификация не нужна.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				if userID, err := ParseToken(token, secret); err == nil {
					ctx := context.WithValue(r.Context(), userIDKey, userID)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext достаёт идентификатор пользователя, положенный WithAuth.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
