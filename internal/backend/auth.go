package backend

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"obuv/internal/domain"
)

const tokenTTL = 24 * time.Hour

const ctxUserKey = "current_user"

// Claims полезная нагрузка токена: роль и имя, чтобы клиент не ходил
// за профилем отдельно
type Claims struct {
	Role     domain.Role `json:"role"`
	FullName string      `json:"full_name"`
	jwt.RegisteredClaims
}

// GenerateToken выпускает HS256-токен на сутки
func GenerateToken(secret, login string, user domain.User) (string, error) {
	claims := &Claims{
		Role:     user.Role,
		FullName: user.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   login,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("недействительный токен")
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, fmt.Errorf("недействительный токен")
	}
	return claims, nil
}

// optionalAuth кладёт пользователя в контекст, когда токен есть и
// валиден; запросы без токена проходят дальше как гостевые
func optionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.Next()
			return
		}
		claims, err := parseToken(secret, parts[1])
		if err != nil {
			c.Next()
			return
		}
		c.Set(ctxUserKey, domain.User{Role: claims.Role, FullName: claims.FullName})
		c.Next()
	}
}

func currentUser(c *gin.Context) (domain.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return domain.User{}, false
	}
	u, ok := v.(domain.User)
	return u, ok
}

func requireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Не авторизован"})
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "Недостаточно прав"})
	}
}

func requireManagerOrAdmin() gin.HandlerFunc {
	return requireRole(domain.RoleManager, domain.RoleAdmin)
}

func requireAdmin() gin.HandlerFunc {
	return requireRole(domain.RoleAdmin)
}
