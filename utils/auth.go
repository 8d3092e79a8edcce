// utils/auth.go
package utils

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	ContextAccountID = "accountId"
	ContextRole      = "role"
)

// PasswordCost is lowered by tests.
var PasswordCost = 12

// Generate JWT secret key (run once initially)
func GenerateJWTSecret() string {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic("failed to generate JWT secret")
	}
	return base64.StdEncoding.EncodeToString(key)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func TokenExpiry() time.Duration {
	expiryHours := 24
	if env := os.Getenv("JWT_EXPIRY_HOURS"); env != "" {
		if h, err := strconv.Atoi(env); err == nil && h > 0 {
			expiryHours = h
		}
	}
	return time.Duration(expiryHours) * time.Hour
}

func GenerateToken(accountID uuid.UUID, role string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return "", errors.New("JWT_SECRET not set")
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  accountID.String(),
		"role": role,
		"exp":  now.Add(TokenExpiry()).Unix(),
		"iat":  now.Unix(),
	})
	return token.SignedString([]byte(secret))
}

// AuthMiddleware validates the bearer token and stores the account id and
// role in the gin context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			if cookie, err := c.Cookie("token"); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			RespondWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:6]) == "BEARER" {
			tokenString = tokenString[7:]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		sub, _ := claims["sub"].(string)
		accountID, err := uuid.Parse(sub)
		if err != nil {
			RespondWithError(c, http.StatusUnauthorized, "Invalid token claims")
			return
		}
		role, _ := claims["role"].(string)

		c.Set(ContextAccountID, accountID)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		RespondWithError(c, http.StatusForbidden, "Insufficient permissions")
	}
}

// AccountStatus looks up the current role and active flag of an account.
type AccountStatus func(ctx context.Context, accountID uuid.UUID) (role string, active bool, err error)

// RequireActive rejects tokens of deactivated or deleted accounts and
// refreshes the role from storage, so role changes apply before the token
// expires. Must run after AuthMiddleware.
func RequireActive(lookup AccountStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID, ok := CurrentAccountID(c)
		if !ok {
			RespondWithError(c, http.StatusUnauthorized, "Not authenticated")
			return
		}
		role, active, err := lookup(c.Request.Context(), accountID)
		if err != nil || !active {
			RespondWithError(c, http.StatusUnauthorized, "Account is inactive or no longer exists")
			return
		}
		c.Set(ContextRole, role)
		c.Next()
	}
}

func CurrentAccountID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ContextAccountID)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
