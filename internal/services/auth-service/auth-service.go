package authservice

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"wms-alloc/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

const tokenLifetime = 30 * time.Minute

// Login validates portal credentials and issues a signed session token.
// Users come from PORTAL_USERS as comma-separated "name:bcrypt-hash" pairs.
func Login(c *gin.Context, jsonPayload string) (interface{}, error) {
	var req LoginRequest
	if err := json.Unmarshal([]byte(jsonPayload), &req); err != nil {
		return nil, errors.New("failed to unmarshal JSON into struct: " + err.Error())
	}
	if req.Username == `` || req.Password == `` {
		return nil, errors.New("username and password required")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	hash, found := lookupUser(cfg.PortalUsers, req.Username)
	if !found {
		return nil, errors.New("invalid username or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid username or password")
	}

	expiresAt := time.Now().Add(tokenLifetime)
	claims := jwt.MapClaims{
		"sub": req.Username,
		"exp": expiresAt.Unix(),
		"iat": time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return LoginResponse{Token: token, ExpiresAt: expiresAt.Unix()}, nil
}

func lookupUser(portalUsers, username string) (string, bool) {
	for _, pair := range strings.Split(portalUsers, `,`) {
		name, hash, found := strings.Cut(strings.TrimSpace(pair), `:`)
		if found && name == username {
			return hash, true
		}
	}
	return ``, false
}

// ValidateToken parses and verifies a session token, returning the subject.
func ValidateToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return ``, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ``, errors.New("invalid token")
	}

	sub, _ := claims["sub"].(string)
	if sub == `` {
		return ``, errors.New("token has no subject")
	}

	return sub, nil
}
