package jwtPkg

import (
	"FaceLiveness/internal/entity"
	"errors"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// UserLocalsKey is the fiber locals key the token middleware stores the caller under.
const UserLocalsKey = "user"

var (
	ErrMissingHeader  = errors.New("empty Authorization header")
	ErrInvalidFormat  = errors.New("invalid Authorization format")
	ErrSecretNotSet   = errors.New("JWT secret not configured")
	ErrInvalidClaims  = errors.New("token claims are missing required fields")
	allowedAlgorithms = []string{"HS256", "HS384", "HS512"}
)

// VerifyTokenHeader parses the bearer token of the request with the HMAC secret read
// from secretEnvKey. Tokens without an expiry are rejected.
func VerifyTokenHeader(c *fiber.Ctx, secretEnvKey string) (*jwt.Token, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return nil, ErrMissingHeader
	}

	accessToken, ok := strings.CutPrefix(header, "Bearer ")
	accessToken = strings.TrimSpace(accessToken)
	if !ok || accessToken == "" {
		return nil, ErrInvalidFormat
	}

	secret := os.Getenv(secretEnvKey)
	if secret == "" {
		return nil, ErrSecretNotSet
	}

	return jwt.Parse(accessToken, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods(allowedAlgorithms), jwt.WithExpirationRequired())
}

// UserFromToken maps the id, email and username claims onto the login data.
func UserFromToken(token *jwt.Token) (entity.UserLoginData, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.UserLoginData{}, ErrInvalidClaims
	}

	id, idOK := claims["id"].(string)
	email, emailOK := claims["email"].(string)
	username, usernameOK := claims["username"].(string)
	if !idOK || !emailOK || !usernameOK || id == "" {
		return entity.UserLoginData{}, ErrInvalidClaims
	}

	return entity.UserLoginData{ID: id, Email: email, Username: username}, nil
}

func GetUserLoginData(c *fiber.Ctx) (entity.UserLoginData, error) {
	user, ok := c.Locals(UserLocalsKey).(entity.UserLoginData)
	if !ok {
		return entity.UserLoginData{}, fiber.ErrUnauthorized
	}

	return user, nil
}
