package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"jobtracker_server/pkg/apperr"
)

// JWTAuth validates HS256 bearer tokens signed with secret. The OAuth
// callback is skipped because the provider redirects the browser there.
func JWTAuth(secret string, log zerolog.Logger, skip ...string) fiber.Handler {
	log = log.With().Str("component", "auth").Logger()

	return func(c *fiber.Ctx) error {
		// CORS preflight
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}
		path := c.Path()
		for _, p := range skip {
			if strings.HasPrefix(path, p) {
				return c.Next()
			}
		}

		var tokenString string
		if authHeader := c.Get(fiber.HeaderAuthorization); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// EventSource cannot set headers
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return apperr.Unauthorized("missing authorization")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unsupported signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		}, jwt.WithIssuedAt())
		if err != nil || !token.Valid {
			log.Warn().Err(err).Str("path", path).Msg("JWT validation failed")
			return apperr.InvalidToken("invalid token")
		}

		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			if sub, err := claims.GetSubject(); err == nil && sub != "" {
				c.Locals("user_id", sub)
			}
		}
		return c.Next()
	}
}
