package http

import (
	"fmt"
	"net/http"
	"strings"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Roles carried in the access token. The token issuer is trusted; the role
// claim only selects which slice of the order book a listing returns, it
// never gates state transitions.
const (
	RoleCustomer   = "customer"
	RoleDriver     = "driver"
	RoleDispatcher = "dispatcher"
)

const identityContextKey = "identity"

// Identity is the authenticated caller extracted from the bearer token.
type Identity struct {
	Subject kernel.UUID
	Name    string
	Role    string
}

// AuthMiddleware parses an HS256 bearer token and stores the caller identity
// in the request context. Requests without an Authorization header pass
// through anonymously; handlers that mutate state reject them. A present but
// unparsable token is always a 401.
func AuthMiddleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(ctx)
			}

			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found {
				return unauthorized(ctx, "Malformed authorization header")
			}

			token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return secret, nil
			})
			if err != nil || !token.Valid {
				return unauthorized(ctx, "Invalid access token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return unauthorized(ctx, "Invalid access token")
			}

			sub, _ := claims["sub"].(string)
			subject, err := kernel.UUIDFromString(sub)
			if err != nil {
				return unauthorized(ctx, "Invalid subject claim")
			}

			name, _ := claims["name"].(string)
			role, _ := claims["role"].(string)

			ctx.Set(identityContextKey, Identity{
				Subject: subject,
				Name:    name,
				Role:    role,
			})
			return next(ctx)
		}
	}
}

// identityFrom returns the authenticated caller, if any.
func identityFrom(ctx echo.Context) (Identity, bool) {
	identity, ok := ctx.Get(identityContextKey).(Identity)
	return identity, ok
}

func unauthorized(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
		Code:    http.StatusUnauthorized,
		Message: message,
	})
}
