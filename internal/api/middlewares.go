package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/context"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
)

var unauthorizedResponse = ErrorResponse{"Unauthorized"} //nolint:gochecknoglobals // this is a constant response for unauthorized access

// AuthMiddleware resolves the session behind the access cookie and puts it, with its user, into the request context.
func AuthMiddleware(cookieProc *CookiesProcessor, jwtProc *JWTProcessor, repo dal.SessionsRepository, log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			token, ok := cookieProc.GetAccessToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, unauthorizedResponse)
			}

			sessionID, err := jwtProc.ParseAccessToken(token)
			if err != nil {
				log.WarnContext(ctx, "parse access token", "error", err)
				return c.JSON(http.StatusUnauthorized, unauthorizedResponse)
			}

			user, err := repo.CurrentUser(ctx, sessionID)
			if err != nil {
				if errors.Is(err, dal.ErrSessionNotFound) {
					c.SetCookie(cookieProc.ExpireAccessTokenCookie())
					return c.JSON(http.StatusUnauthorized, unauthorizedResponse)
				}
				return err
			}

			ctx = context.WithSessionID(ctx, sessionID)
			ctx = context.WithUser(ctx, user)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// userIdentifier keys per-user rate limits. It must run after AuthMiddleware.
func userIdentifier(c echo.Context) (string, error) {
	user, ok := context.UserFromContext(c.Request().Context())
	if !ok {
		return c.RealIP(), nil
	}
	return user.ID, nil
}
