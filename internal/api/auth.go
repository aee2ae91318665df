package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Roma7-7-7/love-dialect/internal/context"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/social"
)

type (
	AuthRepository interface {
		dal.AccountsRepository
		dal.SessionsRepository
	}

	AuthDependencies struct {
		Repo             AuthRepository
		Social           *social.Registry
		JWTProcessor     *JWTProcessor
		CookiesProcessor *CookiesProcessor
		Logger           *slog.Logger
	}

	AuthHandler struct {
		repo             AuthRepository
		social           *social.Registry
		jwtProcessor     *JWTProcessor
		cookiesProcessor *CookiesProcessor

		log *slog.Logger
	}

	credentialsRequest struct {
		Username string `json:"username" validate:"required,max=32"`
		Password string `json:"password" validate:"required,min=4,max=72"`
	}

	socialLoginRequest struct {
		Provider string `json:"provider" validate:"required"`
	}

	userResponse struct {
		ID             string `json:"id"`
		Username       string `json:"username"`
		DictionaryCode string `json:"dictionary_code,omitempty"`
		Social         bool   `json:"social"`
	}
)

func NewAuthHandler(deps AuthDependencies) *AuthHandler {
	return &AuthHandler{
		repo:             deps.Repo,
		social:           deps.Social,
		jwtProcessor:     deps.JWTProcessor,
		cookiesProcessor: deps.CookiesProcessor,

		log: deps.Logger,
	}
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	user, session, err := h.repo.SignUp(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return fmt.Errorf("sign up: %w", err)
	}

	return h.startSession(c, http.StatusCreated, user, session)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	user, session, err := h.repo.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	return h.startSession(c, http.StatusOK, user, session)
}

func (h *AuthHandler) SocialLogin(c echo.Context) error {
	var req socialLoginRequest
	if err := bindAndValidate(c, &req, h.log); err != nil {
		return err
	}

	profile, err := h.social.Profile(c.Request().Context(), req.Provider)
	if err != nil {
		return err
	}

	user, session, err := h.repo.LoginWithExternalIdentity(c.Request().Context(), profile)
	if err != nil {
		return fmt.Errorf("social login: %w", err)
	}

	return h.startSession(c, http.StatusOK, user, session)
}

func (h *AuthHandler) LogOut(c echo.Context) error {
	sessionID := context.MustSessionIDFromContext(c.Request().Context())
	if err := h.repo.Logout(c.Request().Context(), sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}

	c.SetCookie(h.cookiesProcessor.ExpireAccessTokenCookie())
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, toUserResponse(context.MustUserFromContext(c.Request().Context())))
}

func (h *AuthHandler) startSession(c echo.Context, status int, user *dal.User, session *dal.Session) error {
	token, err := h.jwtProcessor.ToAccessToken(session.ID)
	if err != nil {
		return fmt.Errorf("create access token: %w", err)
	}

	h.log.DebugContext(c.Request().Context(), "session started", "user_id", user.ID)
	c.SetCookie(h.cookiesProcessor.NewAccessTokenCookie(token))
	return c.JSON(status, toUserResponse(user))
}

func toUserResponse(u *dal.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		DictionaryCode: u.DictionaryCode,
		Social:         u.ExternalID != "",
	}
}

func bindAndValidate(c echo.Context, target any, log *slog.Logger) error {
	if err := c.Bind(target); err != nil {
		log.DebugContext(c.Request().Context(), "failed to bind request", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, BadRequestError.Message).SetInternal(err)
	}

	if err := c.Validate(target); err != nil {
		log.DebugContext(c.Request().Context(), "failed to validate request", "error", err)
		return err
	}
	return nil
}
