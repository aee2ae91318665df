package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/Roma7-7-7/love-dialect/internal/analysis"
	"github.com/Roma7-7-7/love-dialect/internal/config"
	"github.com/Roma7-7-7/love-dialect/internal/dal"
	"github.com/Roma7-7-7/love-dialect/internal/social"
)

const analysisPath = "/ai/analysis"

type (
	Dependencies struct {
		Repo   dal.Repository
		Stats  StatsComputer
		Social *social.Registry
		// Generator and Source are nil when the generative service is not configured.
		Generator CreativeGenerator
		Source    analysis.Source
		Logger    *slog.Logger
	}
)

func NewRouter(ctx context.Context, conf config.API, deps Dependencies) http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(middleware.RequestID())
	e.Use(loggingMiddleware(ctx, deps.Logger))
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(conf.HTTP.RateLimit))))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     conf.HTTP.CORS.AllowOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == analysisPath
		},
		Timeout: conf.HTTP.ProcessTimeout,
	}))
	e.Use(middleware.Secure())

	e.HTTPErrorHandler = HTTPErrorHandler(deps.Logger)

	jwtProcessor := NewJWTProcessor(conf.HTTP.JWT, conf.HTTP.Cookie.AccessExpiresIn)
	cookiesProcessor := NewCookiesProcessor(conf.HTTP.Cookie)

	authMiddleware := AuthMiddleware(cookiesProcessor, jwtProcessor, deps.Repo, deps.Logger)
	auth := NewAuthHandler(AuthDependencies{
		Repo:             deps.Repo,
		Social:           deps.Social,
		JWTProcessor:     jwtProcessor,
		CookiesProcessor: cookiesProcessor,
		Logger:           deps.Logger,
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/auth/signup", auth.SignUp)
	e.POST("/auth/login", auth.Login)
	e.POST("/auth/social", auth.SocialLogin)
	e.GET("/stats", NewStatsHandler(deps.Stats, deps.Logger).Global)

	securedGroup := e.Group("", authMiddleware)
	securedGroup.POST("/auth/logout", auth.LogOut)
	securedGroup.GET("/auth/me", auth.Me)

	dictionaries := NewDictionaryHandler(deps.Repo, deps.Logger)
	securedGroup.POST("/dictionaries", dictionaries.Create)
	securedGroup.POST("/dictionaries/join", dictionaries.Join)
	securedGroup.GET("/dictionary", dictionaries.Get)
	securedGroup.PUT("/dictionary/name", dictionaries.Rename)
	securedGroup.DELETE("/dictionary", dictionaries.Delete)
	securedGroup.GET("/dictionary/stats", dictionaries.Stats)
	securedGroup.POST("/dictionary/words", dictionaries.AddWord)
	securedGroup.PUT("/dictionary/words/:id", dictionaries.UpdateWord)
	securedGroup.DELETE("/dictionary/words/:id", dictionaries.DeleteWord)
	securedGroup.POST(analysisPath+"/words", dictionaries.ImportWords)

	quizzes := NewQuizHandler(deps.Repo, deps.Logger)
	securedGroup.GET("/quiz", quizzes.Start)
	securedGroup.POST("/quiz/answers", quizzes.Answer)

	aiHandler := NewAIHandler(AIDependencies{
		Repo:          deps.Repo,
		Generator:     deps.Generator,
		Source:        deps.Source,
		MaxChatLength: conf.AI.MaxChatLength,
		Logger:        deps.Logger,
	})
	aiGroup := securedGroup.Group("/ai", middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store:               middleware.NewRateLimiterMemoryStore(rate.Limit(conf.HTTP.AIRateLimit)),
		IdentifierExtractor: userIdentifier,
	}))
	aiGroup.POST("/word", aiHandler.GenerateWord)
	aiGroup.POST("/analysis", aiHandler.Analyze)

	return e
}

func loggingMiddleware(ctx context.Context, log *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogRoutePath: true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true, // forwards error to the global error handler, so it can decide appropriate status code
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			observeRequest(v)
			if v.Error == nil {
				log.LogAttrs(ctx, slog.LevelInfo, "REQUEST",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
				)
			} else {
				log.LogAttrs(ctx, slog.LevelError, "REQUEST_ERROR",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.String("err", v.Error.Error()),
				)
			}
			return nil
		},
	})
}
