package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"accountsvc/internal/config"
	"accountsvc/internal/mail"
	"accountsvc/internal/middleware"
	"accountsvc/internal/repository"
	"accountsvc/internal/service"
	"accountsvc/internal/storage"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

type HandlerSet struct {
	log    zerolog.Logger
	cfg    *config.AppConfig
	auth   *service.AuthService
	reset  *service.PasswordResetService
	avatar *service.AvatarService
	db     Pinger
	cache  Pinger
}

// NewHandlerSet wires the Postgres repositories, the avatar store and the
// mailer into the account services.
func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	mailer mail.Mailer,
) HandlerSet {
	services := service.NewServices(
		cfg,
		repository.NewUserRepository(db),
		repository.NewResetTokenRepository(db),
		store,
		mailer,
		log,
	)
	var cachePinger Pinger
	if cache != nil {
		cachePinger = redisPinger{client: cache}
	}
	return NewHandlerSetWithServices(log, cfg, services, db, cachePinger)
}

func NewHandlerSetWithServices(log zerolog.Logger, cfg *config.AppConfig, services service.Services, db, cache Pinger) HandlerSet {
	return HandlerSet{
		log:    log,
		cfg:    cfg,
		auth:   services.Auth,
		reset:  services.Reset,
		avatar: services.Avatar,
		db:     db,
		cache:  cache,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	users := router.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/login", h.Login)
		users.GET("/logout", h.Logout)
		users.GET("/isloggedin", h.LoginStatus)
		users.POST("/forgotPassword", h.ForgotPassword)
		users.PUT("/resetpassword", h.ResetPassword)
		users.PUT("/resetpassword/:resetToken", h.ResetPassword)

		protected := users.Group("")
		protected.Use(middleware.Auth(h.auth, h.cfg.Security.CookieName))
		protected.GET("/getuser", h.GetUser)
		protected.PATCH("/updateuser", h.UpdateUser)
		protected.PATCH("/changepassword", h.ChangePassword)
		protected.POST("/uploadphoto", h.UploadPhoto)
	}
}
