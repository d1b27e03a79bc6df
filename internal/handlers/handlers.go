package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"dentix/api/internal/config"
	"dentix/api/internal/middleware"
	"dentix/api/internal/models"
	"dentix/api/internal/repository"
	"dentix/api/internal/security"
	"dentix/api/internal/service"
	"dentix/api/internal/storage"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	issuer       *security.Issuer
	authService  *service.AuthService
	db           *pgxpool.Pool
	cache        *redis.Client
	store        *storage.ObjectStore
	users        *repository.UserRepository
	roles        *repository.RoleRepository
	appointments *repository.AppointmentRepository
	cases        *repository.CaseRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.ObjectStore,
	issuer *security.Issuer,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	caseRepo := repository.NewCaseRepository(db)

	refresh := service.NewRefreshManager(userRepo, cfg.Security.RefreshTokenTTL)
	auth := service.NewAuthService(userRepo, roleRepo, issuer, refresh, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		issuer:       issuer,
		authService:  auth,
		db:           db,
		cache:        cache,
		store:        store,
		users:        userRepo,
		roles:        roleRepo,
		appointments: appointmentRepo,
		cases:        caseRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	limited := middleware.RateLimit(h.cache, h.log, h.cfg.Security.LoginRateLimit, h.cfg.Security.LoginRateWindow)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", limited, h.RegisterUser)
		auth.POST("/login", limited, h.Login)
		auth.POST("/refresh", limited, h.Refresh)

		protected := v1.Group("/auth")
		protected.Use(middleware.Auth(h.issuer))
		protected.GET("/me", h.Me)
	}

	appointments := v1.Group("/appointments")
	appointments.Use(middleware.Auth(h.issuer))
	{
		appointments.POST("", middleware.RequireRoles(models.RoleUser), h.CreateAppointment)
		appointments.GET("/mine", middleware.RequireRoles(models.RoleUser), h.MyAppointments)
		appointments.GET("", middleware.RequireRoles(models.RoleAdmin), h.ListAppointments)
		appointments.PUT("/:id/confirm", middleware.RequireRoles(models.RoleAdmin), h.ConfirmAppointment)
		appointments.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), h.CancelAppointment)
	}

	cases := v1.Group("/cases")
	cases.Use(middleware.Auth(h.issuer), middleware.RequireRoles(models.RoleAdmin))
	{
		cases.POST("", h.CreateCase)
		cases.GET("", h.ListCases)
		cases.GET("/:id", h.GetCase)
		cases.PUT("/:id", h.UpdateCase)
		cases.DELETE("/:id", h.DeleteCase)
		cases.POST("/image", h.UploadCaseImage)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(h.issuer), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.POST("/users", h.AdminCreateUser)
		admin.GET("/users", h.AdminListUsers)
		admin.GET("/users/:id", h.AdminGetUser)
		admin.PUT("/users/:id", h.AdminUpdateUser)
		admin.DELETE("/users/:id", h.AdminDeleteUser)
	}
}
