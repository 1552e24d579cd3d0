package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	v1 "github.com/eventreg/regclient/internal/api/handler/v1"
	"github.com/eventreg/regclient/internal/api/middleware"
	"github.com/eventreg/regclient/internal/backend"
	"github.com/eventreg/regclient/internal/config"
	"github.com/eventreg/regclient/internal/repository"
	"github.com/eventreg/regclient/internal/repository/dao"
)

const BasePath = "/api"

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine
}

func NewServer(conf *config.AppConfig, db *gorm.DB) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	authHandler := s.initAuthHandler(db)
	userHandler := s.initUserHandler(db)
	eventHandler := s.initEventHandler(db)
	registrationHandler := s.initRegistrationHandler(db)
	s.MountHandlers(authHandler, userHandler, eventHandler, registrationHandler)

	return s
}

func (s *Server) initAuthHandler(db *gorm.DB) *v1.AuthHandler {
	users := repository.NewUserRepository(dao.NewUserDAO(db))
	tokens := repository.NewRefreshTokenRepository(dao.NewRefreshTokenDAO(db))
	svc := backend.NewAuthService(users, tokens, s.Config.API.RefreshTokenTTL)
	handler := v1.NewAuthHandler(s.Config.API, svc)

	return handler
}

func (s *Server) initUserHandler(db *gorm.DB) *v1.UserHandler {
	repo := repository.NewUserRepository(dao.NewUserDAO(db))
	svc := backend.NewUserService(repo)
	handler := v1.NewUserHandler(svc)

	return handler
}

func (s *Server) initEventHandler(db *gorm.DB) *v1.EventHandler {
	repo := repository.NewEventRepository(dao.NewEventDAO(db))
	registrations := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	svc := backend.NewEventService(repo, registrations)
	handler := v1.NewEventHandler(svc)

	return handler
}

func (s *Server) initRegistrationHandler(db *gorm.DB) *v1.RegistrationHandler {
	repo := repository.NewRegistrationRepository(dao.NewRegistrationDAO(db))
	events := repository.NewEventRepository(dao.NewEventDAO(db))
	svc := backend.NewRegistrationService(repo, events)
	handler := v1.NewRegistrationHandler(svc)

	return handler
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	eventHandler *v1.EventHandler,
	registrationHandler *v1.RegistrationHandler,
) {
	authn := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	auth := s.Router.Group(BasePath)
	{
		auth.POST("/auth/register", authHandler.HandleSignup)
		auth.POST("/auth/login", authHandler.HandleLogin)
		auth.POST("/auth/refresh-token", authHandler.HandleRefreshToken)
		auth.POST("/auth/logout", authHandler.HandleLogout)
	}

	profile := s.Router.Group(BasePath, authn.VerifyJWT())
	{
		profile.GET("/users/profile", userHandler.HandleGetProfile)
		profile.PUT("/users/profile", userHandler.HandleUpdateProfile)
		profile.PUT("/users/change-password", userHandler.HandleChangePassword)
		profile.GET("/users/:userID", userHandler.HandleGetUser)
	}

	admin := s.Router.Group(BasePath, authn.VerifyJWT(), middleware.RequireAdmin())
	{
		admin.GET("/users", userHandler.HandleListUsers)
		admin.POST("/users", userHandler.HandleCreateUser)
		admin.PUT("/users/:userID", userHandler.HandleUpdateUser)
		admin.DELETE("/users/:userID", userHandler.HandleDeleteUser)

		admin.POST("/events", eventHandler.HandleCreateEvent)
		admin.PUT("/events/:id", eventHandler.HandleUpdateEvent)
		admin.DELETE("/events/:id", eventHandler.HandleDeleteEvent)
		admin.GET("/events/:id/report", eventHandler.HandleEventReport)

		admin.POST("/events/:id/tickets", eventHandler.HandleCreateTicket)
		admin.PUT("/events/:id/tickets/:ticketId", eventHandler.HandleUpdateTicket)
		admin.DELETE("/events/:id/tickets/:ticketId", eventHandler.HandleDeleteTicket)

		admin.POST("/events/:id/questions", eventHandler.HandleCreateQuestion)
		admin.PUT("/events/:id/questions/:eventQuestionId", eventHandler.HandleUpdateQuestion)
		admin.DELETE("/events/:id/questions/:eventQuestionId", eventHandler.HandleDeleteQuestion)
	}

	public := s.Router.Group(BasePath, authn.OptionalJWT())
	{
		public.GET("/events", eventHandler.HandleListEvents)
		public.GET("/events/:id", eventHandler.HandleGetEvent)
		public.GET("/events/:id/tickets", eventHandler.HandleListTickets)
		public.GET("/events/:id/tickets/:ticketId", eventHandler.HandleGetTicket)
		public.GET("/events/:id/tickets/:ticketId/availability", eventHandler.HandleTicketAvailability)
		public.GET("/events/:id/questions", eventHandler.HandleListQuestions)

		public.POST("/registrations", registrationHandler.HandleCreateRegistration)
	}

	s.Router.GET("/", v1.HandleHealthcheck)
}
