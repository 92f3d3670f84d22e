package http

import (
	"LinkTrace-Backend/internal/analytics"
	"LinkTrace-Backend/internal/auth"
	"LinkTrace-Backend/internal/repository"
	"LinkTrace-Backend/internal/service"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Server HTTP сервер с обработчиками
type Server struct {
	authHandlers         *auth.AuthHandlers
	redirectHandler      *RedirectHandler
	eventsHandler        *EventsHandler
	analyticsHandler     *AnalyticsHandler
	linksHandler         *LinksHandler
	modelsHandler        *ModelsHandler
	sourcesHandler       *SourcesHandler
	organizationsHandler *OrganizationsHandler
	healthHandler        *HealthHandler
	authMiddleware       *auth.Middleware
	log                  *zap.Logger
}

// NewServer создает новый HTTP сервер
func NewServer(
	storage repository.Storage,
	linkService *service.TrackingLinkService,
	resolver *service.ResolverService,
	attribution *service.AttributionService,
	refresh *service.RefreshService,
	sourceService *service.SourceService,
	orgService *service.OrganizationService,
	recorder *analytics.Recorder,
	jwtService *auth.JWTService,
	passwordService *auth.PasswordService,
	credentials *auth.AdminCredentials,
	log *zap.Logger,
) *Server {
	return &Server{
		authHandlers:         auth.NewAuthHandlers(credentials, jwtService, passwordService, log),
		redirectHandler:      NewRedirectHandler(resolver, recorder, storage, log),
		eventsHandler:        NewEventsHandler(recorder, log),
		analyticsHandler:     NewAnalyticsHandler(attribution, refresh, log),
		linksHandler:         NewLinksHandler(linkService, storage, log),
		modelsHandler:        NewModelsHandler(storage, log),
		sourcesHandler:       NewSourcesHandler(sourceService, storage, log),
		organizationsHandler: NewOrganizationsHandler(orgService, storage, log),
		healthHandler:        NewHealthHandler(storage, recorder, log),
		authMiddleware:       auth.NewMiddleware(jwtService, storage, log),
		log:                  log,
	}
}

// SetupRoutes настраивает маршруты
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks (без аутентификации)
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)

	// Swagger документация
	mux.Handle("/api/v1/", httpSwagger.WrapHandler)

	// Редирект по трекинг-ссылке (без аутентификации)
	mux.HandleFunc("/go/", s.redirectHandler.HandleRedirect)

	// Прием событий от маяков (без аутентификации)
	mux.HandleFunc("/api/events", s.withCORS(s.eventsHandler.HandleIngest))

	// Вход в дашборд (без аутентификации)
	mux.HandleFunc("/api/auth/login", s.withCORS(s.authHandlers.Login))

	// Аналитика (админ)
	mux.HandleFunc("/api/analytics/attribution", s.withCORS(s.requireAdmin(s.analyticsHandler.HandleAttribution)))
	mux.HandleFunc("/api/analytics/refresh", s.withCORS(s.requireAdmin(s.analyticsHandler.HandleRefresh)))

	// Управление ссылками (админ)
	mux.HandleFunc("/api/links", s.withCORS(s.requireAdmin(s.linksHandler.HandleLinks)))
	mux.HandleFunc("/api/links/", s.withCORS(s.requireAdmin(s.linksHandler.HandleLinkByID)))

	// Организационный API: создание и просмотр ссылок по API ключу
	mux.HandleFunc("/api/org/links", s.withCORS(s.authMiddleware.RequireOrganization(s.linksHandler.HandleLinks)))

	// Управление моделями (админ)
	mux.HandleFunc("/api/models", s.withCORS(s.requireAdmin(s.modelsHandler.HandleModels)))
	mux.HandleFunc("/api/models/", s.withCORS(s.requireAdmin(s.modelsHandler.HandleModelByID)))

	// Источники трафика и сабтеги (админ)
	mux.HandleFunc("/api/sources", s.withCORS(s.requireAdmin(s.sourcesHandler.HandleSources)))
	mux.HandleFunc("/api/sources/", s.withCORS(s.requireAdmin(s.sourcesHandler.HandleSourceByID)))

	// Организации (админ)
	mux.HandleFunc("/api/organizations", s.withCORS(s.requireAdmin(s.organizationsHandler.HandleOrganizations)))
	mux.HandleFunc("/api/organizations/", s.withCORS(s.requireAdmin(s.organizationsHandler.HandleOrganizationByID)))

	return mux
}

// requireAdmin оборачивает обработчик проверкой JWT администратора
func (s *Server) requireAdmin(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.RequireAdmin(handler)
}

// withCORS добавляет CORS headers к обработчику
func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}
