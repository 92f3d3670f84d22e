package auth

import (
	"LinkTrace-Backend/internal/repository"
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// ContextKey тип для ключей контекста
type ContextKey string

const (
	// AdminEmailKey ключ для email администратора в контексте
	AdminEmailKey ContextKey = "admin_email"
	// OrganizationIDKey ключ для ID организации в контексте
	OrganizationIDKey ContextKey = "organization_id"
)

// APIKeyHeader заголовок с API ключом организации
const APIKeyHeader = "X-Api-Key"

// Middleware проверки доступа для HTTP обработчиков
type Middleware struct {
	jwtService *JWTService
	storage    repository.Storage
	log        *zap.Logger
}

// NewMiddleware создает новый middleware
func NewMiddleware(jwtService *JWTService, storage repository.Storage, log *zap.Logger) *Middleware {
	return &Middleware{
		jwtService: jwtService,
		storage:    storage,
		log:        log,
	}
}

// RequireAdmin проверяет JWT токен администратора дашборда
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := ExtractTokenFromBearer(r.Header.Get("Authorization"))
		if tokenString == "" {
			m.log.Debug("missing or malformed authorization header")
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			m.log.Debug("invalid token", zap.Error(err))
			if errors.Is(err, ErrExpiredToken) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
			} else {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		ctx := context.WithValue(r.Context(), AdminEmailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireOrganization проверяет API ключ организации из заголовка X-Api-Key
func (m *Middleware) RequireOrganization(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get(APIKeyHeader)
		if apiKey == "" {
			http.Error(w, "API key required", http.StatusUnauthorized)
			return
		}

		org, err := m.storage.GetOrganizationByAPIKey(r.Context(), apiKey)
		if err != nil {
			if errors.Is(err, repository.ErrOrganizationNotFound) {
				m.log.Debug("unknown api key")
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			m.log.Error("failed to check api key", zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), OrganizationIDKey, org.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// CORS добавляет CORS заголовки и обрабатывает preflight запросы
func (m *Middleware) CORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Api-Key")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	}
}

// GetOrganizationIDFromContext возвращает ID организации, установленный middleware
func GetOrganizationIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(OrganizationIDKey).(int64)
	return id, ok
}

// GetAdminEmailFromContext возвращает email администратора, установленный middleware
func GetAdminEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AdminEmailKey).(string)
	return email, ok
}
