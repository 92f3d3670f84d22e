package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// AdminCredentials учетные данные администратора из конфигурации
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthHandlers обработчики аутентификации дашборда
type AuthHandlers struct {
	credentials     *AdminCredentials
	jwtService      *JWTService
	passwordService *PasswordService
	log             *zap.Logger
}

// NewAuthHandlers создает обработчики аутентификации
func NewAuthHandlers(credentials *AdminCredentials, jwtService *JWTService, passwordService *PasswordService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		credentials:     credentials,
		jwtService:      jwtService,
		passwordService: passwordService,
		log:             log,
	}
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse структура ответа входа
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// Login выдает токен доступа к дашборду
//
//	@Summary		Dashboard login
//	@Description	Exchange admin credentials for an access token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Admin credentials"
//	@Success		200		{object}	LoginResponse	"Access token issued"
//	@Failure		401		{object}	map[string]string	"Invalid credentials"
//	@Router			/api/auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email != h.credentials.Email ||
		!h.passwordService.VerifyPassword(h.credentials.PasswordHash, req.Password) {
		h.log.Debug("failed login attempt", zap.String("email", req.Email))
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateToken(req.Email)
	if err != nil {
		h.log.Error("failed to generate token", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(LoginResponse{AccessToken: token}); err != nil {
		h.log.Error("failed to encode login response", zap.Error(err))
	}
}
