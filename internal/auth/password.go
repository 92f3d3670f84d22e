package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordService хеширование и проверка паролей через bcrypt
type PasswordService struct {
	cost int
}

// NewPasswordService создает новый сервис паролей со стандартной стоимостью bcrypt
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: bcrypt.DefaultCost}
}

// HashPassword хеширует пароль
func (s *PasswordService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword сравнивает пароль с хешем
func (s *PasswordService) VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
