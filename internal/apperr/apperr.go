// Package apperr содержит классификацию ошибок сервиса.
// Хэндлеры сопоставляют каждый вид с HTTP-кодом через errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated - запрос без валидной идентичности вызывающего
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden - идентичность валидна, но прав на операцию нет
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound - целевая запись не существует
	ErrNotFound = errors.New("not found")
	// ErrValidation - отсутствующее или некорректное обязательное поле
	ErrValidation = errors.New("validation error")
	// ErrUnknownCaller - аутентифицированная идентичность не сопоставлена
	// ни с одной учетной записью
	ErrUnknownCaller = errors.New("unknown caller")
	// ErrStore - сбой нижележащего хранилища. Единственный вид,
	// оборачивающий низкоуровневую причину для диагностики.
	ErrStore = errors.New("store error")
)

// Validation оборачивает ErrValidation сообщением о конкретном поле
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound оборачивает ErrNotFound указанием на запись
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// Forbidden оборачивает ErrForbidden пояснением для вызывающего
func Forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// Store оборачивает причину сбоя хранилища
func Store(cause error) error {
	return fmt.Errorf("%w: %v", ErrStore, cause)
}
