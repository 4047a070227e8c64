package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись отсутствует или помечена как удаленная.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок аутентификации (нет токена, неверный токен).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden используется, когда у пользователя недостаточно прав для действия.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken используется, когда срок действия токена истек.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict используется для конфликтов состояния (повторный старт попытки,
	// изменение состава теста, у которого уже есть попытки).
	ErrConflict = errors.New("resource state conflict")

	// ErrInvalidState используется, когда объект находится в неподходящем состоянии
	// (тест не активен, попытка уже завершена).
	ErrInvalidState = errors.New("invalid state")

	// ErrStoreUnavailable используется при потере соединения с хранилищем.
	ErrStoreUnavailable = errors.New("store unavailable")
)
