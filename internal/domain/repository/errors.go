package repository

import (
	"fmt"

	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

var (
	// ErrTestInactive означает, что тест выключен и новые попытки запрещены.
	ErrTestInactive = fmt.Errorf("test is not active: %w", apperrors.ErrInvalidState)
	// ErrAttemptNotInProgress означает, что попытка уже завершена.
	ErrAttemptNotInProgress = fmt.Errorf("attempt is not in progress: %w", apperrors.ErrInvalidState)
	// ErrAttemptExists означает, что у пользователя уже есть попытка по этому тесту.
	ErrAttemptExists = fmt.Errorf("attempt already exists: %w", apperrors.ErrConflict)
	// ErrTestHasAttempts означает, что состав теста заморожен: по нему уже есть попытки.
	ErrTestHasAttempts = fmt.Errorf("test already has attempts: %w", apperrors.ErrConflict)
	// ErrQuestionAlreadyInTest означает попытку добавить вопрос повторно.
	ErrQuestionAlreadyInTest = fmt.Errorf("question is already in test: %w", apperrors.ErrConflict)
	// ErrQuestionInUse означает, что вопрос используется в тестах и не может быть удален.
	ErrQuestionInUse = fmt.Errorf("question is used in tests: %w", apperrors.ErrConflict)
)
