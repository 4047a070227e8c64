package service

import (
	"fmt"

	apperrors "github.com/yourusername/edu-api/internal/pkg/errors"
)

// Ошибки сервисного слоя
var (
	ErrNotEnrolled       = fmt.Errorf("user is not enrolled in course: %w", apperrors.ErrForbidden)
	ErrAlreadyEnrolled   = fmt.Errorf("user is already enrolled in course: %w", apperrors.ErrConflict)
	ErrInvalidAnswer     = fmt.Errorf("answer index must be -1 or a non-negative option index: %w", apperrors.ErrValidation)
	ErrNotPermutation    = fmt.Errorf("question order must be a permutation of current questions: %w", apperrors.ErrValidation)
	ErrEmptyTitle        = fmt.Errorf("title is required: %w", apperrors.ErrValidation)
	ErrInvalidQuestion   = fmt.Errorf("question needs at least two options and a correct option among them: %w", apperrors.ErrValidation)
	ErrEmptySelection    = fmt.Errorf("at least one id is required: %w", apperrors.ErrValidation)
	ErrMissingTargetUser = fmt.Errorf("user_id is required: %w", apperrors.ErrValidation)
)
