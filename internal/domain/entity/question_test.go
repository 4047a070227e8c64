package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		Version:       1,
		Title:         "Какой язык используется в Go?",
		Options:       StringArray{"Python", "Go", "Java", "Rust"},
		CorrectOption: 1,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(1), "IsCorrect должен вернуть true для правильного ответа")
	assert.False(t, question.IsCorrect(0))
	assert.False(t, question.IsCorrect(3))
	assert.False(t, question.IsCorrect(AnswerUnanswered), "Сброшенный ответ не может быть правильным")
}

func TestQuestion_IsValidOption(t *testing.T) {
	// Arrange
	question := &Question{
		Options: StringArray{"A", "B", "C", "D"},
	}

	// Act & Assert: валидные опции
	for i := 0; i < 4; i++ {
		assert.True(t, question.IsValidOption(i), "Индекс %d должен быть валидным", i)
	}

	// Assert: невалидные опции
	assert.False(t, question.IsValidOption(-1), "Отрицательный индекс должен быть невалидным")
	assert.False(t, question.IsValidOption(4), "Индекс вне диапазона должен быть невалидным")
}

func TestQuestion_NextVersion(t *testing.T) {
	// Arrange
	original := &Question{
		ID:            7,
		Version:       2,
		AuthorID:      "lecturer-1",
		Title:         "2+2",
		Options:       StringArray{"3", "4"},
		CorrectOption: 1,
	}

	// Act
	next := original.NextVersion()
	next.Options[0] = "5"

	// Assert
	assert.Equal(t, uint(7), next.ID)
	assert.Equal(t, 3, next.Version)
	assert.Equal(t, "lecturer-1", next.AuthorID)
	assert.Equal(t, "3", original.Options[0], "Варианты исходной версии не должны меняться")
}

func TestStringArray_ScanValue(t *testing.T) {
	// Arrange
	var arr StringArray

	// Act
	err := arr.Scan([]byte(`["a","b"]`))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, StringArray{"a", "b"}, arr)

	require.NoError(t, arr.Scan(nil))
	assert.Empty(t, arr)

	value, err := StringArray(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), value)

	assert.Error(t, arr.Scan(42))
}
