// Package validation содержит функции валидации входных данных.
package validation

import (
	"errors"
	"fmt"

	"github.com/mmeshcher/refund-tracker/internal/model"
)

// ErrMissingField возвращается, если в запросе отсутствует обязательное поле.
var ErrMissingField = errors.New("missing required field")

// ErrInvalidStage возвращается для значения этапа вне списка model.Stages.
var ErrInvalidStage = errors.New("invalid refund stage")

// ParseStage разбирает значение этапа. Пустое значение означает начальный этап.
func ParseStage(raw *string) (model.Stage, error) {
	if raw == nil {
		return model.StageInitiated, nil
	}
	stage := model.Stage(*raw)
	if !stage.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStage, *raw)
	}
	return stage, nil
}

// Required проверяет, что все перечисленные поля присутствуют в запросе.
func Required(fields ...Field) error {
	for _, f := range fields {
		if !f.Present {
			return fmt.Errorf("%w: %s", ErrMissingField, f.Name)
		}
	}
	return nil
}

// Field описывает поле запроса для Required.
type Field struct {
	Name    string
	Present bool
}
