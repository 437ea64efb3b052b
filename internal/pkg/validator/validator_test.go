package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"boqtracker/internal/domain"
)

type line struct {
	Section string `json:"section_number" validate:"required"`
}

type sample struct {
	Name  string  `json:"name" validate:"required,max=5"`
	Price float64 `json:"price" validate:"gte=0"`
	Lines []line  `json:"lines" validate:"dive"`
}

func TestValidate_UsesJSONNames(t *testing.T) {
	errs := Validate(sample{Name: "toolong", Price: -1, Lines: []line{{}}})

	assert.Equal(t, "max", errs["name"])
	assert.Equal(t, "gte", errs["price"])
	assert.Equal(t, "required", errs["lines[0].section_number"])
}

func TestValidate_OK(t *testing.T) {
	assert.Nil(t, Validate(sample{Name: "ok"}))
	assert.NoError(t, Check("sample", sample{Name: "ok"}))
}

func TestCheck_WrapsValidation(t *testing.T) {
	err := Check("sample", sample{})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "name:required")
}
