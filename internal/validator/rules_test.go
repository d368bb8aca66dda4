package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstMissing_AllFilled(t *testing.T) {
	fields := []RequiredField{
		{Name: "job_title", Value: "Backend Developer"},
		{Name: "company_name", Value: "Acme"},
	}

	name, missing := FirstMissing(fields)

	assert.False(t, missing)
	assert.Empty(t, name)
}

func TestFirstMissing_ReturnsFirstEmpty(t *testing.T) {
	// Пустых полей два, но сообщаем только о первом
	fields := []RequiredField{
		{Name: "job_title", Value: "Backend Developer"},
		{Name: "company_name", Value: ""},
		{Name: "category", Value: ""},
	}

	name, missing := FirstMissing(fields)

	assert.True(t, missing)
	assert.Equal(t, "company_name", name)
}

func TestFirstMissing_EmptyList(t *testing.T) {
	name, missing := FirstMissing(nil)

	assert.False(t, missing)
	assert.Empty(t, name)
}
