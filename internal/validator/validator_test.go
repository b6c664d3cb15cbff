package validator

import (
	"testing"

	"jobboard_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int {
	return &v
}

func validApply() dto.ApplyRequest {
	return dto.ApplyRequest{
		FullName:    "Asha Patil",
		FatherName:  "Ramesh",
		DateOfBirth: "1995-04-12",
		NativePlace: "Pune",
		NationalID:  "234567890123",
		Contact:     "+91 98765 43210",
		Age:         29,
		Gender:      "Female",
		Experience:  intPtr(4),
		Skills:      []string{"welding"},
	}
}

func TestValidate_ApplyRequest(t *testing.T) {
	v := New()

	req := validApply()
	assert.NoError(t, v.Validate(&req))

	req.NationalID = "123456789012"
	req.FullName = "   "
	req.Skills = []string{"welding", " "}
	req.DateOfBirth = "12.04.1995"

	err := v.Validate(&req)
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "Must be 12 digits and must not start with 0 or 1", vErr.Errors["national_id"])
	assert.Equal(t, "Must not be blank", vErr.Errors["full_name"])
	assert.Contains(t, vErr.Errors, "skills[1]")
	assert.Contains(t, vErr.Errors, "date_of_birth")
	assert.NotContains(t, vErr.Errors, "contact")
}

func TestValidate_RequiredAndRanges(t *testing.T) {
	v := New()

	req := validApply()
	req.Skills = nil
	req.Age = 7
	req.Gender = "robot"

	err := v.Validate(&req)
	require.Error(t, err)
	vErr := err.(*ValidationError)

	assert.Equal(t, "This field is required", vErr.Errors["skills"])
	assert.Equal(t, "Must be at least 14", vErr.Errors["age"])
	assert.Equal(t, "Must be one of: male, female, other", vErr.Errors["gender"])
}

func TestValidate_ProfileFieldsRequired(t *testing.T) {
	v := New()

	req := validApply()
	req.Age = 0
	req.Gender = ""
	req.Experience = nil

	err := v.Validate(&req)
	require.Error(t, err)
	vErr := err.(*ValidationError)
	assert.Equal(t, "This field is required", vErr.Errors["age"])
	assert.Equal(t, "This field is required", vErr.Errors["gender"])
	assert.Equal(t, "This field is required", vErr.Errors["experience"])

	req = validApply()
	req.Experience = intPtr(0)
	assert.NoError(t, v.Validate(&req))

	req.Experience = intPtr(-1)
	err = v.Validate(&req)
	require.Error(t, err)
	assert.Equal(t, "Must be at least 0", err.(*ValidationError).Errors["experience"])
}

func TestValidate_UpdateJobRequestPointers(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&dto.UpdateJobRequest{}))

	blank := " "
	negative := int64(-5)
	err := v.Validate(&dto.UpdateJobRequest{Title: &blank, Salary: &negative})
	require.Error(t, err)
	vErr := err.(*ValidationError)
	assert.Contains(t, vErr.Errors, "title")
	assert.Contains(t, vErr.Errors, "salary")
}

func TestValidate_UserRoleTag(t *testing.T) {
	v := New()

	type roleInput struct {
		Role string `json:"role" validate:"is-user-role"`
	}
	assert.NoError(t, v.Validate(&roleInput{Role: "creator"}))
	assert.NoError(t, v.Validate(&roleInput{}))
	assert.Error(t, v.Validate(&roleInput{Role: "admin"}))
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := &ValidationError{Errors: map[string]string{"b": "second", "a": "first"}}
	assert.Equal(t, "Validation failed: field 'a': first; field 'b': second", err.Error())
}
