package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title  string `validate:"notblank"`
	Status string `validate:"omitempty,task_status"`
	Role   string `validate:"omitempty,user_role"`
}

func TestRegisterOn(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	assert.NoError(t, v.Struct(sample{Title: "ok", Status: "IN_PROGRESS", Role: "GUEST"}))
	assert.NoError(t, v.Struct(sample{Title: "ok"}))

	tests := []struct {
		name  string
		input sample
		tag   string
	}{
		{"blank title", sample{Title: "   "}, "notblank"},
		{"unknown status", sample{Title: "ok", Status: "DONE"}, "task_status"},
		{"lowercase status", sample{Title: "ok", Status: "pending"}, "task_status"},
		{"unknown role", sample{Title: "ok", Role: "ROOT"}, "user_role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			var validationErrs validator.ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			assert.Equal(t, tt.tag, validationErrs[0].Tag())
		})
	}
}

func TestRegister_Idempotent(t *testing.T) {
	assert.NoError(t, Register())
	assert.NoError(t, Register())
}
