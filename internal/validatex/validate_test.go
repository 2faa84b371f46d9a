package validatex

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `validate:"required,min=3,max=30,username"`
	Email    string `validate:"required,email"`
	Role     string `validate:"omitempty,oneof=user admin"`
	MaxUses  *int   `validate:"omitempty,min=1"`
}

func intPtr(v int) *int { return &v }

func TestStruct(t *testing.T) {
	valid := signup{Username: "alice.b-c_1", Email: "alice@example.com"}

	tests := []struct {
		name string
		edit func(*signup)
		want string
	}{
		{"valid", func(*signup) {}, ""},
		{"missing username", func(s *signup) { s.Username = "" }, "username is required"},
		{"short username", func(s *signup) { s.Username = "al" }, "username must be at least 3 characters"},
		{"long username", func(s *signup) { s.Username = strings.Repeat("a", 31) }, "username must be at most 30 characters"},
		{"username charset", func(s *signup) { s.Username = "bad name" }, "username may contain only letters, digits, '.', '_' and '-'"},
		{"email", func(s *signup) { s.Email = "Alice <alice@example.com>" }, "email must be a valid email address"},
		{"role", func(s *signup) { s.Role = "root" }, "role must be one of: user, admin"},
		{"zero uses", func(s *signup) { s.MaxUses = intPtr(0) }, "maxUses must be at least 1"},
		{"nil uses", func(s *signup) { s.MaxUses = nil }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)

			err := Struct(in)
			if tt.want == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, common.ErrorValidation)
			var ve *common.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.want, ve.Message)
		})
	}
}

func TestVar(t *testing.T) {
	require.NoError(t, Var("password", "secret1", "required,min=6"))

	err := Var("password", "123", "required,min=6")
	require.ErrorIs(t, err, common.ErrorValidation)
	assert.EqualError(t, err, "validation error: password must be at least 6 characters")
}

func TestTranslate_PassesOtherErrors(t *testing.T) {
	assert.NoError(t, Translate(nil))

	other := errors.New("unexpected EOF")
	assert.Same(t, other, Translate(other))
}

func TestRegister_AddsRulesToForeignValidator(t *testing.T) {
	v := validator.New()
	Register(v)

	assert.NoError(t, v.Var("root_1", "username"))
	assert.Error(t, v.Var("root 1", "username"))
}
