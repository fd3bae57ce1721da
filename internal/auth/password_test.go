package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		wantErr  error
	}{
		{"Sh0rt!", ErrPasswordTooShort},
		{"alllowercase", ErrPasswordTooWeak},
		{"lowercase123", ErrPasswordTooWeak},
		{"Lowercase123", nil},
		{"lowercase12!", nil},
		{"UPPER-lower", nil},
		{"calm river 42", nil},
		{"Ünïcødé1", nil},
		{"Aa1" + strings.Repeat("x", MaxPasswordBytes), ErrPasswordTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPasswordPolicy_Check(t *testing.T) {
	lenient := PasswordPolicy{MinLength: 4, MinClasses: 1}
	assert.NoError(t, lenient.Check("abcd"))
	assert.ErrorIs(t, lenient.Check("abc"), ErrPasswordTooShort)

	strict := PasswordPolicy{MinLength: 8, MinClasses: 4}
	assert.ErrorIs(t, strict.Check("Lowercase123"), ErrPasswordTooWeak)
	assert.NoError(t, strict.Check("Lowercase12!"))

	err := DefaultPasswordPolicy.Check("short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 8 characters")
}

// Multi-byte characters count once toward the minimum length.
func TestPasswordPolicy_CountsCharacters(t *testing.T) {
	policy := PasswordPolicy{MinLength: 4, MinClasses: 1}
	assert.NoError(t, policy.Check("ääää"))
	assert.ErrorIs(t, policy.Check("äää"), ErrPasswordTooShort)
}

func TestHashAndCheckPassword(t *testing.T) {
	hashCost = bcrypt.MinCost
	t.Cleanup(func() { hashCost = BcryptCost })

	hash, err := HashPassword("Correct-horse1")
	require.NoError(t, err)
	assert.NotEqual(t, "Correct-horse1", hash)
	assert.True(t, CheckPassword("Correct-horse1", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}
