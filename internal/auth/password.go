package auth

import (
	"errors"
	"fmt"
	"math/bits"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost used for stored client passwords.
	BcryptCost = 12
	// MinPasswordLength is counted in characters, not bytes.
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt will hash.
	MaxPasswordBytes = 72
)

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordTooWeak  = errors.New("password mixes too few kinds of characters")
)

// hashCost is lowered by tests
var hashCost = BcryptCost

type charClass uint8

const (
	classUpper charClass = 1 << iota
	classLower
	classDigit
	classSymbol
)

func classify(r rune) charClass {
	switch {
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsLower(r):
		return classLower
	case unicode.IsDigit(r):
		return classDigit
	case unicode.IsPunct(r), unicode.IsSymbol(r), unicode.IsSpace(r):
		return classSymbol
	}
	return 0
}

// PasswordPolicy describes what a client account password must satisfy.
// MinClasses counts distinct kinds among upper case, lower case, digits and
// symbols (spaces count as symbols so passphrases qualify).
type PasswordPolicy struct {
	MinLength  int
	MinClasses int
}

// DefaultPasswordPolicy applies to signup and password changes.
var DefaultPasswordPolicy = PasswordPolicy{MinLength: MinPasswordLength, MinClasses: 3}

// Check returns nil when password satisfies p. Errors wrap one of the
// ErrPassword* sentinels.
func (p PasswordPolicy) Check(password string) error {
	if n := utf8.RuneCountInString(password); n < p.MinLength {
		return fmt.Errorf("%w: use at least %d characters", ErrPasswordTooShort, p.MinLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: use at most %d bytes", ErrPasswordTooLong, MaxPasswordBytes)
	}

	var seen charClass
	for _, r := range password {
		seen |= classify(r)
	}
	if bits.OnesCount8(uint8(seen)) < p.MinClasses {
		return fmt.Errorf("%w: combine at least %d of upper case, lower case, digits and symbols",
			ErrPasswordTooWeak, p.MinClasses)
	}
	return nil
}

// ValidatePassword checks password against DefaultPasswordPolicy.
func ValidatePassword(password string) error {
	return DefaultPasswordPolicy.Check(password)
}

// HashPassword returns the bcrypt hash stored for a client account.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
