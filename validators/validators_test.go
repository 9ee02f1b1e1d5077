package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	tests := []struct {
		email string
		want  error
	}{
		{"", ErrEmailEmpty},
		{"not-an-email", ErrEmailInvalid},
		{"a@b", nil},
		{"ada@example.com", nil},
		{strings.Repeat("a", 250) + "@example.com", ErrEmailTooLong},
	}

	for _, tt := range tests {
		assert.ErrorIs(t, EmailValidator(tt.email), tt.want, tt.email)
	}
}

func TestPasswordValidator(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"", ErrPasswordEmpty},
		{"short", ErrPasswordTooShort},
		{"longenough", nil},
		{strings.Repeat("x", 256), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		assert.ErrorIs(t, PasswordValidator(tt.password), tt.want)
	}
}

func TestNameValidator(t *testing.T) {
	tests := []struct {
		name string
		want error
	}{
		{"", ErrNameEmpty},
		{"   ", ErrNameEmpty},
		{"Ada", nil},
		{strings.Repeat("x", 65), ErrNameTooLong},
	}

	for _, tt := range tests {
		assert.ErrorIs(t, NameValidator(tt.name), tt.want)
	}
}

func TestURLValidator(t *testing.T) {
	tests := []struct {
		url  string
		want error
	}{
		{"", ErrURLEmpty},
		{"example.com", ErrURLInvalid},
		{"ftp://example.com", ErrURLInvalid},
		{"https://", ErrURLInvalid},
		{"http://example.com", nil},
		{"https://example.com/a?b=c", nil},
		{"https://example.com/" + strings.Repeat("x", 2048), ErrURLTooLong},
	}

	for _, tt := range tests {
		assert.ErrorIs(t, URLValidator(tt.url), tt.want, tt.url)
	}
}
