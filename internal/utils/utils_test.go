package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCamelToSnake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BirthDate", "birth_date"},
		{"Name", "name"},
		{"GenreIDs", "genre_i_ds"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CamelToSnake(tt.in), "CamelToSnake(%q)", tt.in)
	}
}
