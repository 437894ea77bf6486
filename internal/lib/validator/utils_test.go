package validator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type sampleInput struct {
	Title  string `json:"titulo" validate:"required" errorMsg:"O título é obrigatório."`
	Rating string `json:"classificacao" validate:"omitempty,contentrating"`
	Year   int    `json:"ano" validate:"omitempty,releaseyear"`
	Born   string `json:"nascimento" validate:"omitempty,notfuture"`
}

func TestValidateStruct(t *testing.T) {
	v := New()

	t.Run("errors keyed by json tag with errorMsg override", func(t *testing.T) {
		errs := ValidateStruct(v, sampleInput{})
		assert.Equal(t, map[string]string{"titulo": "O título é obrigatório."}, errs)
	})

	t.Run("valid input yields no errors", func(t *testing.T) {
		errs := ValidateStruct(v, sampleInput{Title: "ok", Rating: "Livre", Year: 1999, Born: "1990-05-12"})
		assert.Empty(t, errs)
	})
}

func TestContentRating(t *testing.T) {
	v := New()
	for _, ok := range []string{"Livre", "10+", "12+", "18+"} {
		assert.Empty(t, ValidateStruct(v, sampleInput{Title: "x", Rating: ok}), "rating %q", ok)
	}
	for _, bad := range []string{"livre", "PG-13", "+18", "18"} {
		errs := ValidateStruct(v, sampleInput{Title: "x", Rating: bad})
		assert.Contains(t, errs, "classificacao", "rating %q", bad)
	}
}

func TestReleaseYear(t *testing.T) {
	v := New()
	cur := time.Now().Year()
	for _, ok := range []int{1888, 1962, cur} {
		assert.Empty(t, ValidateStruct(v, sampleInput{Title: "x", Year: ok}), "year %d", ok)
	}
	for _, bad := range []int{1887, cur + 1} {
		errs := ValidateStruct(v, sampleInput{Title: "x", Year: bad})
		assert.Contains(t, errs, "ano", "year %d", bad)
	}
}

func TestNotFuture(t *testing.T) {
	v := New()
	today := time.Now().Format("2006-01-02")
	assert.Empty(t, ValidateStruct(v, sampleInput{Title: "x", Born: today}), "today is not in the future")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	assert.Contains(t, ValidateStruct(v, sampleInput{Title: "x", Born: tomorrow}), "nascimento")

	assert.Contains(t, ValidateStruct(v, sampleInput{Title: "x", Born: "12/05/1990"}), "nascimento",
		"unparseable dates fail")
}

func TestGetErrorMsgDefaults(t *testing.T) {
	type in struct {
		N int `json:"n" validate:"min=3"`
	}
	v := New()
	errs := ValidateStruct(v, in{N: 1})
	assert.Equal(t, fmt.Sprintf("The minimum value is %d", 3), errs["n"])
}
