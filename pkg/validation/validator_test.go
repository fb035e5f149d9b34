package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileInput struct {
	Email       string   `json:"email" validate:"required,email"`
	Password    string   `json:"password" validate:"required,pwd"`
	Username    string   `json:"username" validate:"omitempty,username"`
	AddressType string   `json:"addressType" validate:"omitempty,addresstype"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Rating      float64  `json:"rating" validate:"rating"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	lat := 91.0
	err := newValidator().Struct(profileInput{
		Email:       "nope",
		Password:    "short",
		Username:    "a!",
		AddressType: "Castle",
		Latitude:    &lat,
		Rating:      7,
	})
	require.Error(t, err)

	d := ToDetails(err)
	assert.Equal(t, "must be a valid email", d["email"])
	assert.Equal(t, "min length 8", d["password"])
	assert.Equal(t, "must be 3-30 letters, digits, '_' or '.'", d["username"])
	assert.Equal(t, "must be one of: Home, Work, Other", d["addressType"])
	assert.Equal(t, "must be a valid latitude", d["latitude"])
	assert.Equal(t, "must be between 0 and 5", d["rating"])
}

func TestValidInputPasses(t *testing.T) {
	err := newValidator().Struct(profileInput{
		Email:       "a@b.co",
		Password:    "longenough",
		Username:    "jane_doe",
		AddressType: "Home",
		Rating:      4.5,
	})
	assert.NoError(t, err)
}

func TestToDetailsPayloadErrors(t *testing.T) {
	assert.Nil(t, ToDetails(nil))

	var v map[string]any
	syntaxErr := json.Unmarshal([]byte("{x"), &v)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(syntaxErr))

	var n struct {
		N int `json:"n"`
	}
	typeErr := json.Unmarshal([]byte(`{"n":"x"}`), &n)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(typeErr))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("boom")))
}
