package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	t.Run("extracts a business error", func(t *testing.T) {
		err := NotFound("Deposit not found")
		e := From(err)
		assert.NotNil(t, e)
		assert.Equal(t, http.StatusNotFound, e.Status)
		assert.Equal(t, "Deposit not found", e.Message)
	})

	t.Run("extracts through wrapping", func(t *testing.T) {
		err := fmt.Errorf("approving: %w", Conflict("Deposit has already been rejected"))
		e := From(err)
		assert.NotNil(t, e)
		assert.Equal(t, http.StatusConflict, e.Status)
	})

	t.Run("plain errors stay opaque", func(t *testing.T) {
		assert.Nil(t, From(errors.New("connection refused")))
	})
}

func TestErrorString(t *testing.T) {
	cause := errors.New("record not found")
	err := &Error{Status: 404, Message: "User not found", Err: cause}
	assert.Equal(t, "User not found: record not found", err.Error())
	assert.True(t, errors.Is(err, cause))
}
