package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsKind(t *testing.T) {
	err := newError(ErrDuplicateEmail, msgEmailInUse)

	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, msgEmailInUse, err.Error())
	assert.Equal(t, msgEmailInUse, Message(err))
}

func TestError_WrapsCause(t *testing.T) {
	cause := errors.New("smtp: 421")
	err := fmt.Errorf("forgot password: %w", wrapError(ErrEmailDelivery, msgEmailNotSent, cause))

	assert.ErrorIs(t, err, ErrEmailDelivery)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, msgEmailNotSent, Message(err))
	assert.Contains(t, err.Error(), "smtp: 421")
}

func TestMessage_PlainError(t *testing.T) {
	assert.Empty(t, Message(errors.New("boom")))
	assert.Empty(t, Message(nil))
}
