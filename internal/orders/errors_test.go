package orders

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsErrorThroughWrapping(t *testing.T) {
	orig := Validation(CodeItemNotFound, "item not found")
	wrapped := fmt.Errorf("handling request: %w", orig)

	e, ok := AsError(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindValidation, e.Kind)
	assert.Equal(t, CodeItemNotFound, e.Code)
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	e := Internal("save order", cause)

	assert.Equal(t, KindInternal, e.Kind)
	assert.ErrorIs(t, e, cause)
	assert.Contains(t, e.Error(), "save order")
	assert.Contains(t, e.Error(), "connection refused")
}

func TestKindHelpers(t *testing.T) {
	assert.True(t, IsValidation(Validation(CodeInvalidQuantity, "qty")))
	assert.False(t, IsValidation(Internal("x", nil)))
	assert.True(t, IsAuth(Auth(CodeCredentialMissing, "no token")))
	assert.False(t, IsAuth(errors.New("plain")))
}
