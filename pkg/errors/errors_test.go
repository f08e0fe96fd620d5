package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCloneKeepsIdentityForIs(t *testing.T) {
	err := Clone(ErrUnauthorized, "token expired")
	require.Equal(t, "token expired", err.Message)
	require.Equal(t, http.StatusUnauthorized, err.Status)
	require.True(t, stderrors.Is(err, ErrUnauthorized))
	require.False(t, stderrors.Is(err, ErrNotFound))
}

func TestIsAuthorizationFailureThroughWrapping(t *testing.T) {
	base := Wrap(fmt.Errorf("401"), ErrUnauthorized.Code, ErrUnauthorized.Status, "rejected")
	wrapped := fmt.Errorf("load students: %w", base)
	require.True(t, IsAuthorizationFailure(wrapped))
	require.False(t, IsAuthorizationFailure(ErrTransport))
	require.False(t, IsAuthorizationFailure(nil))
}

func TestFromErrorNormalisesPlainErrors(t *testing.T) {
	err := FromError(stderrors.New("boom"))
	require.Equal(t, ErrInternal.Code, err.Code)
	require.Equal(t, "internal server error: boom", err.Error())
	require.Nil(t, FromError(nil))

	typed := Clone(ErrNoMatchingRecords, "")
	require.Same(t, typed, FromError(typed))
}
