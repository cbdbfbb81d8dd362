package errors_test

import (
	"testing"

	"github.com/habiliai/inbox/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationErrorMatchesInvalidParams(t *testing.T) {
	err := errors.Wrapf(errors.NewValidationError("content", "content is required"), "failed to append message")

	assert.True(t, errors.Is(err, errors.ErrInvalidParams))
	assert.False(t, errors.Is(err, errors.ErrNotFound))

	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"content is required"}, verr.Fields["content"])
}

func TestValidationErrorOrNil(t *testing.T) {
	verr := &errors.ValidationError{}
	assert.NoError(t, verr.OrNil())

	verr.Add("to_users", "at least one recipient required").Add("content", "content is required")
	err := verr.OrNil()
	require.Error(t, err)
	assert.Equal(t, "inbox: validation failed: content: content is required, to_users: at least one recipient required", err.Error())
}
