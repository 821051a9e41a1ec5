package querylist_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/sd2595101/querylist"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := querylist.Errorf(querylist.ESELECTOR, "invalid selector %q", "div[")

	assert.Equal(t, querylist.ESELECTOR, querylist.ErrorCode(err))
	assert.Equal(t, "invalid selector \"div[\"", querylist.ErrorMessage(err))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("loading rules: %w", querylist.Errorf(querylist.EUNSUPPORTED, "nested"))

	assert.Equal(t, querylist.EUNSUPPORTED, querylist.ErrorCode(err))
	assert.Equal(t, "nested", querylist.ErrorMessage(err))
}

func TestErrorCode_OtherError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, querylist.EINTERNAL, querylist.ErrorCode(err))
	assert.Equal(t, "Internal error", querylist.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, querylist.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, querylist.ErrorMessage(nil))
}
