package sitecrawl_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/sitecrawl"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := sitecrawl.Errorf(sitecrawl.ENOTFOUND, "result %q not found", "abc")

	assert.Equal(t, sitecrawl.ENOTFOUND, sitecrawl.ErrorCode(err))
	assert.Equal(t, "result \"abc\" not found", sitecrawl.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sitecrawl.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, sitecrawl.ErrorMessage(nil))
}

func TestErrorCode_WrappedError(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("saving: %w", sitecrawl.Errorf(sitecrawl.EINVALID, "bad"))

	assert.Equal(t, sitecrawl.EINVALID, sitecrawl.ErrorCode(err))
	assert.Equal(t, "bad", sitecrawl.ErrorMessage(err))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	assert.Equal(t, sitecrawl.EINTERNAL, sitecrawl.ErrorCode(err))
	assert.Equal(t, "Internal error.", sitecrawl.ErrorMessage(err))
}

func TestFetchError_Retryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *sitecrawl.FetchError
		want bool
	}{
		{"service unavailable", &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 503}, true},
		{"too many requests", &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 429}, true},
		{"request timeout", &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 408}, true},
		{"not found", &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 404}, false},
		{"forbidden", &sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 403}, false},
		{"network", &sitecrawl.FetchError{Kind: sitecrawl.FetchNetwork}, true},
		{"timeout", &sitecrawl.FetchError{Kind: sitecrawl.FetchTimeout}, true},
		{"robots", &sitecrawl.FetchError{Kind: sitecrawl.FetchRobots}, false},
		{"canceled", &sitecrawl.FetchError{Kind: sitecrawl.FetchCanceled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Retryable())
			assert.Equal(t, tt.want, sitecrawl.IsRetryable(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestFetchErrorStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 404, sitecrawl.FetchErrorStatus(&sitecrawl.FetchError{Kind: sitecrawl.FetchStatus, StatusCode: 404}))
	assert.Equal(t, 0, sitecrawl.FetchErrorStatus(errors.New("boom")))
}
