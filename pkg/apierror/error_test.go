package apierror

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromResponse_FlatMessageShape(t *testing.T) {
	err := FromResponse(http.StatusUnauthorized, []byte(`{"message":"session expired"}`))

	assert.Equal(t, http.StatusUnauthorized, err.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", err.Code)
	assert.EqualError(t, err, "session expired")
}

func TestFromResponse_WrappedErrorShape(t *testing.T) {
	body := []byte(`{"error":{"code":"PRODUCT_NOT_FOUND","message":"no such bundle"}}`)
	err := FromResponse(http.StatusNotFound, body)

	assert.Equal(t, "PRODUCT_NOT_FOUND", err.Code)
	assert.EqualError(t, err, "no such bundle")
}

func TestFromResponse_UnparseableBodyFallsBackToStatusText(t *testing.T) {
	err := FromResponse(http.StatusInternalServerError, []byte("<html>oops</html>"))

	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.EqualError(t, err, "Internal Server Error")
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, IsUnauthorized(Unauthorized("")))
	assert.True(t, IsNotFound(FromResponse(http.StatusNotFound, nil)))
	assert.False(t, IsNotFound(FromResponse(http.StatusUnauthorized, nil)))
	assert.False(t, IsUnauthorized(fmt.Errorf("plain error")))
}

func TestStatusPredicates_SeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("failed to fetch order: %w", FromResponse(http.StatusNotFound, nil))
	assert.True(t, IsNotFound(wrapped))
}
