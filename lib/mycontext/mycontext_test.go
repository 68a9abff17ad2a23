package mycontext

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext(t *testing.T) {
	t.Run("Trace from header", func(t *testing.T) {
		t.Setenv("GOOGLE_CLOUD_PROJECT", "my-project")

		request, err := http.NewRequest(http.MethodGet, "/cart", nil)
		assert.NoError(t, err)
		request.Header.Set("X-Cloud-Trace-Context", "abc123/456;o=1")

		c := ContextFromHTTPRequest(request)

		assert.Equal(t, "projects/my-project/traces/abc123", TraceFromContext(c))
	})

	t.Run("No trace header", func(t *testing.T) {
		request, err := http.NewRequest(http.MethodGet, "/cart", nil)
		assert.NoError(t, err)

		c := ContextFromHTTPRequest(request)

		assert.Equal(t, "", TraceFromContext(c))
	})

	t.Run("Session uid", func(t *testing.T) {
		c := WithSessionUID(context.TODO(), "session_123")
		assert.Equal(t, "session_123", SessionUIDFromContext(c))
		assert.Equal(t, "", SessionUIDFromContext(context.TODO()))
	})
}
