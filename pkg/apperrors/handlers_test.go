package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, err)

	var body struct {
		Error map[string]interface{} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body.Error
}

func TestHandleError_AppError(t *testing.T) {
	code, body := handle(t, ErrChannelClosed)

	assert.Equal(t, ErrChannelClosed.HTTPCode, code)
	assert.Equal(t, string(CodeChannelClosed), body["code"])
	assert.Equal(t, ErrChannelClosed.Message, body["message"])
}

func TestHandleError_WrappedAppError(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("list messages: %w", ErrStore(cause))

	code, body := handle(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, string(CodeStoreError), body["code"])
	assert.NotContains(t, body["message"], "connection refused", "причина не уходит клиенту")
}

func TestHandleError_UnknownError(t *testing.T) {
	code, body := handle(t, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, string(CodeInternalError), body["code"])
}

func TestValidationErrorDetails(t *testing.T) {
	code, body := handle(t, ValidationError(map[string]string{"national_id": "Must be 12 digits"}))

	assert.Equal(t, http.StatusBadRequest, code)
	details, ok := body["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Must be 12 digits", details["national_id"])
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("duplicate key")
	err := ErrAlreadyExists(cause, "application", "You have already applied to this job")

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "ALREADY_EXISTS")
	assert.Equal(t, http.StatusConflict, err.HTTPCode)
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeStoreError, CodeOf(fmt.Errorf("send: %w", ErrStore(errors.New("down")))))
	assert.Equal(t, CodeChannelClosed, CodeOf(ErrChannelClosed))
	assert.Equal(t, CodeInternalError, CodeOf(errors.New("boom")))
}
