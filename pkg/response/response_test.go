package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestJSONWithWindow(t *testing.T) {
	c, w := newContext()
	JSON(c, http.StatusOK, []string{"r1"}, &Window{Limit: 50, Count: 1}, map[string]interface{}{"request_id": "abc"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]interface{}{"limit": float64(50), "offset": float64(0), "count": float64(1)}, body["pagination"])
	assert.Equal(t, "abc", body["meta"].(map[string]interface{})["request_id"])
	assert.NotContains(t, body, "error")
}

func TestErrorClientFacing(t *testing.T) {
	c, w := newContext()
	Error(c, appErrors.Clone(appErrors.ErrInvalidState, "request already reviewed"))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, c.Errors)
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_STATE", body.Error.Code)
	assert.Equal(t, "request already reviewed", body.Error.Message)
}

func TestErrorServerSideIsRecorded(t *testing.T) {
	c, w := newContext()
	Error(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Len(t, c.Errors, 1)
	assert.NotContains(t, w.Body.String(), "connection refused")
}
