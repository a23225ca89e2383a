package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

func TestAcknowledge(t *testing.T) {
	c, w := newContext()
	Acknowledge(c, StatusReceived)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != `{"status":"received"}` {
		t.Errorf("body = %s", got)
	}
}

func TestBadRequestEnvelope(t *testing.T) {
	c, w := newContext()
	BadRequest(c, "studentId is required")

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}

	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Success || body.Error == nil || body.Error.Code != "BAD_REQUEST" || body.Error.Message != "studentId is required" {
		t.Errorf("body = %+v", body)
	}
}

func TestJSONHasNoEnvelope(t *testing.T) {
	c, w := newContext()
	JSON(c, []string{"a", "b"})

	if got := w.Body.String(); got != `["a","b"]` {
		t.Errorf("body = %s", got)
	}
}
