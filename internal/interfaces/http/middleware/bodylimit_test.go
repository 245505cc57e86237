package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/webstudio/backend/internal/interfaces/http/dto"
)

type leadPayload struct {
	Name    string `json:"name" binding:"required"`
	Message string `json:"message"`
}

func leadFormRouter(limit int64) *gin.Engine {
	router := gin.New()
	router.Use(BodyLimit(limit))
	router.POST("/public/leads", func(c *gin.Context) {
		var p leadPayload
		if err := c.ShouldBindJSON(&p); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"name": p.Name})
	})
	router.GET("/public/services", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func postLead(router http.Handler, body string, chunked bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/public/leads", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if chunked {
		req.ContentLength = -1
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBodyLimit_AcceptsSmallLead(t *testing.T) {
	w := postLead(leadFormRouter(256), `{"name":"Jana","message":"Novy web pro kavarnu"}`, false)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBodyLimit_RefusesDeclaredOversizeBody(t *testing.T) {
	body := `{"name":"Jana","message":"` + strings.Repeat("x", 512) + `"}`
	w := postLead(leadFormRouter(256), body, false)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooLarge)
}

func TestBodyLimit_ChunkedOversizeBodyIs413NotValidationError(t *testing.T) {
	body := `{"name":"Jana","message":"` + strings.Repeat("x", 512) + `"}`
	w := postLead(leadFormRouter(256), body, true)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrCodeRequestTooLarge)
}

func TestBodyLimit_ChunkedSmallBodyPasses(t *testing.T) {
	w := postLead(leadFormRouter(256), `{"name":"Jana"}`, true)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBodyLimit_IgnoresBodylessRequests(t *testing.T) {
	w := get(leadFormRouter(1), "/public/services", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
