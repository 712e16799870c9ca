package webapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbaworks/awr-advisor/pkg/logger"
)

func TestHandlerRejectsMissingBearerToken(t *testing.T) {
	s := &Server{log: logger.New()}
	req := httptest.NewRequest(http.MethodGet, "/workspaces", nil)
	rec := httptest.NewRecorder()

	s.Handler("test-secret").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteErrorProducesJSONBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "workspace not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"workspace not found"}`, rec.Body.String())
}
