package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streetbite/internal/model"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"validation", model.NewValidation("items", "at least one item is required"), http.StatusBadRequest, ErrCodeBadRequest, "invalid items: at least one item is required"},
		{"wrapped not found", fmt.Errorf("load: %w", model.NewNotFound("vendor", 5)), http.StatusNotFound, ErrCodeNotFound, "load: vendor 5 not found"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, ErrCodeInternal, "Failed to create order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteServiceError(rec, "create order", tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}
