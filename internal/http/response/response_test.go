package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/openchain-academy/academy-backend/internal/pkg/errors"
)

func TestRespondFromError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not_found", err: fmt.Errorf("document %q: %w", "x", pkgerrors.ErrNotFound), wantStatus: http.StatusNotFound, wantCode: "not_found"},
		{name: "unauthorized", err: pkgerrors.ErrUnauthorized, wantStatus: http.StatusUnauthorized, wantCode: "unauthorized"},
		{name: "invalid_argument", err: pkgerrors.ErrInvalidArgument, wantStatus: http.StatusBadRequest, wantCode: "invalid_argument"},
		{name: "criteria_not_met", err: pkgerrors.ErrCriteriaNotMet, wantStatus: http.StatusConflict, wantCode: "criteria_not_met"},
		{name: "unknown", err: fmt.Errorf("disk on fire"), wantStatus: http.StatusInternalServerError, wantCode: "internal"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			RespondFromError(c, tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if env.Error.Code != tc.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tc.wantCode)
			}
			if env.Error.Message == "" {
				t.Error("empty message")
			}
		})
	}
}
