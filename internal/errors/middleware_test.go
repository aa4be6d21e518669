package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ghgcli/internal/shared/testutil"
)

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantLevel slog.Level
		wantLog   bool
	}{
		{"success", http.StatusOK, slog.LevelInfo, false},
		{"client error", http.StatusUnprocessableEntity, slog.LevelWarn, true},
		{"server error", http.StatusInternalServerError, slog.LevelError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logHandler := testutil.NewTestLogger(t)
			m := NewErrorMiddleware(logger)

			h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health?verbose=1", nil))

			assert.Equal(t, tt.status, w.Code)
			if !tt.wantLog {
				assert.False(t, logHandler.ContainsMessage("Request failed"))
				return
			}
			records := logHandler.GetRecordsByLevel(tt.wantLevel)
			if assert.Len(t, records, 1) {
				assert.Equal(t, "Request failed", records[0].Message)
				assert.Equal(t, int64(tt.status), records[0].Attrs["status"])
				assert.Equal(t, "verbose=1", records[0].Attrs["query"])
			}
		})
	}
}

func TestErrorMiddleware_SummarizesJSONBodyOnError(t *testing.T) {
	logger, logHandler := testutil.NewTestLogger(t)
	m := NewErrorMiddleware(logger)

	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	body := `{"records":[{"plant":"a"},{"plant":"b"}],"factor":-1}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/emissions/evaluate", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), r)

	records := logHandler.GetRecordsByLevel(slog.LevelWarn)
	if assert.Len(t, records, 1) {
		logged := records[0].Attrs["request_body"].(string)
		assert.Contains(t, logged, `"count":2`)
		assert.NotContains(t, logged, `"plant"`)
	}
}

func TestSummarizeRequestBody(t *testing.T) {
	assert.Equal(t, "not json", summarizeRequestBody([]byte("not json")))
	assert.Equal(t, `{"factor":0.444}`, summarizeRequestBody([]byte(`{"factor":0.444}`)))
}
