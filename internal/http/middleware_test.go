package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestParamsMiddleware(t *testing.T) {
	globalLevel := log.GetLevel()

	t.Run("verbose raises the level of the request logger only", func(t *testing.T) {
		var requestLevel log.Level
		var dryRun bool
		h := paramsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLevel = log.FromContext(r.Context()).GetLevel()
			dryRun = isDryRunFromContext(r)
			assert.Equal(t, globalLevel, log.GetLevel(), "global level must not change during the request")
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/players?verbose=true&dry_run=true", nil))

		assert.Equal(t, log.DebugLevel, requestLevel)
		assert.True(t, dryRun)
		assert.Equal(t, globalLevel, log.GetLevel())
	})

	t.Run("without verbose the request logger keeps the global level", func(t *testing.T) {
		var requestLevel log.Level
		h := paramsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestLevel = log.FromContext(r.Context()).GetLevel()
			assert.False(t, isDryRunFromContext(r))
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/players", nil))

		assert.Equal(t, globalLevel, requestLevel)
	})
}
