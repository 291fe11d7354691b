package utils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/task-insights-api/internal/constants"
)

func TestGetPaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, constants.DefaultPageSize, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"page below minimum", "page=0&limit=5", 1, 5, 0},
		{"limit above maximum", "page=2&limit=1000", 2, constants.DefaultPageSize, constants.DefaultPageSize},
		{"garbage", "page=abc&limit=xyz", 1, constants.DefaultPageSize, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/api/tasks/paginated?"+tt.query, nil)

			params := GetPaginationParams(c)
			assert.Equal(t, tt.wantPage, params.Page)
			assert.Equal(t, tt.wantLimit, params.Limit)
			assert.Equal(t, tt.wantOffset, params.Offset)
		})
	}
}

func TestPaginationParams_TotalPages(t *testing.T) {
	params := NewPaginationParams(1, 10)
	assert.Equal(t, 0, params.TotalPages(0))
	assert.Equal(t, 1, params.TotalPages(10))
	assert.Equal(t, 2, params.TotalPages(11))
}

func TestParseTime(t *testing.T) {
	parsed, err := ParseTime("2026-10-19T08:30:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC), parsed)

	parsed, err = ParseTime("2026-10-19T08:30:00", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 8, parsed.Hour())

	parsed, err = ParseTime("2026-10-19", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, parsed.Hour())

	_, err = ParseTime("yesterday", time.UTC)
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2026, 10, 19, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}
