package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/features/attendance/smart/dto"
	"sekolahku_backend/internals/helpers/dbtime"
)

func testClient(baseURL string) *HTTPPredictionClient {
	return NewHTTPPredictionClient(configs.AttendanceConfig{
		PredictionBaseURL:  baseURL,
		PredictionTimeout:  500 * time.Millisecond,
		PredictionCacheTTL: time.Minute,
	}, dbtime.FixedClock{T: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)})
}

func TestPredictFallbackWithoutBaseURL(t *testing.T) {
	c := testClient("")

	studentID := uuid.New()
	out := c.Predict(context.Background(), studentID, 14)
	require.True(t, out.Fallback)
	require.Equal(t, 0.5, out.Score)
	require.Equal(t, dto.RiskLow, out.Class)
	require.Equal(t, studentID, out.StudentID)
	require.Equal(t, 14, out.HorizonDays)
}

func TestPredictFallbackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	out := testClient(srv.URL).Predict(context.Background(), uuid.New(), 7)
	require.True(t, out.Fallback)
	require.Equal(t, 0.5, out.Score)
}

func TestPredictFallbackOnInvalidRemoteValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"score": 3.7, "class": "catastrophic"}`)
	}))
	defer srv.Close()

	out := testClient(srv.URL).Predict(context.Background(), uuid.New(), 7)
	require.True(t, out.Fallback)
}

func TestPredictUsesRemoteAndCaches(t *testing.T) {
	var calls int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		fmt.Fprint(w, `{"score": 0.82, "class": "high"}`)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	studentID := uuid.New()

	first := c.Predict(context.Background(), studentID, 14)
	require.False(t, first.Fallback)
	require.Equal(t, 0.82, first.Score)
	require.Equal(t, dto.RiskHigh, first.Class)

	second := c.Predict(context.Background(), studentID, 14)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, atomic.LoadInt64(&calls))

	// a different horizon is a different cache key
	c.Predict(context.Background(), studentID, 30)
	require.EqualValues(t, 2, atomic.LoadInt64(&calls))
}

func TestPredictFallbackOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	start := time.Now()
	out := testClient(srv.URL).Predict(context.Background(), uuid.New(), 7)
	require.True(t, out.Fallback)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestAnalyzeClassRemoteAndFallback(t *testing.T) {
	atRisk := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"trend": "declining", "at_risk_students": [%q], "recommendations": ["call home"]}`, atRisk)
	}))
	defer srv.Close()

	classID := uuid.New()
	out := testClient(srv.URL).AnalyzeClass(context.Background(), classID)
	require.False(t, out.Fallback)
	require.Equal(t, dto.TrendDeclining, out.Trend)
	require.Equal(t, []uuid.UUID{atRisk}, out.AtRiskStudents)
	require.Equal(t, []string{"call home"}, out.Recommendations)

	fb := testClient("").AnalyzeClass(context.Background(), classID)
	require.True(t, fb.Fallback)
	require.Equal(t, dto.TrendStable, fb.Trend)
	require.NotNil(t, fb.AtRiskStudents)
	require.Empty(t, fb.AtRiskStudents)
}
