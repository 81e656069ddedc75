// file: internals/features/attendance/smart/service/prediction_client.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"sekolahku_backend/internals/configs"
	"sekolahku_backend/internals/features/attendance/smart/dto"
	"sekolahku_backend/internals/helpers/dbtime"
)

// PredictionPort is the narrow outbound interface to the ML service. Both
// calls are bounded-wait and never fail the caller: on timeout or transport
// error they return the deterministic neutral fallback, marked as such.
type PredictionPort interface {
	Predict(ctx context.Context, studentID uuid.UUID, horizonDays int) *dto.RiskInsight
	AnalyzeClass(ctx context.Context, classID uuid.UUID) *dto.ClassInsight
}

// HTTPPredictionClient talks JSON to the external predictor and memoizes
// responses in a bounded TTL cache so two calls within the TTL return the
// same insight.
type HTTPPredictionClient struct {
	BaseURL string
	Client  *http.Client
	Clock   dbtime.Clock
	cache   *gocache.Cache
}

func NewHTTPPredictionClient(cfg configs.AttendanceConfig, clock dbtime.Clock) *HTTPPredictionClient {
	return &HTTPPredictionClient{
		BaseURL: cfg.PredictionBaseURL,
		Client:  &http.Client{Timeout: cfg.PredictionTimeout},
		Clock:   clock,
		cache:   gocache.New(cfg.PredictionCacheTTL, 2*cfg.PredictionCacheTTL),
	}
}

/* ===================== FALLBACKS ===================== */

func (c *HTTPPredictionClient) fallbackInsight(studentID uuid.UUID, horizonDays int) *dto.RiskInsight {
	return &dto.RiskInsight{
		StudentID:   studentID,
		HorizonDays: horizonDays,
		Score:       0.5,
		Class:       dto.RiskLow,
		GeneratedAt: c.Clock.Now(),
		Fallback:    true,
	}
}

func (c *HTTPPredictionClient) fallbackClassInsight(classID uuid.UUID) *dto.ClassInsight {
	return &dto.ClassInsight{
		ClassID:         classID,
		Trend:           dto.TrendStable,
		AtRiskStudents:  []uuid.UUID{},
		Recommendations: []string{},
		GeneratedAt:     c.Clock.Now(),
		Fallback:        true,
	}
}

/* ===================== CALLS ===================== */

func (c *HTTPPredictionClient) Predict(ctx context.Context, studentID uuid.UUID, horizonDays int) *dto.RiskInsight {
	key := fmt.Sprintf("student:%s:%d", studentID, horizonDays)
	if v, ok := c.cache.Get(key); ok {
		return v.(*dto.RiskInsight)
	}

	out := c.fallbackInsight(studentID, horizonDays)
	if c.BaseURL != "" {
		url := fmt.Sprintf("%s/predict/%s?horizon=%d", c.BaseURL, studentID, horizonDays)
		var remote struct {
			Score float64 `json:"score"`
			Class string  `json:"class"`
		}
		if err := c.getJSON(ctx, url, &remote); err != nil {
			log.Printf("[SMART][WARN] predict fallback for %s: %v", studentID, err)
		} else if remote.Score >= 0 && remote.Score <= 1 && validRiskClass(remote.Class) {
			out = &dto.RiskInsight{
				StudentID:   studentID,
				HorizonDays: horizonDays,
				Score:       remote.Score,
				Class:       remote.Class,
				GeneratedAt: c.Clock.Now(),
			}
		}
	}

	c.cache.SetDefault(key, out)
	return out
}

func (c *HTTPPredictionClient) AnalyzeClass(ctx context.Context, classID uuid.UUID) *dto.ClassInsight {
	key := "class:" + classID.String()
	if v, ok := c.cache.Get(key); ok {
		return v.(*dto.ClassInsight)
	}

	out := c.fallbackClassInsight(classID)
	if c.BaseURL != "" {
		url := fmt.Sprintf("%s/analyze/%s", c.BaseURL, classID)
		var remote struct {
			Trend           string      `json:"trend"`
			AtRiskStudents  []uuid.UUID `json:"at_risk_students"`
			Recommendations []string    `json:"recommendations"`
		}
		if err := c.getJSON(ctx, url, &remote); err != nil {
			log.Printf("[SMART][WARN] analyze fallback for %s: %v", classID, err)
		} else if validTrend(remote.Trend) {
			if remote.AtRiskStudents == nil {
				remote.AtRiskStudents = []uuid.UUID{}
			}
			if remote.Recommendations == nil {
				remote.Recommendations = []string{}
			}
			out = &dto.ClassInsight{
				ClassID:         classID,
				Trend:           remote.Trend,
				AtRiskStudents:  remote.AtRiskStudents,
				Recommendations: remote.Recommendations,
				GeneratedAt:     c.Clock.Now(),
			}
		}
	}

	c.cache.SetDefault(key, out)
	return out
}

func (c *HTTPPredictionClient) getJSON(ctx context.Context, url string, into any) error {
	// the port carries its own deadline; never longer than the caller's
	ctx, cancel := context.WithTimeout(ctx, c.Client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("predictor returned %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(into)
}

func validRiskClass(s string) bool {
	return s == dto.RiskLow || s == dto.RiskMedium || s == dto.RiskHigh
}

func validTrend(s string) bool {
	return s == dto.TrendImproving || s == dto.TrendStable || s == dto.TrendDeclining
}

var _ PredictionPort = (*HTTPPredictionClient)(nil)
