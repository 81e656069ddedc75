// file: internals/configs/config.go
package configs

import (
	"context"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	gormLogger "gorm.io/gorm/logger"
)

var (
	JWTSecret        string
	JWTRefreshSecret string
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ No .env file found, using system ENV")
		} else {
			log.Println("✅ .env file loaded")
		}
	} else {
		log.Println("🚀 Running on Railway, using system ENV")
	}

	JWTSecret = GetEnv("JWT_SECRET")
	JWTRefreshSecret = GetEnv("JWT_REFRESH_SECRET")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET is not set!")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func GetEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func GetEnvBool(key string, def bool) bool {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// =======================
// ATTENDANCE CORE CONFIG
// =======================

// BusinessHours restricts when admin-scoped writes are accepted.
// Disabled by default.
type BusinessHours struct {
	Enabled   bool
	Days      []time.Weekday // allowed weekdays
	StartHour int            // inclusive
	EndHour   int            // exclusive
}

func (b BusinessHours) Allows(t time.Time) bool {
	if !b.Enabled {
		return true
	}
	dayOK := false
	for _, d := range b.Days {
		if t.Weekday() == d {
			dayOK = true
			break
		}
	}
	if !dayOK {
		return false
	}
	return t.Hour() >= b.StartHour && t.Hour() < b.EndHour
}

// AttendanceConfig is parsed once at startup and handed to the services.
type AttendanceConfig struct {
	// Admin envelope
	AdminAllowedSources []*net.IPNet // empty = unrestricted
	BusinessHours       BusinessHours

	// QR tokens
	TokenLifetimeMin      time.Duration // default 1 minute
	TokenLifetimeMax      time.Duration // default 120 minutes
	MaxActiveTokensPerDay int           // per (class, date), default 4

	// Prediction port
	PredictionBaseURL  string
	PredictionTimeout  time.Duration // default 2s
	PredictionCacheTTL time.Duration // default 300s

	// Day boundaries for tenants without an explicit timezone
	DefaultTenantTimezone string
}

func LoadAttendanceConfig() AttendanceConfig {
	cfg := AttendanceConfig{
		TokenLifetimeMin:      time.Duration(GetEnvInt("ATTENDANCE_TOKEN_LIFETIME_MIN", 1)) * time.Minute,
		TokenLifetimeMax:      time.Duration(GetEnvInt("ATTENDANCE_TOKEN_LIFETIME_MAX", 120)) * time.Minute,
		MaxActiveTokensPerDay: GetEnvInt("ATTENDANCE_MAX_ACTIVE_TOKENS_PER_CLASS_DAY", 4),
		PredictionBaseURL:     GetEnv("PREDICTION_BASE_URL"),
		PredictionTimeout:     time.Duration(GetEnvInt("PREDICTION_TIMEOUT_MS", 2000)) * time.Millisecond,
		PredictionCacheTTL:    time.Duration(GetEnvInt("PREDICTION_CACHE_TTL_S", 300)) * time.Second,
		DefaultTenantTimezone: GetEnv("TENANT_TIMEZONE", "UTC"),
	}

	// ADMIN_ALLOWED_SOURCES: comma-separated CIDRs, empty = anywhere
	for _, raw := range strings.Split(GetEnv("ADMIN_ALLOWED_SOURCES"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, ipnet, err := net.ParseCIDR(raw); err == nil {
			cfg.AdminAllowedSources = append(cfg.AdminAllowedSources, ipnet)
		} else {
			log.Printf("⚠️ ADMIN_ALLOWED_SOURCES: skipping invalid CIDR %q", raw)
		}
	}

	// BUSINESS_HOURS_*: disabled unless BUSINESS_HOURS_ENABLED=true
	bh := BusinessHours{
		Enabled:   GetEnvBool("BUSINESS_HOURS_ENABLED", false),
		StartHour: GetEnvInt("BUSINESS_HOURS_START", 7),
		EndHour:   GetEnvInt("BUSINESS_HOURS_END", 17),
	}
	daysRaw := GetEnv("BUSINESS_HOURS_DAYS", "1,2,3,4,5") // Mon..Fri
	for _, d := range strings.Split(daysRaw, ",") {
		if n, err := strconv.Atoi(strings.TrimSpace(d)); err == nil && n >= 0 && n <= 6 {
			bh.Days = append(bh.Days, time.Weekday(n))
		}
	}
	cfg.BusinessHours = bh

	return cfg
}

// SourceAllowed checks the caller IP against the admin allow-list.
// Empty list means "anywhere".
func (c AttendanceConfig) SourceAllowed(ipStr string) bool {
	if len(c.AdminAllowedSources) == 0 {
		return true
	}
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil {
		return false
	}
	for _, ipnet := range c.AdminAllowedSources {
		if ipnet.Contains(ip) {
			return true
		}
	}
	return false
}

// =======================
// GORM LOGGER CUSTOM
// =======================
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormLogger() gormLogger.Interface {
	return &GormLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Info {
		log.Printf("[GORM][INFO] "+msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Warn {
		log.Printf("[GORM][WARN] "+msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormLogger.Error {
		log.Printf("[GORM][ERROR] "+msg, data...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()
	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		log.Printf("[GORM][ERR] %s | rows=%d | %s | %v", elapsed, rows, sql, err)
	case elapsed > l.SlowThreshold && l.SlowThreshold > 0 && l.LogLevel >= gormLogger.Warn:
		log.Printf("[GORM][SLOW >= %s] %s | rows=%d | %s", l.SlowThreshold, elapsed, rows, sql)
	case l.LogLevel >= gormLogger.Info:
		log.Printf("[GORM] %s | rows=%d | %s", elapsed, rows, sql)
	}
}
