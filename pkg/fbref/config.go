package fbref

import (
	"fmt"
	"time"
)

// ScraperConfig contains all configurable parameters that influence a
// scraping run. This centralizes the pacing constants and paths so the
// rate limiting behaviour can be tuned in one place.
type ScraperConfig struct {
	// Source site
	BaseURL   string // root of the statistics site
	UserAgent string // browser identity presented on every request

	// Filesystem
	AssetsPath string // base directory for scraper assets
	CachePath  string // where fetched fixtures pages are cached
	DBPath     string // location of the sqlite run archive

	// === RATE LIMIT PACING ===
	// The source site tolerates roughly one request every few seconds.
	// All fetching is strictly sequential; these delays are the only
	// throttle.

	MatchPageDelay    time.Duration // pause before each match page fetch (default: 3s)
	BetweenMatches    time.Duration // pause between matches (default: 5s)
	BetweenMonths     time.Duration // pause between month pages (default: 10s)
	RateLimitRetry    time.Duration // wait before the single 429 retry (default: 30s)
	RateLimitBackoff  time.Duration // terminal backoff after a failed retry (default: 60s)
	RequestTimeoutSec int           // per request timeout in seconds (default: 20)

	// === EXTRACTION LIMITS ===

	MaxPlayerMinutes int // minutes above this mark a subtotal row (default: 120)
	MinRowCells      int // rows with fewer cells are skipped (default: 3)
}

// DefaultScraperConfig returns the default configuration with all
// standard values
func DefaultScraperConfig() *ScraperConfig {
	return &ScraperConfig{
		BaseURL:   "https://fbref.com",
		UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",

		AssetsPath: defaultAssetsPath(),
		CachePath:  defaultAssetsPath() + "cache/",
		DBPath:     defaultAssetsPath() + "estatbets.db",

		MatchPageDelay:    3 * time.Second,
		BetweenMatches:    5 * time.Second,
		BetweenMonths:     10 * time.Second,
		RateLimitRetry:    30 * time.Second,
		RateLimitBackoff:  60 * time.Second,
		RequestTimeoutSec: 20,

		MaxPlayerMinutes: 120,
		MinRowCells:      3,
	}
}

func defaultAssetsPath() string {
	return "/tmp/.estatbets/"
}

// Global configuration instance
var Config *ScraperConfig

func init() {
	Config = DefaultScraperConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *ScraperConfig) {
	Config = newConfig
}

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *ScraperConfig) error {
	if config.BaseURL == "" {
		return fmt.Errorf("BaseURL must not be empty")
	}
	if config.MaxPlayerMinutes < 90 {
		return fmt.Errorf("MaxPlayerMinutes must allow at least a regulation match, got: %d", config.MaxPlayerMinutes)
	}
	if config.MatchPageDelay < 0 || config.BetweenMatches < 0 || config.BetweenMonths < 0 {
		return fmt.Errorf("pacing delays must not be negative")
	}
	if config.RateLimitRetry <= 0 || config.RateLimitBackoff <= 0 {
		return fmt.Errorf("rate limit waits must be positive")
	}
	return nil
}
