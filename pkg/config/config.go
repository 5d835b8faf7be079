package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for roi-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8090"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// Reference store configuration
	Store StoreConfig `yaml:"store"`

	// Database configuration (PostgreSQL reference store)
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration (optional scenario-result cache)
	Redis RedisConfig `yaml:"redis"`

	// Assumptions holds every published default and model constant.
	Assumptions Assumptions `yaml:"assumptions"`
}

// StoreConfig selects the reference-store backend.
type StoreConfig struct {
	// Driver is "postgres" (default) or "memory". The memory driver loads a
	// YAML snapshot and needs no database; it exists for local development
	// and deterministic tests, not production traffic.
	Driver string `yaml:"driver" env:"STORE_DRIVER" env-default:"postgres"`

	// SeedPath is the YAML snapshot loaded by the memory driver.
	SeedPath string `yaml:"seed_path" env:"STORE_SEED_PATH" env-default:"seed/reference.yaml"`

	// MigrationsPath is where the SQL migrations live (postgres driver only).
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations"`
}

// DatabaseConfig holds PostgreSQL reference-store configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"roi"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"roi_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds the optional result-cache settings. An empty Addr
// disables caching entirely.
type RedisConfig struct {
	Addr       string `yaml:"addr" env:"REDIS_ADDR" env-default:""`
	Password   string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB         int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	TTLSeconds int    `yaml:"ttl_seconds" env:"REDIS_TTL_SECONDS" env-default:"900"`
}

// Assumptions is the explicit, immutable set of published defaults and model
// constants. It is passed into the model constructors at startup; nothing in
// the computation pipeline reads configuration globally. Values here are
// operator-tunable, never per-request.
type Assumptions struct {
	// Monthly expense defaults applied when a scenario leaves a field unset.
	UtilitiesMonthly float64 `yaml:"utilities_monthly" env:"DEFAULT_UTILITIES_MONTHLY" env-default:"150"`
	FoodMonthly      float64 `yaml:"food_monthly" env:"DEFAULT_FOOD_MONTHLY" env-default:"400"`
	TransportMonthly float64 `yaml:"transport_monthly" env:"DEFAULT_TRANSPORT_MONTHLY" env-default:"100"`
	MiscMonthly      float64 `yaml:"misc_monthly" env:"DEFAULT_MISC_MONTHLY" env-default:"200"`
	BooksAnnual      float64 `yaml:"books_annual" env:"DEFAULT_BOOKS_ANNUAL" env-default:"1200"`

	// Tuition defaults used when an institution record carries no figure.
	TuitionInState  float64 `yaml:"tuition_in_state" env:"DEFAULT_TUITION_IN_STATE" env-default:"10000"`
	TuitionOutState float64 `yaml:"tuition_out_state" env:"DEFAULT_TUITION_OUT_STATE" env-default:"30000"`

	// Housing holds the default-by-type monthly rents used when the rent
	// tables cannot resolve a figure.
	Housing HousingDefaults `yaml:"housing"`

	// EarningsAnnual is the system-default earnings tier. Zero disables the
	// tier: resolution past national data then yields Unavailable.
	EarningsAnnual float64 `yaml:"earnings_annual" env:"DEFAULT_EARNINGS_ANNUAL" env-default:"45000"`

	// EarningsGrowthRate projects 3/5-year points from a single median figure.
	EarningsGrowthRate float64 `yaml:"earnings_growth_rate" env:"EARNINGS_GROWTH_RATE" env-default:"0.03"`

	// BaselineEarningsAnnual is the foregone-earnings baseline in the ROI
	// opportunity-cost term (no-degree median).
	BaselineEarningsAnnual float64 `yaml:"baseline_earnings_annual" env:"BASELINE_EARNINGS_ANNUAL" env-default:"35000"`

	// BaselineLivingCostAnnual anchors the comfort headroom subscore; it is
	// scaled by the destination region's price parity.
	BaselineLivingCostAnnual float64 `yaml:"baseline_living_cost_annual" env:"BASELINE_LIVING_COST_ANNUAL" env-default:"28800"`

	LoanAPR        float64 `yaml:"loan_apr" env:"DEFAULT_LOAN_APR" env-default:"0.05"`
	TaxRate        float64 `yaml:"tax_rate" env:"DEFAULT_TAX_RATE" env-default:"0.25"`
	LoanTermMonths int     `yaml:"loan_term_months" env:"LOAN_TERM_MONTHS" env-default:"120"`

	// TuitionInflationRate is the fallback when no CPI series is loaded.
	TuitionInflationRate float64 `yaml:"tuition_inflation_rate" env:"TUITION_INFLATION_RATE" env-default:"0.03"`

	// EarningsHorizonYears is the post-graduation window ROI accumulates over.
	EarningsHorizonYears int `yaml:"earnings_horizon_years" env:"EARNINGS_HORIZON_YEARS" env-default:"5"`

	MaxCompareScenarios int `yaml:"max_compare_scenarios" env:"MAX_COMPARE_SCENARIOS" env-default:"4"`

	Comfort ComfortWeights `yaml:"comfort"`
}

// HousingDefaults lists the default monthly rent per housing type.
type HousingDefaults struct {
	Studio  float64 `yaml:"studio" env:"DEFAULT_RENT_STUDIO" env-default:"850"`
	OneBR   float64 `yaml:"one_br" env:"DEFAULT_RENT_1BR" env-default:"1000"`
	TwoBR   float64 `yaml:"two_br" env:"DEFAULT_RENT_2BR" env-default:"1300"`
	ThreeBR float64 `yaml:"three_br" env:"DEFAULT_RENT_3BR" env-default:"1600"`
	FourBR  float64 `yaml:"four_br" env:"DEFAULT_RENT_4BR" env-default:"1900"`
}

// Monthly returns the default rent for a housing type, or 0/false for types
// with no default (such as "none").
func (h HousingDefaults) Monthly(housingType string) (float64, bool) {
	switch housingType {
	case "studio":
		return h.Studio, true
	case "1BR":
		return h.OneBR, true
	case "2BR":
		return h.TwoBR, true
	case "3BR":
		return h.ThreeBR, true
	case "4BR":
		return h.FourBR, true
	default:
		return 0, false
	}
}

// ComfortWeights is the published weight table for the comfort index.
// Weights must sum to 1.
type ComfortWeights struct {
	DTI      float64 `yaml:"dti" env:"COMFORT_WEIGHT_DTI" env-default:"0.40"`
	Headroom float64 `yaml:"headroom" env:"COMFORT_WEIGHT_HEADROOM" env-default:"0.30"`
	Burden   float64 `yaml:"burden" env:"COMFORT_WEIGHT_BURDEN" env-default:"0.30"`

	// BurdenSaturation is the share of take-home pay at which annual debt
	// service zeroes the burden subscore.
	BurdenSaturation float64 `yaml:"burden_saturation" env:"COMFORT_BURDEN_SATURATION" env-default:"0.20"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Secrets (PGPASSWORD, REDIS_PASSWORD) must come from environment variables
// (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	// Load config from YAML file with environment variable overrides
	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validateTLS(); err != nil {
		return nil, fmt.Errorf("invalid TLS configuration: %w", err)
	}

	if err := cfg.Assumptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid assumptions: %w", err)
	}

	return cfg, nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

// Validate rejects assumption sets the models cannot run on.
func (a *Assumptions) Validate() error {
	if a.LoanAPR < 0 || a.LoanAPR > 1 {
		return fmt.Errorf("loan_apr must be within [0,1], got %v", a.LoanAPR)
	}
	if a.TaxRate < 0 || a.TaxRate > 1 {
		return fmt.Errorf("tax_rate must be within [0,1], got %v", a.TaxRate)
	}
	if a.LoanTermMonths <= 0 {
		return fmt.Errorf("loan_term_months must be positive, got %d", a.LoanTermMonths)
	}
	if a.MaxCompareScenarios < 1 {
		return fmt.Errorf("max_compare_scenarios must be at least 1, got %d", a.MaxCompareScenarios)
	}
	if a.EarningsHorizonYears < 1 {
		return fmt.Errorf("earnings_horizon_years must be at least 1, got %d", a.EarningsHorizonYears)
	}
	sum := a.Comfort.DTI + a.Comfort.Headroom + a.Comfort.Burden
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("comfort weights must sum to 1, got %v", sum)
	}
	if a.Comfort.BurdenSaturation <= 0 {
		return fmt.Errorf("comfort burden_saturation must be positive, got %v", a.Comfort.BurdenSaturation)
	}
	return nil
}

// ConnectionString returns a PostgreSQL connection string. Loopback hosts
// resolve to host.docker.internal when the engine runs in Docker, so it can
// reach a store on the host machine.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		ResolveHostForDocker(c.Host), c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MigrationURL returns a URL-format connection string for the migration
// runner, with a statement timeout baked in. Permission problems then fail
// fast instead of hanging while golang-migrate holds its lock. User-provided
// fields are URL-escaped so passwords with @, /, or ? survive parsing.
func (c *DatabaseConfig) MigrationURL(timeout time.Duration) string {
	return fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=%s&statement_timeout=%d",
		url.QueryEscape(c.User),
		url.QueryEscape(c.Password),
		ResolveHostForDocker(c.Host),
		c.Port,
		url.QueryEscape(c.Database),
		c.SSLMode,
		timeout.Milliseconds(),
	)
}

// Enabled reports whether the result cache is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Addr != ""
}
