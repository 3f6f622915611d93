package model

import "time"

// Config is the complete runtime configuration
type Config struct {
	Data        DataConfig        `yaml:"data" mapstructure:"data"`
	Diagnosis   DiagnosisConfig   `yaml:"diagnosis" mapstructure:"diagnosis"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// DataConfig selects the reference tables
type DataConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`       // YAML table directory (empty = built-in tables)
	SQLite string `yaml:"sqlite" mapstructure:"sqlite"` // SQLite database with the tables (overrides Dir)
}

// DiagnosisConfig tunes how the chart diagnosis is adopted
type DiagnosisConfig struct {
	MinChartLength  int    `yaml:"min_chart_length" mapstructure:"min_chart_length"`
	DefaultPalace   string `yaml:"default_palace" mapstructure:"default_palace"`
	DefaultElement  string `yaml:"default_element" mapstructure:"default_element"`
	Recommendations int    `yaml:"recommendations" mapstructure:"recommendations"`
	LuckyStrokesMax int    `yaml:"lucky_strokes_max" mapstructure:"lucky_strokes_max"`
	// PalaceAliases maps alternative palace names to canonical ones
	PalaceAliases map[string]string `yaml:"palace_aliases,omitempty" mapstructure:"palace_aliases"`
}

// HTTPConfig configures fetching chart exports by URL
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the fetch/commentary cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds batch work and outbound request rates
type ConcurrencyConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr              string        `yaml:"addr" mapstructure:"addr"`
	ReadTimeout       time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// LLMConfig configures optional commentary generation
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // "openai", "ollama" or "" (disabled)
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	Strict    bool   `yaml:"strict" mapstructure:"strict"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// LogConfig configures logrus
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // "summary", "yaml" or "json"
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Diagnosis: DiagnosisConfig{
			MinChartLength:  50,
			DefaultPalace:   "疾厄宮",
			DefaultElement:  "水",
			Recommendations: 5,
			LuckyStrokesMax: 50,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "Xingming/0.1 (+https://github.com/ppiankov/xingming)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			MaxBodyBytes:      1 << 20,
			RequestsPerSecond: 5,
			Burst:             10,
		},
		LLM: LLMConfig{
			Timeout:   30,
			Strict:    true,
			MaxTokens: 800,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Format: "summary",
		},
	}
}
