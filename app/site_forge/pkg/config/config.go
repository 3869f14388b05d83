package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 项目配置结构体
type Config struct {
	LLM         LLMConfig         `yaml:"llm" json:"llm"`
	Places      PlacesConfig      `yaml:"places" json:"places"`
	Images      ImagesConfig      `yaml:"images" json:"images"`
	Scraper     ScraperConfig     `yaml:"scraper" json:"scraper"`
	Competitors CompetitorsConfig `yaml:"competitors" json:"competitors"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Log         LogConfig         `yaml:"log" json:"log"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Store       StoreConfig       `yaml:"store" json:"store"`
}

// LLMConfig LLM 相关配置
type LLMConfig struct {
	BaseURL             string  `yaml:"base_url" json:"base_url"`
	APIKey              string  `yaml:"api_key" json:"api_key"`
	Model               string  `yaml:"model" json:"model"`
	ContentTemperature  float32 `yaml:"content_temperature" json:"content_temperature"`
	AnalysisTemperature float32 `yaml:"analysis_temperature" json:"analysis_temperature"`
}

// PlacesConfig 商户目录配置
type PlacesConfig struct {
	Provider string        `yaml:"provider" json:"provider"` // google or fixture
	Google   GoogleConfig  `yaml:"google" json:"google"`
	Fixture  FixtureConfig `yaml:"fixture" json:"fixture"`
}

// GoogleConfig Google Places 配置
type GoogleConfig struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	BaseURL       string `yaml:"base_url" json:"base_url"`
	MaxResults    int    `yaml:"max_results" json:"max_results"`
	DetailDelayMS int    `yaml:"detail_delay_ms" json:"detail_delay_ms"`
	Timeout       int    `yaml:"timeout" json:"timeout"`
}

// FixtureConfig 本地商户数据文件
type FixtureConfig struct {
	Path string `yaml:"path" json:"path"`
}

// ImagesConfig 图片搜索配置
type ImagesConfig struct {
	UnsplashAccessKey string `yaml:"unsplash_access_key" json:"unsplash_access_key"`
}

// ScraperConfig 抓取配置
type ScraperConfig struct {
	Timeout int `yaml:"timeout" json:"timeout"`   // 秒
	DelayMS int `yaml:"delay_ms" json:"delay_ms"` // 连续请求之间的间隔
}

// CompetitorsConfig 竞品分析配置
type CompetitorsConfig struct {
	Max int `yaml:"max" json:"max"`
}

// OutputConfig 站点输出配置
type OutputConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ConcurrencyConfig 并发控制配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps" json:"qps"`
	RPM int `yaml:"rpm" json:"rpm"`
}

// StoreConfig 任务存储配置
type StoreConfig struct {
	Driver   string `yaml:"driver" json:"driver"` // memory, postgres or sqlite
	DSN      string `yaml:"dsn" json:"dsn"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	User     string `yaml:"user" json:"user"`
	Password string `yaml:"password" json:"password"`
	Name     string `yaml:"name" json:"name"`
}

// LoadConfig 从指定路径加载配置，并用环境变量覆盖敏感字段
func LoadConfig(path string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyEnv 使用环境变量覆盖配置
func (c *Config) ApplyEnv() {
	setString(&c.Places.Google.APIKey, "GOOGLE_PLACES_API_KEY")
	setString(&c.LLM.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.BaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.Model, "LLM_MODEL")
	setString(&c.Images.UnsplashAccessKey, "UNSPLASH_ACCESS_KEY")
	setString(&c.Output.Dir, "OUTPUT_DIR")
	setString(&c.Log.Level, "LOG_LEVEL")
	setInt(&c.Places.Google.MaxResults, "GOOGLE_PLACES_MAX_RESULTS")
	setInt(&c.Competitors.Max, "COMPETITOR_ANALYSIS_MAX_COMPETITORS")
	setInt(&c.Scraper.Timeout, "WEBSITE_SCRAPER_TIMEOUT")
}

// ApplyDefaults 填充默认值
func (c *Config) ApplyDefaults() {
	if c.LLM.ContentTemperature == 0 {
		c.LLM.ContentTemperature = 0.7
	}
	if c.LLM.AnalysisTemperature == 0 {
		c.LLM.AnalysisTemperature = 0.3
	}
	if c.Places.Google.MaxResults <= 0 {
		c.Places.Google.MaxResults = 20
	}
	if c.Places.Google.DetailDelayMS <= 0 {
		c.Places.Google.DetailDelayMS = 150
	}
	if c.Places.Google.Timeout <= 0 {
		c.Places.Google.Timeout = 10
	}
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = 10
	}
	if c.Scraper.DelayMS <= 0 {
		c.Scraper.DelayMS = 500
	}
	if c.Competitors.Max <= 0 {
		c.Competitors.Max = 5
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "generated_sites"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "memory"
	}
}

// Validate 检查运行流水线必需的配置
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	switch c.Places.Provider {
	case "", "google":
		if c.Places.Google.APIKey == "" {
			errs = append(errs, errors.New("places.google.api_key is required"))
		}
	case "fixture":
		if c.Places.Fixture.Path == "" {
			errs = append(errs, errors.New("places.fixture.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown places provider: %s", c.Places.Provider))
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
