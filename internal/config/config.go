package config

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Orders    OrdersConfig
}

// Load 从环境变量加载配置；CONFIG_FILE 或 configs/config.yaml 中的值作为默认值。
func Load() (*Config, error) {
	src, err := newSource(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return nil, err
	}
	return load(src)
}

func load(src *source) (*Config, error) {
	server, err := loadServerConfig(src)
	if err != nil {
		return nil, err
	}

	logCfg, err := loadLogConfig(src)
	if err != nil {
		return nil, err
	}

	store, err := loadStoreConfig(src)
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig(src)
	if err != nil {
		return nil, err
	}

	limit, err := loadRateLimitConfig(src)
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:    server,
		Log:       logCfg,
		Store:     store,
		AI:        ai,
		RateLimit: limit,
		Orders:    OrdersConfig{CSVPath: src.getOrDefault("ORDERS_CSV", "")},
	}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig(src *source) (ServerConfig, error) {
	port := src.get("PORT")
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// LogConfig 描述日志级别与输出格式。
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig(src *source) (LogConfig, error) {
	level := strings.ToLower(src.getOrDefault("LOG_LEVEL", "info"))
	switch level {
	case "debug", "info", "warn", "error":
	default:
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL value %q", level)
	}

	format := strings.ToLower(src.getOrDefault("LOG_FORMAT", "json"))
	if format != "json" && format != "text" {
		return LogConfig{}, fmt.Errorf("invalid LOG_FORMAT value %q", format)
	}

	return LogConfig{Level: level, Format: format}, nil
}

// Store drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// StoreConfig 描述会话与消息的持久化后端。
type StoreConfig struct {
	Driver string
	DSN    string
}

func loadStoreConfig(src *source) (StoreConfig, error) {
	driver := strings.ToLower(src.getOrDefault("STORE_DRIVER", DriverMemory))
	dsn := src.get("STORE_DSN")

	switch driver {
	case DriverMemory:
	case DriverSQLite:
		if dsn == "" {
			dsn = "chatdesk.db"
		}
	case DriverMySQL:
		if dsn == "" {
			return StoreConfig{}, fmt.Errorf("STORE_DSN is required for the mysql driver")
		}
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER value %q", driver)
	}

	return StoreConfig{Driver: driver, DSN: dsn}, nil
}

// Responder providers.
const (
	ProviderRule      = "rule"
	ProviderArk       = "ark"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// AIConfig 描述回复生成相关配置。
type AIConfig struct {
	Provider string
	Timeout  time.Duration

	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	TopP        *float64
	MaxTokens   *int

	AnthropicAPIKey string
	AnthropicModel  string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
}

// Enabled 表示是否提供了 Ark 所需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个 Ark 模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.TopP != nil {
		val := float32(*c.TopP)
		topP = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig(src *source) (AIConfig, error) {
	provider := strings.ToLower(src.getOrDefault("AI_PROVIDER", ProviderRule))
	switch provider {
	case ProviderRule, ProviderArk, ProviderAnthropic, ProviderOpenAI:
	default:
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	temperature, err := src.parseOptionalFloat("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := src.parseOptionalFloat("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := src.parseOptionalInt("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}
	if maxTokens == nil {
		if maxTokens, err = src.parseOptionalInt("ARK_MAX_TOKENS"); err != nil {
			return AIConfig{}, err
		}
	}

	timeout := 30 * time.Second
	if seconds, err := src.parseOptionalInt("AI_TIMEOUT_SECONDS"); err != nil {
		return AIConfig{}, err
	} else if seconds != nil {
		if *seconds < 1 {
			return AIConfig{}, fmt.Errorf("invalid AI_TIMEOUT_SECONDS value %d: must be positive", *seconds)
		}
		timeout = time.Duration(*seconds) * time.Second
	}

	arkModel := src.get("ARK_MODEL")
	if arkModel == "" {
		arkModel = src.get("Model")
	}

	return AIConfig{
		Provider:        provider,
		Timeout:         timeout,
		APIKey:          src.get("ARK_API_KEY"),
		AccessKey:       src.get("ARK_ACCESS_KEY"),
		SecretKey:       src.get("ARK_SECRET_KEY"),
		Model:           arkModel,
		BaseURL:         src.getOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:          src.getOrDefault("ARK_REGION", "cn-beijing"),
		Temperature:     temperature,
		TopP:            topP,
		MaxTokens:       maxTokens,
		AnthropicAPIKey: src.get("ANTHROPIC_API_KEY"),
		AnthropicModel:  src.get("ANTHROPIC_MODEL"),
		OpenAIAPIKey:    src.get("OPENAI_API_KEY"),
		OpenAIModel:     src.get("OPENAI_MODEL"),
		OpenAIBaseURL:   src.get("OPENAI_BASE_URL"),
	}, nil
}

// RateLimitConfig 描述聊天接口的按客户端限流；RPS 为 0 表示关闭。
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Enabled 表示是否开启限流。
func (c RateLimitConfig) Enabled() bool {
	return c.RPS > 0 && c.Burst > 0
}

func loadRateLimitConfig(src *source) (RateLimitConfig, error) {
	rps, err := src.parseOptionalFloat("CHAT_RATE_LIMIT_RPS")
	if err != nil {
		return RateLimitConfig{}, err
	}
	burst, err := src.parseOptionalInt("CHAT_RATE_LIMIT_BURST")
	if err != nil {
		return RateLimitConfig{}, err
	}

	cfg := RateLimitConfig{}
	if rps != nil {
		if math.IsNaN(*rps) || *rps < 0 {
			return RateLimitConfig{}, fmt.Errorf("invalid CHAT_RATE_LIMIT_RPS value %v: must not be negative", *rps)
		}
		cfg.RPS = *rps
		cfg.Burst = 1
	}
	if burst != nil {
		cfg.Burst = *burst
	}
	return cfg, nil
}

// OrdersConfig 描述启动时导入的订单数据。
type OrdersConfig struct {
	CSVPath string
}

func (s *source) getOrDefault(key, defaultValue string) string {
	if value := s.get(key); value != "" {
		return value
	}
	return defaultValue
}

func (s *source) parseOptionalFloat(key string) (*float64, error) {
	value := s.get(key)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	if math.IsNaN(val) {
		return nil, fmt.Errorf("invalid %s value %q: not a number", key, value)
	}
	return &val, nil
}

func (s *source) parseOptionalInt(key string) (*int, error) {
	value := s.get(key)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
