package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultConfigPaths 在未设置 CONFIG_FILE 时依次尝试。
var defaultConfigPaths = []string{"configs/config.yaml"}

// fileConfig 是 YAML 配置文件的结构；密钥类配置只从环境变量读取。
type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Store struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"store"`
	AI struct {
		Provider       string   `yaml:"provider"`
		TimeoutSeconds *int     `yaml:"timeoutSeconds"`
		MaxTokens      *int     `yaml:"maxTokens"`
		ArkModel       string   `yaml:"arkModel"`
		ArkBaseURL     string   `yaml:"arkBaseURL"`
		ArkRegion      string   `yaml:"arkRegion"`
		Temperature    *float64 `yaml:"temperature"`
		TopP           *float64 `yaml:"topP"`
		AnthropicModel string   `yaml:"anthropicModel"`
		OpenAIModel    string   `yaml:"openaiModel"`
		OpenAIBaseURL  string   `yaml:"openaiBaseURL"`
	} `yaml:"ai"`
	RateLimit struct {
		RPS   *float64 `yaml:"rps"`
		Burst *int     `yaml:"burst"`
	} `yaml:"rateLimit"`
	Orders struct {
		CSV string `yaml:"csv"`
	} `yaml:"orders"`
}

// source 按环境变量优先、配置文件兜底的顺序解析配置项。
type source struct {
	lookupEnv func(string) (string, bool)
	file      map[string]string
}

func newSource(path string) (*source, error) {
	file, err := readConfigFile(path)
	if err != nil {
		return nil, err
	}
	return &source{lookupEnv: os.LookupEnv, file: file}, nil
}

func (s *source) get(key string) string {
	if raw, ok := s.lookupEnv(key); ok {
		if value := strings.TrimSpace(raw); value != "" {
			return value
		}
	}
	return strings.TrimSpace(s.file[key])
}

// readConfigFile 读取配置文件并展开为环境变量名到值的映射。
// 显式指定的路径必须存在；默认路径缺失时返回空映射。
func readConfigFile(path string) (map[string]string, error) {
	candidates := defaultConfigPaths
	explicit := path != ""
	if explicit {
		candidates = []string{path}
	}

	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read config file %s: %w", candidate, err)
		}

		var parsed fileConfig
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", candidate, err)
		}
		return parsed.flatten(), nil
	}

	return map[string]string{}, nil
}

func (f fileConfig) flatten() map[string]string {
	out := map[string]string{
		"PORT":            f.Server.Port,
		"LOG_LEVEL":       f.Log.Level,
		"LOG_FORMAT":      f.Log.Format,
		"STORE_DRIVER":    f.Store.Driver,
		"STORE_DSN":       f.Store.DSN,
		"AI_PROVIDER":     f.AI.Provider,
		"ARK_MODEL":       f.AI.ArkModel,
		"ARK_BASE_URL":    f.AI.ArkBaseURL,
		"ARK_REGION":      f.AI.ArkRegion,
		"ANTHROPIC_MODEL": f.AI.AnthropicModel,
		"OPENAI_MODEL":    f.AI.OpenAIModel,
		"OPENAI_BASE_URL": f.AI.OpenAIBaseURL,
		"ORDERS_CSV":      f.Orders.CSV,
	}
	putInt(out, "AI_TIMEOUT_SECONDS", f.AI.TimeoutSeconds)
	putInt(out, "AI_MAX_TOKENS", f.AI.MaxTokens)
	putInt(out, "CHAT_RATE_LIMIT_BURST", f.RateLimit.Burst)
	putFloat(out, "ARK_TEMPERATURE", f.AI.Temperature)
	putFloat(out, "ARK_TOP_P", f.AI.TopP)
	putFloat(out, "CHAT_RATE_LIMIT_RPS", f.RateLimit.RPS)
	return out
}

func putInt(out map[string]string, key string, v *int) {
	if v != nil {
		out[key] = strconv.Itoa(*v)
	}
}

func putFloat(out map[string]string, key string, v *float64) {
	if v != nil {
		out[key] = strconv.FormatFloat(*v, 'f', -1, 64)
	}
}
