package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Paths       PathsConfig
	Predictions PredictionsConfig
	Load        LoadConfig
	Logger      LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// PathsConfig locates the three input files. Relative paths are resolved
// against DeploymentRoot by Load.
type PathsConfig struct {
	DeploymentRoot  string
	ModelPath       string
	FeaturesPath    string
	PredictionsPath string
}

type PredictionsConfig struct {
	KeyColumn         string
	ProbabilityColumn string
	LabelColumn       string
	StrictKeys        bool
}

type LoadConfig struct {
	Timeout          time.Duration
	ArtifactMaxBytes int64
}

type LoggerConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment and, when CHURN_CONFIG_FILE
// is set, from that file. Environment values win over the file.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DEPLOYMENT_ROOT", ".")
	v.SetDefault("MODEL_PATH", filepath.Join("models", "model.gob"))
	v.SetDefault("FEATURES_PATH", filepath.Join("models", "model_features.gob"))
	v.SetDefault("PREDICTIONS_PATH", "predictions.csv")
	v.SetDefault("PREDICTIONS_KEY_COLUMN", "customerID")
	v.SetDefault("PREDICTIONS_PROBABILITY_COLUMN", "churn_probability")
	v.SetDefault("PREDICTIONS_LABEL_COLUMN", "Churn")
	v.SetDefault("PREDICTIONS_STRICT_KEYS", false)
	v.SetDefault("LOAD_TIMEOUT", "30s")
	v.SetDefault("ARTIFACT_MAX_BYTES", 256<<20)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	if file := v.GetString("CHURN_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	timeout, err := time.ParseDuration(v.GetString("LOAD_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("LOAD_TIMEOUT: %w", err)
	}

	root := v.GetString("DEPLOYMENT_ROOT")
	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Paths: PathsConfig{
			DeploymentRoot:  root,
			ModelPath:       resolve(root, v.GetString("MODEL_PATH")),
			FeaturesPath:    resolve(root, v.GetString("FEATURES_PATH")),
			PredictionsPath: resolve(root, v.GetString("PREDICTIONS_PATH")),
		},
		Predictions: PredictionsConfig{
			KeyColumn:         v.GetString("PREDICTIONS_KEY_COLUMN"),
			ProbabilityColumn: v.GetString("PREDICTIONS_PROBABILITY_COLUMN"),
			LabelColumn:       v.GetString("PREDICTIONS_LABEL_COLUMN"),
			StrictKeys:        v.GetBool("PREDICTIONS_STRICT_KEYS"),
		},
		Load: LoadConfig{
			Timeout:          timeout,
			ArtifactMaxBytes: v.GetInt64("ARTIFACT_MAX_BYTES"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func resolve(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
