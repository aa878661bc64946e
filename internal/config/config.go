// Package config assembles quizladder's settings from defaults, an optional
// YAML file and QUIZLADDER_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/quizladder/internal/engine"
	"github.com/abhisek/quizladder/internal/environment"
	"github.com/abhisek/quizladder/internal/llm"
	"github.com/abhisek/quizladder/internal/logging"
	"github.com/abhisek/quizladder/internal/questions"
	"github.com/abhisek/quizladder/internal/store"
	"github.com/abhisek/quizladder/internal/training"
)

// EnvConfigPath names the variable that points at a config file.
const EnvConfigPath = "QUIZLADDER_CONFIG"

type Config struct {
	Models      ModelsConfig       `yaml:"models"`
	Questions   QuestionsConfig    `yaml:"questions"`
	Engine      EngineConfig       `yaml:"engine"`
	Store       StoreConfig        `yaml:"store"`
	Server      ServerConfig       `yaml:"server"`
	Log         logging.Options    `yaml:"log"`
	Environment environment.Config `yaml:"environment"`
	Training    TrainingConfig     `yaml:"training"`
	LLM         llm.Config         `yaml:"llm"`
}

// ModelsConfig locates the model artifacts loaded at startup.
type ModelsConfig struct {
	Classifier string `yaml:"classifier"`
	Policy     string `yaml:"policy"`
}

type QuestionsConfig struct {
	// Path to a bank file; empty uses the embedded bank.
	Path     string `yaml:"path"`
	Language string `yaml:"language"`
}

// EngineConfig sets decision defaults for the quiz and the HTTP API.
type EngineConfig struct {
	Advisory    bool          `yaml:"advisory"`
	Act         string        `yaml:"act"`
	MaxResponse time.Duration `yaml:"max_response"`
}

type StoreConfig struct {
	// Path to the SQLite file; empty resolves store.DefaultDBPath.
	Path string `yaml:"path"`
	// KeepSnapshots bounds the saved quiz snapshots.
	KeepSnapshots int `yaml:"keep_snapshots"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RecordEvents   bool          `yaml:"record_events"`
}

type TrainingConfig struct {
	Policy       training.PolicyConfig     `yaml:"policy"`
	Classifier   training.ClassifierConfig `yaml:"classifier"`
	EvalEpisodes int                       `yaml:"eval_episodes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	modelDir := "models"
	if dir, err := store.DataDir(); err == nil {
		modelDir = filepath.Join(dir, "models")
	}

	return &Config{
		Models: ModelsConfig{
			Classifier: filepath.Join(modelDir, "classifier.json"),
			Policy:     filepath.Join(modelDir, "policy.json"),
		},
		Questions: QuestionsConfig{
			Language: questions.DefaultLanguage,
		},
		Engine: EngineConfig{
			Act:         string(engine.SourceHeuristic),
			MaxResponse: engine.DefaultMaxResponse,
		},
		Store: StoreConfig{
			KeepSnapshots: 10,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   30 * time.Second,
			RecordEvents:   true,
		},
		Log: logging.Options{
			Mode:  "dev",
			Level: "info",
		},
		Environment: environment.DefaultConfig(),
		Training: TrainingConfig{
			Policy:       training.DefaultPolicyConfig(),
			Classifier:   training.DefaultClassifierConfig(),
			EvalEpisodes: training.DefaultEvalEpisodes,
		},
		LLM: llm.DefaultConfig(),
	}
}

// Load builds the configuration. path may be empty, in which case
// QUIZLADDER_CONFIG is consulted; with neither set only defaults and the
// environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() error {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	set(&c.Store.Path, "QUIZLADDER_DB")
	set(&c.Models.Classifier, "QUIZLADDER_CLASSIFIER_MODEL")
	set(&c.Models.Policy, "QUIZLADDER_POLICY_MODEL")
	set(&c.Questions.Path, "QUIZLADDER_QUESTIONS")
	set(&c.Questions.Language, "QUIZLADDER_LANGUAGE")
	set(&c.Engine.Act, "QUIZLADDER_ACT")
	set(&c.Server.Addr, "QUIZLADDER_ADDR")
	set(&c.Log.Mode, "QUIZLADDER_LOG_MODE")
	set(&c.Log.Level, "QUIZLADDER_LOG_LEVEL")
	set(&c.Log.File, "QUIZLADDER_LOG_FILE")

	if v := os.Getenv("QUIZLADDER_ADVISORY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("QUIZLADDER_ADVISORY: %w", err)
		}
		c.Engine.Advisory = b
	}

	c.LLM.ApplyEnv()
	return nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := engine.ParseSource(c.Engine.Act); err != nil {
		return fmt.Errorf("engine.act: %w", err)
	}
	if c.Engine.MaxResponse <= 0 {
		return fmt.Errorf("engine.max_response must be positive")
	}
	if !questions.SupportedLanguage(c.Questions.Language) {
		return fmt.Errorf("questions.language %q is not one of %v", c.Questions.Language, questions.SupportedLanguages)
	}
	if c.Store.KeepSnapshots < 1 {
		return fmt.Errorf("store.keep_snapshots must be at least 1")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if err := c.Environment.Validate(); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if err := c.Training.Policy.Validate(); err != nil {
		return fmt.Errorf("training.policy: %w", err)
	}
	if err := c.Training.Classifier.Validate(); err != nil {
		return fmt.Errorf("training.classifier: %w", err)
	}
	if c.Training.EvalEpisodes < 1 {
		return fmt.Errorf("training.eval_episodes must be at least 1")
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	return nil
}

// DBPath resolves the database file, creating its directory.
func (c *Config) DBPath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, store.EnsureDir(c.Store.Path)
	}
	return store.DefaultDBPath()
}

// ActSource returns Engine.Act as an engine.Source. It is only valid after
// Validate has passed.
func (c *Config) ActSource() engine.Source {
	src, _ := engine.ParseSource(c.Engine.Act)
	return src
}

// Marshal renders the configuration as YAML. API keys are never included.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
