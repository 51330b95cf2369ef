package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings for a graph indexing run.
type Config struct {
	// Graph database connection.
	Graph GraphConfig `yaml:"graph"`

	// Repository source and VCS options.
	Repository RepositoryConfig `yaml:"repository"`

	// File scanner options.
	Scanner ScannerConfig `yaml:"scanner"`

	// Incremental / full reindex controls.
	Index IndexConfig `yaml:"index"`

	// Parser fan-out concurrency.
	Parser ParserConfig `yaml:"parser"`

	// Post-index analytics.
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type GraphConfig struct {
	URI      string `yaml:"uri"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`

	// QueryTimeout bounds a single Cypher call (per spec §5's per-call
	// timeout requirement); it does not bound the retries around it.
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

type RepositoryConfig struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	URL       string `yaml:"url"`
	Path      string `yaml:"path"` // local path, mutually exclusive with URL
	Branch    string `yaml:"branch"`
	AuthToken string `yaml:"auth_token"`
	Depth     int    `yaml:"depth"`
	KeepClone bool   `yaml:"keep_clone"`
}

type ScannerConfig struct {
	SupportedExtensions []string `yaml:"supported_extensions"`
	IgnorePatterns      []string `yaml:"ignore_patterns"`
	FollowSymlinks      bool     `yaml:"follow_symlinks"`
	WatchMode           bool     `yaml:"watch_mode"`
}

type IndexConfig struct {
	Version          int  `yaml:"version"`
	ForceFullReindex bool `yaml:"force_full_reindex"`
	ResetDB          bool `yaml:"reset_db"`
	UpdateSchema     bool `yaml:"update_schema"`
	StorageBatchSize int  `yaml:"storage_batch_size"`
}

type ParserConfig struct {
	Concurrency    int           `yaml:"concurrency"`
	PerFileTimeout time.Duration `yaml:"per_file_timeout"`
}

type AnalyticsConfig struct {
	Enabled        bool `yaml:"enabled"`
	PageRankDamping float64 `yaml:"pagerank_damping"`
	PageRankMaxIter int     `yaml:"pagerank_max_iterations"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Graph: GraphConfig{
			URI:          "bolt://localhost:7687",
			Username:     "neo4j",
			Database:     "neo4j",
			QueryTimeout: 30 * time.Second,
		},
		Repository: RepositoryConfig{
			Depth:     1,
			KeepClone: false,
		},
		Scanner: ScannerConfig{
			SupportedExtensions: []string{
				".go", ".py", ".js", ".jsx", ".ts", ".tsx", ".java", ".c", ".h",
				".cc", ".cpp", ".hpp", ".cs", ".sql",
			},
			IgnorePatterns: []string{
				"**/.git/**", "**/node_modules/**", "**/vendor/**", "**/venv/**",
				"**/__pycache__/**", "**/.next/**", "**/.nuxt/**", "**/dist/**",
				"**/build/**", "**/out/**", "**/target/**", "**/.cache/**",
				"**/coverage/**", "**/.venv/**", "**/*.min.js", "**/*.generated.*",
			},
			FollowSymlinks: false,
		},
		Index: IndexConfig{
			Version:          1,
			StorageBatchSize: 1000,
		},
		Parser: ParserConfig{
			Concurrency:    20,
			PerFileTimeout: 30 * time.Second,
		},
		Analytics: AnalyticsConfig{
			Enabled:         true,
			PageRankDamping: 0.85,
			PageRankMaxIter: 20,
		},
	}
}

// Load loads configuration from defaults, config file, and environment, in
// that order of increasing precedence.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("graph", cfg.Graph)
	v.SetDefault("repository", cfg.Repository)
	v.SetDefault("scanner", cfg.Scanner)
	v.SetDefault("index", cfg.Index)
	v.SetDefault("parser", cfg.Parser)
	v.SetDefault("analytics", cfg.Analytics)

	v.SetEnvPrefix("GRAPHINDEX")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".graphindex")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".graphindex"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadEnvFiles() {
	envFiles := []string{".env.local", ".env", ".env.example"}
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			if err := godotenv.Load(file); err == nil {
				continue
			}
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".graphindex", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies environment variable overrides to config.
// Precedence: 1. env var (highest) 2. keyring 3. config file (lowest).
func applyEnvOverrides(cfg *Config) {
	if uri := os.Getenv("NEO4J_URI"); uri != "" {
		cfg.Graph.URI = uri
	}
	if user := os.Getenv("NEO4J_USERNAME"); user != "" {
		cfg.Graph.Username = user
	}
	if pass := os.Getenv("NEO4J_PASSWORD"); pass != "" {
		cfg.Graph.Password = pass
	}
	if db := os.Getenv("NEO4J_DATABASE"); db != "" {
		cfg.Graph.Database = db
	}

	if token := os.Getenv("GRAPHINDEX_AUTH_TOKEN"); token != "" {
		cfg.Repository.AuthToken = token
	} else {
		km := NewKeyringManager()
		if km.IsAvailable() {
			if tok, err := km.GetAPIKey(); err == nil && tok != "" {
				cfg.Repository.AuthToken = tok
			}
		}
	}

	if url := os.Getenv("GRAPHINDEX_REPO_URL"); url != "" {
		cfg.Repository.URL = url
	}
	if path := os.Getenv("GRAPHINDEX_REPO_PATH"); path != "" {
		cfg.Repository.Path = expandPath(path)
	}
	if branch := os.Getenv("GRAPHINDEX_BRANCH"); branch != "" {
		cfg.Repository.Branch = branch
	}

	if ext := os.Getenv("GRAPHINDEX_SUPPORTED_EXTENSIONS"); ext != "" {
		cfg.Scanner.SupportedExtensions = strings.Split(ext, ",")
	}
	if ignore := os.Getenv("GRAPHINDEX_IGNORE_PATTERNS"); ignore != "" {
		cfg.Scanner.IgnorePatterns = strings.Split(ignore, ",")
	}

	if force := os.Getenv("GRAPHINDEX_FORCE_FULL_REINDEX"); force != "" {
		cfg.Index.ForceFullReindex = force == "true"
	}
	if reset := os.Getenv("GRAPHINDEX_RESET_DB"); reset != "" {
		cfg.Index.ResetDB = reset == "true"
	}
	if batch := os.Getenv("GRAPHINDEX_STORAGE_BATCH_SIZE"); batch != "" {
		if n, err := strconv.Atoi(batch); err == nil {
			cfg.Index.StorageBatchSize = n
		}
	}

	if conc := os.Getenv("GRAPHINDEX_PARSER_CONCURRENCY"); conc != "" {
		if n, err := strconv.Atoi(conc); err == nil {
			cfg.Parser.Concurrency = n
		}
	}

	if enabled := os.Getenv("GRAPHINDEX_ANALYTICS_ENABLED"); enabled != "" {
		cfg.Analytics.Enabled = enabled == "true"
	}
}

// expandPath expands ~ to the home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Save saves configuration to file.
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("graph", c.Graph)
	v.Set("repository", c.Repository)
	v.Set("scanner", c.Scanner)
	v.Set("index", c.Index)
	v.Set("parser", c.Parser)
	v.Set("analytics", c.Analytics)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
