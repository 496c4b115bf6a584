package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`        // application name
	Version     string `yaml:"version"`     // application version
	Environment string `yaml:"environment"` // runtime environment (e.g. "development", "production")
}

// ServerConfig holds the listen addresses of the HTTP surfaces.
type ServerConfig struct {
	HTTPAddress string `yaml:"httpAddress"` // main API listen address (e.g. ":8080")
	OpsAddress  string `yaml:"opsAddress"`  // health/readiness listen address (e.g. ":8081")
}

// LoggerConfig controls the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // log level (e.g. "info", "debug", "warn", "error")
}

// AuthConfig controls API authentication.
type AuthConfig struct {
	Enabled           bool   `yaml:"enabled"`           // guard mutating endpoints with JWT when true
	JwtSecret         string `yaml:"jwtSecret"`         // HS256 signing secret
	TokenTTL          int    `yaml:"tokenTTL"`          // token lifetime in seconds
	AdminUser         string `yaml:"adminUser"`         // login username
	AdminPasswordHash string `yaml:"adminPasswordHash"` // bcrypt hash of the login password
}

// LLMConfig selects the text-generation provider used for match summaries.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "ollama", "openai" or "gemini"
	Model    string `yaml:"model"`    // model name (e.g. "mistral")
	APIKey   string `yaml:"apiKey"`   // provider API key, if required
	BaseURL  string `yaml:"baseURL"`  // provider endpoint override (e.g. local Ollama URL)
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "ollama", "openai", "gemini" or "huggingface"
	Model    string `yaml:"model"`    // embedding model name
	APIKey   string `yaml:"apiKey"`   // provider API key, if required
	BaseURL  string `yaml:"baseURL"`  // provider endpoint override
	Dim      int    `yaml:"dim"`      // embedding dimensionality, must match the Milvus schema
	CacheTTL string `yaml:"cacheTTL"` // lifetime of cached embeddings (e.g. "24h"), empty disables expiry
}

// CollectionsConfig names the two Milvus collections backing the store.
type CollectionsConfig struct {
	Documents string `yaml:"documents"` // document-level collection name
	Sections  string `yaml:"sections"`  // section-level collection name
}

// IndexConfig describes the vector index built on the embedding field.
type IndexConfig struct {
	IndexType  string                 `yaml:"indexType"`  // index type (e.g. "IVF_FLAT", "HNSW", "AUTOINDEX")
	MetricType string                 `yaml:"metricType"` // similarity metric (e.g. "L2", "COSINE")
	Params     map[string]interface{} `yaml:"params"`     // index parameters (e.g. {"nlist": 128})
}

// MatcherConfig tunes the indexing and matching pipelines.
type MatcherConfig struct {
	DataDir         string            `yaml:"dataDir"`         // default directory scanned by the indexing endpoint
	TopK            int               `yaml:"topK"`            // default number of section hits per query
	MinSimilarity   float64           `yaml:"minSimilarity"`   // similarity floor in [0,1]; hits below it are dropped
	Workers         int               `yaml:"workers"`         // concurrent files processed by the indexing pipeline
	ExcludePatterns []string          `yaml:"excludePatterns"` // glob patterns skipped during directory walks
	Collections     CollectionsConfig `yaml:"collections"`     // Milvus collection names
	Index           IndexConfig       `yaml:"index"`           // vector index settings
}

// MilvusConfig holds the Milvus connection settings.
type MilvusConfig struct {
	Address           string `yaml:"address"`           // Milvus address (e.g. "localhost:19530")
	AutoFlushInterval string `yaml:"autoFlushInterval"` // background flush cadence (e.g. "30s"), empty disables it
}

// RedisConfig holds the Redis connection settings for the embedding cache.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`  // use Redis as the embedding cache when true
	Address  string `yaml:"address"`  // Redis address (e.g. "localhost:6379")
	Password string `yaml:"password"` // Redis password
	DB       int    `yaml:"db"`       // Redis database number
}

// MySQLConfig holds the MySQL connection settings for the candidate catalog.
type MySQLConfig struct {
	Enabled         bool   `yaml:"enabled"`         // persist candidate profiles when true
	Address         string `yaml:"address"`         // MySQL address
	Username        string `yaml:"username"`        // username
	Password        string `yaml:"password"`        // password
	Database        string `yaml:"database"`        // database name
	MaxOpenConns    int    `yaml:"maxOpenConns"`    // connection pool: max open connections
	MaxIdleConns    int    `yaml:"maxIdleConns"`    // connection pool: max idle connections
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // connection max lifetime in seconds
}

// MinIOConfig holds the MinIO settings for the upload archive.
type MinIOConfig struct {
	Enabled   bool   `yaml:"enabled"`   // archive indexed source files when true
	Endpoint  string `yaml:"endpoint"`  // MinIO endpoint
	AccessKey string `yaml:"accessKey"` // access key
	SecretKey string `yaml:"secretKey"` // secret key
	Bucket    string `yaml:"bucket"`    // archive bucket name
	Secure    bool   `yaml:"secure"`    // use HTTPS
}

// MongoConfig holds the MongoDB settings for match-run history.
type MongoConfig struct {
	Enabled  bool   `yaml:"enabled"`  // record match runs when true
	Address  string `yaml:"address"`  // MongoDB address
	Username string `yaml:"username"` // username
	Password string `yaml:"password"` // password
	Database string `yaml:"database"` // database name
}

// Neo4jConfig holds the Neo4j settings for the skill graph.
type Neo4jConfig struct {
	Enabled  bool   `yaml:"enabled"`  // maintain the candidate skill graph when true
	Uri      string `yaml:"uri"`      // Neo4j URI (e.g. "bolt://localhost:7687")
	Username string `yaml:"username"` // username
	Password string `yaml:"password"` // password
	Database string `yaml:"database"` // database name
}

// EtcdConfig holds the etcd settings for service registration.
type EtcdConfig struct {
	Enabled   bool     `yaml:"enabled"`   // register the service in etcd when true
	Endpoints []string `yaml:"endpoints"` // etcd endpoints
	Username  string   `yaml:"username"`  // username
	Password  string   `yaml:"password"`  // password
}

// KafkaConfig holds the Kafka settings for index event publishing.
type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"` // publish indexing events when true
	Brokers []string `yaml:"brokers"` // Kafka broker addresses
	Topic   string   `yaml:"topic"`   // topic for index events
}

// DatabaseConfigs groups every backing store.
type DatabaseConfigs struct {
	Milvus  MilvusConfig `yaml:"milvus"`  // vector store
	Redis   RedisConfig  `yaml:"redis"`   // embedding cache
	MySQL   MySQLConfig  `yaml:"mysql"`   // candidate catalog
	MinIO   MinIOConfig  `yaml:"minio"`   // upload archive
	MongoDB MongoConfig  `yaml:"mongodb"` // match-run history
	Neo4j   Neo4jConfig  `yaml:"neo4j"`   // skill graph
	Etcd    EtcdConfig   `yaml:"etcd"`    // service discovery
	Kafka   KafkaConfig  `yaml:"kafka"`   // index events
}

// MiddlewareConfig groups the traffic-protection middleware.
type MiddlewareConfig struct {
	RateLimiter    RateLimiterConfig    `yaml:"rateLimiter"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// RateLimiterConfig selects and tunes the rate limiting algorithm.
type RateLimiterConfig struct {
	Enabled        bool                 `yaml:"enabled"`
	Algorithm      string               `yaml:"algorithm"` // "fixedWindow", "slidingLog", "slidingCounter", "leakyBucket" or "tokenBucket"
	FixedWindow    FixedWindowConfig    `yaml:"fixedWindow"`
	SlidingLog     SlidingLogConfig     `yaml:"slidingLog"`
	SlidingCounter SlidingCounterConfig `yaml:"slidingCounter"`
	LeakyBucket    LeakyBucketConfig    `yaml:"leakyBucket"`
	TokenBucket    TokenBucketConfig    `yaml:"tokenBucket"`
}

// FixedWindowConfig tunes the fixed window counter algorithm.
type FixedWindowConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // e.g. "1m", "30s"
}

// SlidingLogConfig tunes the sliding window log algorithm.
type SlidingLogConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

// SlidingCounterConfig tunes the sliding window counter algorithm.
type SlidingCounterConfig struct {
	Limit      int    `yaml:"limit"`
	Window     string `yaml:"window"`
	NumBuckets int    `yaml:"numBuckets"`
}

// LeakyBucketConfig tunes the leaky bucket algorithm.
type LeakyBucketConfig struct {
	Rate     float64 `yaml:"rate"` // requests per second
	Capacity int     `yaml:"capacity"`
}

// TokenBucketConfig tunes the token bucket algorithm.
type TokenBucketConfig struct {
	Rate     float64 `yaml:"rate"` // tokens per second
	Capacity int     `yaml:"capacity"`
}

// CircuitBreakerConfig tunes the circuit breaker.
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // e.g. "30s"
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // application metadata
	Server     ServerConfig     `yaml:"server"`     // listen addresses
	Auth       AuthConfig       `yaml:"auth"`       // API authentication
	LLM        LLMConfig        `yaml:"llm"`        // summary generation
	Embedding  EmbeddingConfig  `yaml:"embedding"`  // embedding provider
	Matcher    MatcherConfig    `yaml:"matcher"`    // pipeline tuning
	Logger     LoggerConfig     `yaml:"logger"`     // logging
	Databases  DatabaseConfigs  `yaml:"databases"`  // backing stores
	Middleware MiddlewareConfig `yaml:"middleware"` // traffic protection
}

// LoadConfig reads and parses the YAML configuration at path, then fills in
// defaults for settings the file leaves out.
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(yamlFile, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills the settings a minimal config file may omit.
func applyDefaults(cfg *AppConfig) {
	if cfg.Server.HTTPAddress == "" {
		cfg.Server.HTTPAddress = ":8080"
	}
	if cfg.Server.OpsAddress == "" {
		cfg.Server.OpsAddress = ":8081"
	}
	if cfg.Matcher.DataDir == "" {
		cfg.Matcher.DataDir = "DATA_resume"
	}
	if cfg.Matcher.TopK <= 0 {
		cfg.Matcher.TopK = 10
	}
	if cfg.Matcher.MinSimilarity <= 0 {
		cfg.Matcher.MinSimilarity = 0.1
	}
	if cfg.Matcher.Workers <= 0 {
		cfg.Matcher.Workers = 4
	}
	if cfg.Matcher.Collections.Documents == "" {
		cfg.Matcher.Collections.Documents = "resume_documents"
	}
	if cfg.Matcher.Collections.Sections == "" {
		cfg.Matcher.Collections.Sections = "resume_sections"
	}
	if cfg.Matcher.Index.IndexType == "" {
		cfg.Matcher.Index.IndexType = "IVF_FLAT"
	}
	if cfg.Matcher.Index.MetricType == "" {
		cfg.Matcher.Index.MetricType = "L2"
	}
	if cfg.Embedding.Dim <= 0 {
		cfg.Embedding.Dim = 768
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
}
