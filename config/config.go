package config

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	globalConfig Config
	once         sync.Once
)

// Config 扁平化配置结构体
type Config struct {
	// 服务器配置
	ServerHost         string        `mapstructure:"server_host"`
	ServerPort         int           `mapstructure:"server_port"`
	ServerDomain       string        `mapstructure:"server_domain"`
	ServerReadTimeout  time.Duration `mapstructure:"server_read_timeout"`
	ServerWriteTimeout time.Duration `mapstructure:"server_write_timeout"`
	ServerIdleTimeout  time.Duration `mapstructure:"server_idle_timeout"`

	// 数据库配置
	DBType            string `mapstructure:"db_type"`
	DBHost            string `mapstructure:"db_host"`
	DBPort            int    `mapstructure:"db_port"`
	DBUsername        string `mapstructure:"db_username"`
	DBPassword        string `mapstructure:"db_password"`
	DBName            string `mapstructure:"db_name"`
	DBFilePath        string `mapstructure:"db_file_path"`
	DBMaxOpenConns    int    `mapstructure:"db_max_open_conns"`
	DBMaxIdleConns    int    `mapstructure:"db_max_idle_conns"`
	DBConnMaxLifetime int    `mapstructure:"db_conn_max_lifetime"`

	// 缓存配置
	CacheType          string        `mapstructure:"cache_type"`
	CacheRedisAddr     string        `mapstructure:"cache_redis_addr"`
	CacheRedisPassword string        `mapstructure:"cache_redis_password"`
	CacheRedisDB       int           `mapstructure:"cache_redis_db"`
	CacheShareTokenTTL time.Duration `mapstructure:"cache_share_token_ttl"`

	// 限流配置
	RateLimitApiRPS      float64       `mapstructure:"rate_limit_api_rps"`
	RateLimitApiBurst    int           `mapstructure:"rate_limit_api_burst"`
	RateLimitPublicRPS   float64       `mapstructure:"rate_limit_public_rps"`
	RateLimitPublicBurst int           `mapstructure:"rate_limit_public_burst"`
	RateLimitAuthRPS     float64       `mapstructure:"rate_limit_auth_rps"`
	RateLimitAuthBurst   int           `mapstructure:"rate_limit_auth_burst"`
	RateLimitExpireTime  time.Duration `mapstructure:"rate_limit_expire_time"`

	// 上传配置
	UploadMaxSizeMB int `mapstructure:"upload_max_size_mb"`

	// Worker 配置
	WorkerCount     int `mapstructure:"worker_count"`
	WorkerQueueSize int `mapstructure:"worker_queue_size"`

	// JWT
	JWTSecret    string        `mapstructure:"jwt_secret"`
	JWTExpiresIn time.Duration `mapstructure:"jwt_expires_in"`

	// 对象存储
	StorageType           string        `mapstructure:"storage_type"`
	StorageLocalPath      string        `mapstructure:"storage_local_path"`
	StorageBucket         string        `mapstructure:"storage_bucket"`
	StorageEndpoint       string        `mapstructure:"storage_endpoint"`
	StorageRegion         string        `mapstructure:"storage_region"`
	StorageAccessKey      string        `mapstructure:"storage_access_key"`
	StorageSecretKey      string        `mapstructure:"storage_secret_key"`
	StorageUseSSL         bool          `mapstructure:"storage_use_ssl"`
	StorageWebDAVURL      string        `mapstructure:"storage_webdav_url"`
	StorageWebDAVUsername string        `mapstructure:"storage_webdav_username"`
	StorageWebDAVPassword string        `mapstructure:"storage_webdav_password"`
	StorageWebDAVRoot     string        `mapstructure:"storage_webdav_root"`
	PresignTTL            time.Duration `mapstructure:"presign_ttl"`
	URLSigningSecret      string        `mapstructure:"url_signing_secret"`

	// 图像识别
	VisionProvider     string `mapstructure:"vision_provider"`
	VisionRegion       string `mapstructure:"vision_region"`
	VisionGeminiAPIKey string `mapstructure:"vision_gemini_api_key"`
	VisionGeminiModel  string `mapstructure:"vision_gemini_model"`
	VisionMaxLabels    int    `mapstructure:"vision_max_labels"`

	// 分析任务调度
	AnalysisQueue         string `mapstructure:"analysis_queue"`
	AnalysisRedisAddr     string `mapstructure:"analysis_redis_addr"`
	AnalysisRedisPassword string `mapstructure:"analysis_redis_password"`
	AnalysisRedisDB       int    `mapstructure:"analysis_redis_db"`
	AnalysisConcurrency   int    `mapstructure:"analysis_concurrency"`

	// 日志
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// InitConfig Initialize configuration
func InitConfig() {
	once.Do(func() {
		loadConfig()
	})
}

func Get() *Config {
	return &globalConfig
}

// loadConfig Core configuration loading
func loadConfig() {
	setDefaults()

	configFile := viper.GetString("config_file_path")
	if configFile == "" {
		configFile = ".env"
	}
	viper.SetConfigFile(configFile)
	viper.SetConfigType("env")

	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Info: %s not found, using defaults and environment variables\n", configFile)
	} else {
		fmt.Fprintf(os.Stderr, "Info: Loaded configuration from %s\n", configFile)
	}

	viper.AutomaticEnv()
	for _, key := range viper.AllKeys() {
		_ = viper.BindEnv(key)
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: Unable to unmarshal config, %v\n", err)
		os.Exit(1)
	}

	// WorkerCount: -1 = CPU 线程数, 0 = max(2, CPU核心数), >0 = 指定值
	switch {
	case globalConfig.WorkerCount < 0:
		globalConfig.WorkerCount = runtime.GOMAXPROCS(0)
	case globalConfig.WorkerCount == 0:
		globalConfig.WorkerCount = getCpus()
	}
}

// setDefaults 设置默认值
func setDefaults() {
	viper.SetDefault("server_host", "127.0.0.1")
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("server_domain", "")
	viper.SetDefault("server_read_timeout", "15s")
	viper.SetDefault("server_write_timeout", "60s")
	viper.SetDefault("server_idle_timeout", "120s")

	viper.SetDefault("db_type", "sqlite")
	viper.SetDefault("db_host", "localhost")
	viper.SetDefault("db_port", 5432)
	viper.SetDefault("db_username", "postgres")
	viper.SetDefault("db_password", "")
	viper.SetDefault("db_name", "photo-share")
	viper.SetDefault("db_file_path", "")
	viper.SetDefault("db_max_open_conns", 100)
	viper.SetDefault("db_max_idle_conns", 25)
	viper.SetDefault("db_conn_max_lifetime", 3600)

	viper.SetDefault("cache_type", "memory")
	viper.SetDefault("cache_redis_addr", "localhost:6379")
	viper.SetDefault("cache_redis_password", "")
	viper.SetDefault("cache_redis_db", 0)
	viper.SetDefault("cache_share_token_ttl", "10m")

	viper.SetDefault("rate_limit_api_rps", 30.0)
	viper.SetDefault("rate_limit_api_burst", 60)
	viper.SetDefault("rate_limit_public_rps", 10.0)
	viper.SetDefault("rate_limit_public_burst", 30)
	viper.SetDefault("rate_limit_auth_rps", 0.5)
	viper.SetDefault("rate_limit_auth_burst", 5)
	viper.SetDefault("rate_limit_expire_time", "10m")

	viper.SetDefault("upload_max_size_mb", 50)

	viper.SetDefault("worker_count", 0)
	viper.SetDefault("worker_queue_size", 1000)

	viper.SetDefault("jwt_secret", "")
	viper.SetDefault("jwt_expires_in", "24h")

	viper.SetDefault("storage_type", "local")
	viper.SetDefault("storage_local_path", "./data/objects")
	viper.SetDefault("storage_bucket", "photo-share")
	viper.SetDefault("storage_endpoint", "")
	viper.SetDefault("storage_region", "us-east-1")
	viper.SetDefault("storage_access_key", "")
	viper.SetDefault("storage_secret_key", "")
	viper.SetDefault("storage_use_ssl", true)
	viper.SetDefault("storage_webdav_url", "")
	viper.SetDefault("storage_webdav_username", "")
	viper.SetDefault("storage_webdav_password", "")
	viper.SetDefault("storage_webdav_root", "")
	viper.SetDefault("presign_ttl", "15m")
	viper.SetDefault("url_signing_secret", "")

	viper.SetDefault("vision_provider", "none")
	viper.SetDefault("vision_region", "us-east-1")
	viper.SetDefault("vision_gemini_api_key", "")
	viper.SetDefault("vision_gemini_model", "gemini-2.5-flash")
	viper.SetDefault("vision_max_labels", 10)

	viper.SetDefault("analysis_queue", "pool")
	viper.SetDefault("analysis_redis_addr", "localhost:6379")
	viper.SetDefault("analysis_redis_password", "")
	viper.SetDefault("analysis_redis_db", 1)
	viper.SetDefault("analysis_concurrency", 2)

	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "")
}

// Addr 返回监听地址，格式为 "host:port"
func (c *Config) Addr() string {
	host := c.ServerHost
	if host == "" {
		host = "0.0.0.0"
	}
	port := c.ServerPort
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// BaseURL 返回基础 URL，用于生成分享链接和签名 URL
func (c *Config) BaseURL() string {
	if c.ServerDomain != "" {
		return c.ServerDomain
	}
	host := c.ServerHost
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%d", host, c.ServerPort)
}

// GetWorkerCount 返回 worker 数量
func (c *Config) GetWorkerCount() int {
	if c.WorkerCount <= 0 {
		return getCpus()
	}
	return c.WorkerCount
}

// GetPresignTTL 签名 URL 有效期，默认 15 分钟
func (c *Config) GetPresignTTL() time.Duration {
	if c.PresignTTL <= 0 {
		return 15 * time.Minute
	}
	return c.PresignTTL
}

// SigningSecret 本地/WebDAV 签名密钥，未配置时复用 JWT 密钥
func (c *Config) SigningSecret() string {
	if c.URLSigningSecret != "" {
		return c.URLSigningSecret
	}
	return c.JWTSecret
}

// getCpus 获取默认线程数量
func getCpus() int {
	n := runtime.GOMAXPROCS(0)
	if n < 2 {
		return 2
	}
	return n
}
