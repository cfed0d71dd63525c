package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// SanityConfig describes how to reach the hosted content API.
type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	// RateLimit is the number of queries per second sent to the API.
	RateLimit float64
}

// PublishConfig holds the S3-compatible bucket the static build is uploaded to.
type PublishConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether enough settings are present to publish.
func (p PublishConfig) Enabled() bool {
	return p.Endpoint != "" && p.Bucket != ""
}

// Content sources.
const (
	SourceCMS   = "cms"
	SourceLocal = "local"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr   string
	Port         string
	GinMode      string
	SiteName     string
	SiteBaseURL  string
	Source       string
	Sanity       SanityConfig
	ImageBaseURL string
	DatabasePath string
	AssetDir     string
	OutputDir    string
	Revalidate   time.Duration
	LogLevel     string
	LogFormat    string
	Publish      PublishConfig
}

// ImagesBase is the base URL of image delivery. The local mirror serves its own
// images from the site; the hosted CMS uses its CDN unless overridden.
func (c AppConfig) ImagesBase() string {
	if c.ImageBaseURL != "" {
		return c.ImageBaseURL
	}
	if c.Source == SourceLocal {
		return c.SiteBaseURL
	}
	return ""
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// A .env file in the working directory is read first; real environment variables win.
func Load() AppConfig {
	_ = godotenv.Load()

	port := env("PORT", "8080")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:  listenAddr,
		Port:        port,
		GinMode:     env("GIN_MODE", "release"),
		SiteName:    env("SITE_NAME", "Ephemera"),
		SiteBaseURL: strings.TrimRight(env("SITE_BASE_URL", "https://ephemera.example.com"), "/"),
		Source:      strings.ToLower(env("CONTENT_SOURCE", SourceCMS)),
		Sanity: SanityConfig{
			ProjectID:  env("SANITY_PROJECT_ID", ""),
			Dataset:    env("SANITY_DATASET", "production"),
			APIVersion: env("SANITY_API_VERSION", "2021-10-21"),
			Token:      env("SANITY_TOKEN", ""),
			UseCDN:     envBool("SANITY_USE_CDN", true),
			RateLimit:  envFloat("SANITY_RATE_LIMIT", 10),
		},
		ImageBaseURL: strings.TrimRight(env("IMAGE_BASE_URL", ""), "/"),
		DatabasePath: env("DATABASE_PATH", "ephemera.db"),
		AssetDir:     env("ASSET_DIR", "data/images"),
		OutputDir:    env("BUILD_OUTPUT_DIR", "out"),
		Revalidate:   time.Duration(envInt("REVALIDATE_SECONDS", 0)) * time.Second,
		LogLevel:     env("LOG_LEVEL", "info"),
		LogFormat:    env("LOG_FORMAT", "text"),
		Publish: PublishConfig{
			Endpoint:  env("PUBLISH_ENDPOINT", ""),
			AccessKey: env("PUBLISH_ACCESS_KEY", ""),
			SecretKey: env("PUBLISH_SECRET_KEY", ""),
			Bucket:    env("PUBLISH_BUCKET", ""),
			Prefix:    strings.Trim(env("PUBLISH_PREFIX", ""), "/"),
			UseSSL:    envBool("PUBLISH_USE_SSL", true),
		},
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) bool {
	if value := env(key, ""); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := env(key, ""); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if value := env(key, ""); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return fallback
}
