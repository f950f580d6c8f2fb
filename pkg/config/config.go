package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/model-registry"
	ConfigFileName    = "registry.yml"

	// ConfigPathEnv names the directory holding ConfigFileName.
	ConfigPathEnv = "MODEL_REGISTRY_CONFIG_PATH"

	// PageSizeLimit is the hard upper bound for list_page_size_max.
	PageSizeLimit = 100
)

// ValidAlgorithms lists the token signing algorithms the issuer supports
var ValidAlgorithms = []string{"HS256", "HS384", "HS512"}

const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceEnvironment = "environment"
)

// RegistryConfig holds all model registry settings. It is built once by Load
// and handed to each component's constructor.
type RegistryConfig struct {
	// DatabaseURL is the PostgreSQL connection string for the catalog
	DatabaseURL string `yaml:"database_url" json:"database_url"`

	// SecretKey signs bearer tokens. Never rendered by FormatText/FormatJSON.
	SecretKey string `yaml:"secret_key" json:"-"`

	// Algorithm is the token signing algorithm
	Algorithm string `yaml:"algorithm" json:"algorithm"`

	// AccessTokenExpireMinutes is the bearer token lifetime
	AccessTokenExpireMinutes int `yaml:"access_token_expire_minutes" json:"access_token_expire_minutes"`

	// AllowedHosts are the CORS origins allowed to call the API
	AllowedHosts []string `yaml:"allowed_hosts" json:"allowed_hosts"`

	// Artifact storage and experiment tracking collaborators. Carried for
	// clients and the UI; the registry never dereferences them.
	S3Bucket          string `yaml:"s3_bucket" json:"s3_bucket"`
	S3EndpointURL     string `yaml:"s3_endpoint_url" json:"s3_endpoint_url"`
	AWSRegion         string `yaml:"aws_region" json:"aws_region"`
	MLflowTrackingURI string `yaml:"mlflow_tracking_uri" json:"mlflow_tracking_uri"`

	// ListPageSizeMax bounds the size parameter of list and search
	ListPageSizeMax int `yaml:"list_page_size_max" json:"list_page_size_max"`

	// ListPageSizeDefault is used when a request omits size
	ListPageSizeDefault int `yaml:"list_page_size_default" json:"list_page_size_default"`

	// LogLevel is a zerolog level name
	LogLevel string `yaml:"log_level" json:"log_level"`

	// AuditEnabled turns audit lines on
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// AuditDatabaseURL, when set, persists audit lines into audit_messages
	AuditDatabaseURL string `yaml:"audit_database_url" json:"audit_database_url"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// fileConfig mirrors RegistryConfig with pointers so that a file can set a
// value to its zero (e.g. audit_enabled: false).
type fileConfig struct {
	DatabaseURL              *string  `yaml:"database_url"`
	SecretKey                *string  `yaml:"secret_key"`
	Algorithm                *string  `yaml:"algorithm"`
	AccessTokenExpireMinutes *int     `yaml:"access_token_expire_minutes"`
	AllowedHosts             []string `yaml:"allowed_hosts"`
	S3Bucket                 *string  `yaml:"s3_bucket"`
	S3EndpointURL            *string  `yaml:"s3_endpoint_url"`
	AWSRegion                *string  `yaml:"aws_region"`
	MLflowTrackingURI        *string  `yaml:"mlflow_tracking_uri"`
	ListPageSizeMax          *int     `yaml:"list_page_size_max"`
	ListPageSizeDefault      *int     `yaml:"list_page_size_default"`
	LogLevel                 *string  `yaml:"log_level"`
	AuditEnabled             *bool    `yaml:"audit_enabled"`
	AuditDatabaseURL         *string  `yaml:"audit_database_url"`
}

// envConfig is decoded by envconfig. Unset variables leave nil pointers.
type envConfig struct {
	DatabaseURL              *string `envconfig:"DATABASE_URL"`
	SecretKey                *string `envconfig:"SECRET_KEY"`
	Algorithm                *string `envconfig:"ALGORITHM"`
	AccessTokenExpireMinutes *int    `envconfig:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	AllowedHosts             *string `envconfig:"ALLOWED_HOSTS"`
	S3Bucket                 *string `envconfig:"S3_BUCKET"`
	S3EndpointURL            *string `envconfig:"S3_ENDPOINT_URL"`
	AWSRegion                *string `envconfig:"AWS_REGION"`
	MLflowTrackingURI        *string `envconfig:"MLFLOW_TRACKING_URI"`
	ListPageSizeMax          *int    `envconfig:"LIST_PAGE_SIZE_MAX"`
	ListPageSizeDefault      *int    `envconfig:"LIST_PAGE_SIZE_DEFAULT"`
	LogLevel                 *string `envconfig:"LOG_LEVEL"`
	AuditEnabled             *bool   `envconfig:"AUDIT_ENABLED"`
	AuditDatabaseURL         *string `envconfig:"AUDIT_DATABASE_URL"`
}

// Default returns a config holding only built-in defaults.
func Default() *RegistryConfig {
	c := &RegistryConfig{
		Algorithm:                "HS256",
		AccessTokenExpireMinutes: 30,
		AllowedHosts:             []string{"*"},
		S3Bucket:                 "quarlets-models",
		AWSRegion:                "us-east-1",
		MLflowTrackingURI:        "http://localhost:5000",
		ListPageSizeMax:          PageSizeLimit,
		ListPageSizeDefault:      20,
		LogLevel:                 "info",
		AuditEnabled:             true,
		sources:                  make(map[string]string),
	}
	for _, name := range attributeNames() {
		c.sources[name] = SourceDefault
	}
	return c
}

// Load loads configuration from the file in $MODEL_REGISTRY_CONFIG_PATH (or
// DefaultConfigPath) and then from environment variables, which take
// precedence. A missing file is not an error.
func Load() (*RegistryConfig, error) {
	configPath := os.Getenv(ConfigPathEnv)
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	return LoadFile(filepath.Join(configPath, ConfigFileName))
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*RegistryConfig, error) {
	config := Default()
	config.configFilePath = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		config.applyFileConfig(&file)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	config.applyEnvConfig(&env)

	return config, nil
}

func attributeNames() []string {
	return []string{
		"database_url", "secret_key", "algorithm", "access_token_expire_minutes",
		"allowed_hosts", "s3_bucket", "s3_endpoint_url", "aws_region",
		"mlflow_tracking_uri", "list_page_size_max", "list_page_size_default",
		"log_level", "audit_enabled", "audit_database_url",
	}
}

func (c *RegistryConfig) applyFileConfig(file *fileConfig) {
	c.overlay(SourceFile, overlayValues{
		DatabaseURL:              file.DatabaseURL,
		SecretKey:                file.SecretKey,
		Algorithm:                file.Algorithm,
		AccessTokenExpireMinutes: file.AccessTokenExpireMinutes,
		AllowedHosts:             file.AllowedHosts,
		S3Bucket:                 file.S3Bucket,
		S3EndpointURL:            file.S3EndpointURL,
		AWSRegion:                file.AWSRegion,
		MLflowTrackingURI:        file.MLflowTrackingURI,
		ListPageSizeMax:          file.ListPageSizeMax,
		ListPageSizeDefault:      file.ListPageSizeDefault,
		LogLevel:                 file.LogLevel,
		AuditEnabled:             file.AuditEnabled,
		AuditDatabaseURL:         file.AuditDatabaseURL,
	})
}

func (c *RegistryConfig) applyEnvConfig(env *envConfig) {
	var hosts []string
	if env.AllowedHosts != nil {
		hosts = splitAndTrim(*env.AllowedHosts)
	}
	c.overlay(SourceEnvironment, overlayValues{
		DatabaseURL:              env.DatabaseURL,
		SecretKey:                env.SecretKey,
		Algorithm:                env.Algorithm,
		AccessTokenExpireMinutes: env.AccessTokenExpireMinutes,
		AllowedHosts:             hosts,
		S3Bucket:                 env.S3Bucket,
		S3EndpointURL:            env.S3EndpointURL,
		AWSRegion:                env.AWSRegion,
		MLflowTrackingURI:        env.MLflowTrackingURI,
		ListPageSizeMax:          env.ListPageSizeMax,
		ListPageSizeDefault:      env.ListPageSizeDefault,
		LogLevel:                 env.LogLevel,
		AuditEnabled:             env.AuditEnabled,
		AuditDatabaseURL:         env.AuditDatabaseURL,
	})
}

type overlayValues struct {
	DatabaseURL, SecretKey, Algorithm                     *string
	AccessTokenExpireMinutes                              *int
	AllowedHosts                                          []string
	S3Bucket, S3EndpointURL, AWSRegion, MLflowTrackingURI *string
	ListPageSizeMax, ListPageSizeDefault                  *int
	LogLevel                                              *string
	AuditEnabled                                          *bool
	AuditDatabaseURL                                      *string
}

func (c *RegistryConfig) overlay(source string, v overlayValues) {
	setString := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = *src
			c.sources[name] = source
		}
	}
	setInt := func(name string, dst *int, src *int) {
		if src != nil {
			*dst = *src
			c.sources[name] = source
		}
	}

	setString("database_url", &c.DatabaseURL, v.DatabaseURL)
	setString("secret_key", &c.SecretKey, v.SecretKey)
	setString("algorithm", &c.Algorithm, v.Algorithm)
	setInt("access_token_expire_minutes", &c.AccessTokenExpireMinutes, v.AccessTokenExpireMinutes)
	if len(v.AllowedHosts) > 0 {
		c.AllowedHosts = v.AllowedHosts
		c.sources["allowed_hosts"] = source
	}
	setString("s3_bucket", &c.S3Bucket, v.S3Bucket)
	setString("s3_endpoint_url", &c.S3EndpointURL, v.S3EndpointURL)
	setString("aws_region", &c.AWSRegion, v.AWSRegion)
	setString("mlflow_tracking_uri", &c.MLflowTrackingURI, v.MLflowTrackingURI)
	setInt("list_page_size_max", &c.ListPageSizeMax, v.ListPageSizeMax)
	setInt("list_page_size_default", &c.ListPageSizeDefault, v.ListPageSizeDefault)
	setString("log_level", &c.LogLevel, v.LogLevel)
	if v.AuditEnabled != nil {
		c.AuditEnabled = *v.AuditEnabled
		c.sources["audit_enabled"] = source
	}
	setString("audit_database_url", &c.AuditDatabaseURL, v.AuditDatabaseURL)
}

// ConfigFilePath returns the path to the config file
func (c *RegistryConfig) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *RegistryConfig) Source(name string) string {
	if c.sources == nil {
		return SourceDefault
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return SourceDefault
}

// TokenTTL returns the bearer token lifetime as a duration
func (c *RegistryConfig) TokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// Validate validates the configuration
func (c *RegistryConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("secret_key is required")
	}

	valid := false
	for _, a := range ValidAlgorithms {
		if c.Algorithm == a {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid algorithm: %s", c.Algorithm)
	}

	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("access_token_expire_minutes must be positive, got %d", c.AccessTokenExpireMinutes)
	}
	if c.ListPageSizeMax < 1 || c.ListPageSizeMax > PageSizeLimit {
		return fmt.Errorf("list_page_size_max must be between 1 and %d, got %d", PageSizeLimit, c.ListPageSizeMax)
	}
	if c.ListPageSizeDefault < 1 || c.ListPageSizeDefault > c.ListPageSizeMax {
		return fmt.Errorf("list_page_size_default must be between 1 and list_page_size_max, got %d", c.ListPageSizeDefault)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *RegistryConfig) Attributes() []Attribute {
	secret := ""
	if c.SecretKey != "" {
		secret = "(redacted)"
	}
	return []Attribute{
		{Name: "database_url", Value: redactURL(c.DatabaseURL), Source: c.Source("database_url")},
		{Name: "secret_key", Value: secret, Source: c.Source("secret_key")},
		{Name: "algorithm", Value: c.Algorithm, Source: c.Source("algorithm")},
		{Name: "access_token_expire_minutes", Value: strconv.Itoa(c.AccessTokenExpireMinutes), Source: c.Source("access_token_expire_minutes")},
		{Name: "allowed_hosts", Value: strings.Join(c.AllowedHosts, ","), Source: c.Source("allowed_hosts")},
		{Name: "s3_bucket", Value: c.S3Bucket, Source: c.Source("s3_bucket")},
		{Name: "s3_endpoint_url", Value: c.S3EndpointURL, Source: c.Source("s3_endpoint_url")},
		{Name: "aws_region", Value: c.AWSRegion, Source: c.Source("aws_region")},
		{Name: "mlflow_tracking_uri", Value: c.MLflowTrackingURI, Source: c.Source("mlflow_tracking_uri")},
		{Name: "list_page_size_max", Value: strconv.Itoa(c.ListPageSizeMax), Source: c.Source("list_page_size_max")},
		{Name: "list_page_size_default", Value: strconv.Itoa(c.ListPageSizeDefault), Source: c.Source("list_page_size_default")},
		{Name: "log_level", Value: c.LogLevel, Source: c.Source("log_level")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
		{Name: "audit_database_url", Value: redactURL(c.AuditDatabaseURL), Source: c.Source("audit_database_url")},
	}
}

// FormatText returns a text representation of the configuration
func (c *RegistryConfig) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-30s %-40s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *RegistryConfig) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// redactURL hides the password component of a connection string.
func redactURL(raw string) string {
	at := strings.LastIndex(raw, "@")
	scheme := strings.Index(raw, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return raw
	}
	creds := raw[scheme+3 : at]
	if colon := strings.Index(creds, ":"); colon >= 0 {
		return raw[:scheme+3] + creds[:colon] + ":xxxxx" + raw[at:]
	}
	return raw
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
