package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "."
	ConfigFileName    = "hmsctl.yml"
	DefaultEnvFile    = ".env"

	DefaultBaseURL       = "http://localhost:8000"
	DefaultHTTPTimeout   = 5 * time.Second
	DefaultDBTimeout     = 10 * time.Second
	DefaultPassThreshold = 0.7
	DefaultLogLevel      = "warn"

	// DefaultSecretPlaceholder is the value the backend ships with when no
	// SECRET_KEY has been configured.
	DefaultSecretPlaceholder = "your-secret-key-change-this-in-production-use-environment-variable"
)

// Sources a configuration attribute can come from, lowest precedence first.
const (
	SourceDefault     = "default"
	SourceFile        = "file"
	SourceDotEnv      = ".env"
	SourceEnvironment = "environment"
	SourceFlag        = "flag"
)

// DefaultRequiredTables are the tables the hospital backend creates.
var DefaultRequiredTables = []string{
	"doctors", "specializations", "patients", "appointments", "admins", "banners",
}

var (
	ErrInvalidThreshold = errors.New("pass_threshold must be greater than 0 and at most 1")
	ErrInvalidTimeout   = errors.New("timeout must be positive")
)

// LookupFunc resolves an environment variable. os.LookupEnv is used when nil.
type LookupFunc func(key string) (string, bool)

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigPath is the directory holding hmsctl.yml (defaults to HMS_CONFIG_PATH or ".")
	ConfigPath string
	// EnvFile is the dotenv file to read (defaults to HMS_ENV_FILE or ".env")
	EnvFile string
	Lookup  LookupFunc
}

// Settings holds every value hmsctl reads, together with where it came from.
type Settings struct {
	SecretKey                string
	DatabaseURL              string
	AccessTokenExpireMinutes string

	BaseURL        string
	HTTPTimeout    time.Duration
	DBTimeout      time.Duration
	PassThreshold  float64
	RequiredTables []string
	LogLevel       string

	sources        map[string]string
	configFilePath string
	envFile        EnvFileInfo
	problems       []error
}

// EnvFileInfo describes the dotenv file consulted during Load.
type EnvFileInfo struct {
	Path   string   `json:"path"`
	Exists bool     `json:"exists"`
	Keys   []string `json:"keys,omitempty"`
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

type fileConfig struct {
	BaseURL        string        `yaml:"base_url"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	DBTimeout      time.Duration `yaml:"db_timeout"`
	PassThreshold  float64       `yaml:"pass_threshold"`
	RequiredTables []string      `yaml:"required_tables"`
	LogLevel       string        `yaml:"log_level"`
}

func newDefault() *Settings {
	tables := make([]string, len(DefaultRequiredTables))
	copy(tables, DefaultRequiredTables)
	return &Settings{
		BaseURL:        DefaultBaseURL,
		HTTPTimeout:    DefaultHTTPTimeout,
		DBTimeout:      DefaultDBTimeout,
		PassThreshold:  DefaultPassThreshold,
		RequiredTables: tables,
		LogLevel:       DefaultLogLevel,
		sources:        make(map[string]string),
	}
}

// Default returns settings populated only with defaults.
func Default() *Settings {
	s := newDefault()
	for _, name := range attributeNames() {
		s.sources[name] = SourceDefault
	}
	return s
}

// Load loads configuration from defaults, the YAML file, the dotenv file and
// the environment. Later sources take precedence. The process environment is
// never modified.
//
// Unparsable files and values do not fail Load: the affected attributes keep
// their previous value and the problem is kept for Problems and Validate.
func Load(opts Options) (*Settings, error) {
	s := Default()

	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	configPath := opts.ConfigPath
	if configPath == "" {
		if v, ok := lookup("HMS_CONFIG_PATH"); ok && v != "" {
			configPath = v
		} else {
			configPath = DefaultConfigPath
		}
	}
	s.configFilePath = filepath.Join(configPath, ConfigFileName)

	data, err := os.ReadFile(s.configFilePath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file %s: %w", s.configFilePath, err)
	}
	if err == nil {
		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			s.problems = append(s.problems, fmt.Errorf("failed to parse config file %s: %w", s.configFilePath, err))
		} else {
			s.applyFileConfig(&file)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		if v, ok := lookup("HMS_ENV_FILE"); ok && v != "" {
			envFile = v
		} else {
			envFile = DefaultEnvFile
		}
	}
	s.applyEnvConfig(lookup, s.readEnvFile(envFile))
	return s, nil
}

func attributeNames() []string {
	return []string{
		"secret_key", "database_url", "access_token_expire_minutes",
		"base_url", "http_timeout", "db_timeout", "pass_threshold",
		"required_tables", "log_level",
	}
}

func (s *Settings) readEnvFile(path string) map[string]string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	s.envFile = EnvFileInfo{Path: abs}

	if _, err := os.Stat(path); err != nil {
		return map[string]string{}
	}
	s.envFile.Exists = true

	values, err := godotenv.Read(path)
	if err != nil {
		s.problems = append(s.problems, fmt.Errorf("failed to parse env file %s: %w", path, err))
		return map[string]string{}
	}

	for key := range values {
		s.envFile.Keys = append(s.envFile.Keys, key)
	}
	sort.Strings(s.envFile.Keys)
	return values
}

func (s *Settings) applyFileConfig(file *fileConfig) {
	if file.BaseURL != "" {
		s.BaseURL = file.BaseURL
		s.sources["base_url"] = SourceFile
	}
	if file.HTTPTimeout != 0 {
		s.HTTPTimeout = file.HTTPTimeout
		s.sources["http_timeout"] = SourceFile
	}
	if file.DBTimeout != 0 {
		s.DBTimeout = file.DBTimeout
		s.sources["db_timeout"] = SourceFile
	}
	if file.PassThreshold != 0 {
		s.PassThreshold = file.PassThreshold
		s.sources["pass_threshold"] = SourceFile
	}
	if len(file.RequiredTables) > 0 {
		s.RequiredTables = file.RequiredTables
		s.sources["required_tables"] = SourceFile
	}
	if file.LogLevel != "" {
		s.LogLevel = file.LogLevel
		s.sources["log_level"] = SourceFile
	}
}

// applyEnvConfig layers the dotenv values and the environment over s. A
// variable present in the environment hides the dotenv entry even when it is
// empty; an empty value leaves the attribute unset.
func (s *Settings) applyEnvConfig(lookup LookupFunc, dotenv map[string]string) {
	get := func(key string) (string, string, bool) {
		if v, ok := lookup(key); ok {
			return v, SourceEnvironment, true
		}
		if v, ok := dotenv[key]; ok {
			return v, SourceDotEnv, true
		}
		return "", "", false
	}
	// verifier settings ignore empty values
	getValue := func(key string) (string, string, bool) {
		val, src, ok := get(key)
		return val, src, ok && val != ""
	}

	if val, src, ok := get("SECRET_KEY"); ok {
		s.SecretKey = val
		s.sources["secret_key"] = src
	}
	if val, src, ok := get("DATABASE_URL"); ok {
		s.DatabaseURL = val
		s.sources["database_url"] = src
	}
	if val, src, ok := get("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		s.AccessTokenExpireMinutes = val
		s.sources["access_token_expire_minutes"] = src
	}
	if val, src, ok := getValue("HMS_BASE_URL"); ok {
		s.BaseURL = val
		s.sources["base_url"] = src
	}
	if val, src, ok := getValue("HMS_HTTP_TIMEOUT"); ok {
		if d, err := time.ParseDuration(val); err != nil {
			s.problems = append(s.problems, fmt.Errorf("invalid HMS_HTTP_TIMEOUT %q: %w", val, err))
		} else {
			s.HTTPTimeout = d
			s.sources["http_timeout"] = src
		}
	}
	if val, src, ok := getValue("HMS_DB_TIMEOUT"); ok {
		if d, err := time.ParseDuration(val); err != nil {
			s.problems = append(s.problems, fmt.Errorf("invalid HMS_DB_TIMEOUT %q: %w", val, err))
		} else {
			s.DBTimeout = d
			s.sources["db_timeout"] = src
		}
	}
	if val, src, ok := getValue("HMS_PASS_THRESHOLD"); ok {
		if f, err := strconv.ParseFloat(val, 64); err != nil {
			s.problems = append(s.problems, fmt.Errorf("invalid HMS_PASS_THRESHOLD %q: %w", val, err))
		} else {
			s.PassThreshold = f
			s.sources["pass_threshold"] = src
		}
	}
	if val, src, ok := getValue("HMS_REQUIRED_TABLES"); ok {
		s.RequiredTables = splitAndTrim(val)
		s.sources["required_tables"] = src
	}
	if val, src, ok := getValue("HMS_LOG_LEVEL"); ok {
		s.LogLevel = val
		s.sources["log_level"] = src
	}
}

// ApplyFlags overrides settings with any of the well-known flags that were
// explicitly set on the command line.
func (s *Settings) ApplyFlags(flags *pflag.FlagSet) error {
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}

	if changed("base-url") {
		v, _ := flags.GetString("base-url")
		s.BaseURL = v
		s.sources["base_url"] = SourceFlag
	}
	if changed("database-url") {
		v, _ := flags.GetString("database-url")
		s.DatabaseURL = v
		s.sources["database_url"] = SourceFlag
	}
	if changed("http-timeout") {
		v, err := flags.GetDuration("http-timeout")
		if err != nil {
			return err
		}
		s.HTTPTimeout = v
		s.sources["http_timeout"] = SourceFlag
	}
	if changed("db-timeout") {
		v, err := flags.GetDuration("db-timeout")
		if err != nil {
			return err
		}
		s.DBTimeout = v
		s.sources["db_timeout"] = SourceFlag
	}
	if changed("threshold") {
		v, err := flags.GetFloat64("threshold")
		if err != nil {
			return err
		}
		s.PassThreshold = v
		s.sources["pass_threshold"] = SourceFlag
	}
	if changed("verbose") {
		if v, _ := flags.GetBool("verbose"); v {
			s.LogLevel = "debug"
			s.sources["log_level"] = SourceFlag
		}
	}
	return nil
}

// ConfigFilePath returns the path to the config file
func (s *Settings) ConfigFilePath() string {
	return s.configFilePath
}

// EnvFile reports the dotenv file that was consulted.
func (s *Settings) EnvFile() EnvFileInfo {
	return s.envFile
}

// Source returns the source of a configuration attribute
func (s *Settings) Source(name string) string {
	if s.sources == nil {
		return SourceDefault
	}
	if src, ok := s.sources[name]; ok {
		return src
	}
	return SourceDefault
}

// Problems returns the values Load could not parse.
func (s *Settings) Problems() []error {
	return s.problems
}

// Validate validates the configuration. Problems found by Load are errors
// here.
func (s *Settings) Validate() error {
	if len(s.problems) > 0 {
		return errors.Join(s.problems...)
	}
	if s.PassThreshold <= 0 || s.PassThreshold > 1 {
		return fmt.Errorf("%w (got %v)", ErrInvalidThreshold, s.PassThreshold)
	}
	if s.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout: %w", ErrInvalidTimeout)
	}
	if s.DBTimeout <= 0 {
		return fmt.Errorf("db_timeout: %w", ErrInvalidTimeout)
	}

	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url %q: %w", s.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q: expected http(s)://host[:port]", s.BaseURL)
	}

	if len(s.RequiredTables) == 0 {
		return errors.New("required_tables must not be empty")
	}
	return nil
}

// Attributes returns all configuration attributes with their values and
// sources. Secrets are redacted.
func (s *Settings) Attributes() []Attribute {
	return []Attribute{
		{Name: "secret_key", Value: RedactSecret(s.SecretKey), Source: s.Source("secret_key")},
		{Name: "database_url", Value: RedactURL(s.DatabaseURL), Source: s.Source("database_url")},
		{Name: "access_token_expire_minutes", Value: s.AccessTokenExpireMinutes, Source: s.Source("access_token_expire_minutes")},
		{Name: "base_url", Value: s.BaseURL, Source: s.Source("base_url")},
		{Name: "http_timeout", Value: s.HTTPTimeout.String(), Source: s.Source("http_timeout")},
		{Name: "db_timeout", Value: s.DBTimeout.String(), Source: s.Source("db_timeout")},
		{Name: "pass_threshold", Value: strconv.FormatFloat(s.PassThreshold, 'f', -1, 64), Source: s.Source("pass_threshold")},
		{Name: "required_tables", Value: strings.Join(s.RequiredTables, ","), Source: s.Source("required_tables")},
		{Name: "log_level", Value: s.LogLevel, Source: s.Source("log_level")},
	}
}

// FormatText returns a text representation of the configuration
func (s *Settings) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n", s.configFilePath))
	sb.WriteString(fmt.Sprintf("Env file:    %s (exists: %v)\n\n", s.envFile.Path, s.envFile.Exists))

	t := table.NewWriter()
	t.SetOutputMirror(&sb)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NAME", "VALUE", "SOURCE"})
	for _, attr := range s.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		t.AppendRow(table.Row{attr.Name, value, attr.Source})
	}
	t.Render()
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (s *Settings) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": s.configFilePath,
		"env_file":    s.envFile,
		"attributes":  s.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
