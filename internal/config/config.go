package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrNoAPIKey = errors.New("usfl api token not found")

// Config holds everything the pipeline reads from the environment.
type Config struct {
	Season      int
	DataDir     string
	GameIDFirst int
	GameIDLast  int

	// USFL API
	APIKey       string
	APIKeyFile   string
	RequestDelay time.Duration
	MaxAttempts  int
	RetryBase    time.Duration
	RetryMax     time.Duration
	Cooldown     time.Duration

	// sinks
	CuratedBucket   string
	CuratedPrefix   string
	TableName       string
	SQLitePath      string
	AthenaDB        string
	AthenaWorkgroup string
	AthenaOutput    string

	Debug bool
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envBool(k string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(k))) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

func envMillis(k string, def int) time.Duration {
	ms := envInt(k, def)
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond
}

// DefaultKeyFile is where the api token file lives when USFL_API_KEY_FILE is unset.
func DefaultKeyFile() string {
	switch runtime.GOOS {
	case "windows":
		return "C:/USFL/USFL_api.json"
	case "darwin":
		return "/Users/Shared/USFL/USFL_api.json"
	default:
		return "/etc/usfl/USFL_api.json"
	}
}

// Load reads a .env file when present, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv(), nil
}

func FromEnv() Config {
	return Config{
		Season:      envInt("SEASON", time.Now().Year()),
		DataDir:     getenv("DATA_DIR", "."),
		GameIDFirst: envInt("GAME_ID_FIRST", 1),
		GameIDLast:  envInt("GAME_ID_LAST", 0),

		APIKey:       getenv("USFL_API_TOKEN", ""),
		APIKeyFile:   getenv("USFL_API_KEY_FILE", DefaultKeyFile()),
		RequestDelay: envMillis("USFL_REQUEST_DELAY_MS", 1000),
		MaxAttempts:  envInt("HTTP_MAX_ATTEMPTS", 6),
		RetryBase:    envMillis("HTTP_RETRY_BASE_MS", 400),
		RetryMax:     envMillis("HTTP_RETRY_MAX_MS", 6000),
		Cooldown:     envMillis("HTTP_COOLDOWN_MS", 7000),

		CuratedBucket:   getenv("CURATED_BUCKET", ""),
		CuratedPrefix:   strings.Trim(getenv("CURATED_PREFIX", "usfl"), "/"),
		TableName:       getenv("TABLE_NAME", ""),
		SQLitePath:      getenv("SQLITE_PATH", ""),
		AthenaDB:        getenv("ATHENA_DB", ""),
		AthenaWorkgroup: getenv("ATHENA_WORKGROUP", "primary"),
		AthenaOutput:    getenv("ATHENA_OUTPUT", ""),

		Debug: envBool("DEBUG", false),
	}
}

type keyFile struct {
	Token string `json:"usfl_api_token"`
}

// ResolveAPIKey returns the token from the environment, else from the key file.
func (c Config) ResolveAPIKey() (string, error) {
	if c.APIKey != "" {
		return c.APIKey, nil
	}
	b, err := os.ReadFile(c.APIKeyFile)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoAPIKey, err)
	}
	var kf keyFile
	if err := json.Unmarshal(b, &kf); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNoAPIKey, c.APIKeyFile, err)
	}
	if strings.TrimSpace(kf.Token) == "" {
		return "", fmt.Errorf("%w: %s has no usfl_api_token", ErrNoAPIKey, c.APIKeyFile)
	}
	return strings.TrimSpace(kf.Token), nil
}
