package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/authservice/internal/logger"
)

const (
	defaultListenAddr     = "localhost:8000"
	defaultLoggingLevel   = logger.LevelInfo
	defaultEnvironment    = logger.EnvProduction
	defaultRedisURL       = "redis://localhost:6379/0"
	defaultAlgorithm      = "HS256"
	defaultRefreshLasting = 30 * 24 * 60 * 60 // 30 days
	defaultAccessLasting  = 15 * 60           // 15 minutes
	defaultEmailFrom      = "no-reply@example.com"
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the service will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Redis to store verification codes
	RedisURL string

	// Secret key to sign JWT tokens with
	SecretKey string

	// HMAC algorithm: HS256, HS384 or HS512
	Algorithm string

	// Tokens lifetime in seconds
	RefreshLasting int
	AccessLasting  int

	// Secret required to get role other than USER
	AdminSecret string

	// Environment
	Environment string

	// Emails are sent with AWS SES if region set, logged otherwise
	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	EmailFrom          string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:       defaultLoggingLevel,
		ListenAddr:     defaultListenAddr,
		Environment:    defaultEnvironment,
		RedisURL:       defaultRedisURL,
		Algorithm:      defaultAlgorithm,
		RefreshLasting: defaultRefreshLasting,
		AccessLasting:  defaultAccessLasting,
		EmailFrom:      defaultEmailFrom,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}
	setInt := func(o *int) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			v, err := strconv.Atoi(value)
			if err != nil {
				return err
			}
			*o = v
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":           setString(&c.ListenAddr),
		"DATABASE_URI":          setString(&c.DatabaseDSN),
		"REDIS_URL":             setString(&c.RedisURL),
		"SECRET_KEY":            setString(&c.SecretKey),
		"JWT_ALGORITHM":         setString(&c.Algorithm),
		"REFRESH_LASTING":       setInt(&c.RefreshLasting),
		"ACCESS_LASTING":        setInt(&c.AccessLasting),
		"ADMIN_SECRET":          setString(&c.AdminSecret),
		"LOG_LEVEL":             setString(&c.LogLevel),
		"ENVIRONMENT":           setString(&c.Environment),
		"AWS_REGION":            setString(&c.AWSRegion),
		"AWS_ENDPOINT":          setString(&c.AWSEndpoint),
		"AWS_ACCESS_KEY_ID":     setString(&c.AWSAccessKeyID),
		"AWS_SECRET_ACCESS_KEY": setString(&c.AWSSecretAccessKey),
		"EMAIL_FROM":            setString(&c.EmailFrom),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("authservice", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.RedisURL, "redis", "r", c.RedisURL, "Redis connection url")
	fs.StringVarP(&c.SecretKey, "secret-key", "s", c.SecretKey, "Secret key to sign tokens")
	fs.StringVar(&c.Algorithm, "algorithm", c.Algorithm, "JWT algorithm (HS256, HS384, HS512)")
	fs.IntVar(&c.RefreshLasting, "refresh-lasting", c.RefreshLasting, "Refresh token lifetime in seconds")
	fs.IntVar(&c.AccessLasting, "access-lasting", c.AccessLasting, "Access token lifetime in seconds")
	fs.StringVar(&c.AdminSecret, "admin-secret", c.AdminSecret, "Secret to get roles other than USER")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")
	fs.StringVar(&c.AWSRegion, "aws-region", c.AWSRegion, "AWS region to send emails with SES. Emails are logged if empty")
	fs.StringVar(&c.AWSEndpoint, "aws-endpoint", c.AWSEndpoint, "Custom AWS endpoint")
	fs.StringVar(&c.AWSAccessKeyID, "aws-access-key", c.AWSAccessKeyID, "AWS access key id")
	fs.StringVar(&c.AWSSecretAccessKey, "aws-secret-key", c.AWSSecretAccessKey, "AWS secret access key")
	fs.StringVar(&c.EmailFrom, "email-from", c.EmailFrom, "Sender email address")

	return fs.Parse(args)
}

// Check required options are set
func (c *Config) Validate() error {
	var errs []error

	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is required"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.AdminSecret == "" {
		errs = append(errs, errors.New("admin secret is required"))
	}
	if c.RefreshLasting <= 0 || c.AccessLasting <= 0 {
		errs = append(errs, errors.New("token lifetime must be positive"))
	}

	return errors.Join(errs...)
}
