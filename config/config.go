package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Roster source types
const (
	// RosterTypeSheets reads the roster from a Google Sheets spreadsheet
	RosterTypeSheets = "sheets"

	// RosterTypeCSV reads the roster from a local CSV file
	RosterTypeCSV = "csv"
)

// Config holds application configuration
type Config struct {
	// HTTPAddr is the HTTP server's bind address
	HTTPAddr string `default:":5000" split_words:"true" required:"true"`

	// {{{1 Storage
	// StoreType selects the submission store backend: fs, s3 or gcs
	StoreType string `default:"fs" split_words:"true" required:"true"`

	// StoreBasePath is the path in the store under which submission folders are created
	StoreBasePath string `default:"submissions" split_words:"true" required:"true"`

	// DataDir is the root directory of the fs store
	DataDir string `default:"data" split_words:"true"`

	// S3Bucket is the bucket of the s3 store
	S3Bucket string `envconfig:"S3_BUCKET"`

	// S3Region of the bucket
	S3Region string `envconfig:"S3_REGION"`

	// S3Endpoint overrides the S3 API endpoint, for S3 compatible services
	S3Endpoint string `envconfig:"S3_ENDPOINT"`

	// GCSBucket is the bucket of the gcs store
	GCSBucket string `envconfig:"GCS_BUCKET"`

	// {{{1 Roster
	// RosterType selects where the roster is read from: sheets or csv
	RosterType string `default:"sheets" split_words:"true" required:"true"`

	// SheetsSpreadsheetID is the ID of the roster spreadsheet
	SheetsSpreadsheetID string `split_words:"true"`

	// SheetsWorksheet is the name of the worksheet holding the roster
	SheetsWorksheet string `default:"Sheet1" split_words:"true"`

	// SheetsCredentialsPath is a Google service account key file, application
	// default credentials are used if empty
	SheetsCredentialsPath string `split_words:"true"`

	// RosterCSVPath is the roster file of the csv roster type
	RosterCSVPath string `envconfig:"ROSTER_CSV_PATH"`

	// RosterIdentityColumn is the header of the roster column holding application IDs
	RosterIdentityColumn string `default:"Application ID" split_words:"true"`

	// RosterDecisionColumn is the header of the roster column holding decisions
	RosterDecisionColumn string `default:"Decision" split_words:"true"`

	// RosterTitleColumn is the header of the roster column holding paper titles
	RosterTitleColumn string `default:"Title" split_words:"true"`

	// RosterRequestsPerMinute limits reads of the roster spreadsheet
	RosterRequestsPerMinute int `default:"60" split_words:"true"`

	// {{{1 Submissions
	// TmpDir holds summary documents while they are uploaded, the system temporary
	// directory if empty
	TmpDir string `split_words:"true"`

	// RemoteTimeout bounds each call to the roster or store
	RemoteTimeout time.Duration `default:"30s" split_words:"true"`

	// MaxUploadBytes is the size of a submission request held in memory, larger
	// file parts are buffered on disk
	MaxUploadBytes int64 `default:"33554432" split_words:"true"`

	// WriteManifest enables writing a manifest.json completion marker into each
	// submission folder
	WriteManifest bool `default:"false" split_words:"true"`

	// SummaryFontPath is a TrueType font summary documents are set in, a built
	// in font without CJK glyphs if empty
	SummaryFontPath string `split_words:"true"`

	// SummaryBoldFontPath is the bold face of SummaryFontPath, optional
	SummaryBoldFontPath string `split_words:"true"`

	// {{{1 Locking
	// RedisAddr of the Redis server used to lock submissions across replicas. Locks
	// are held in process if empty.
	RedisAddr string `split_words:"true"`

	// RedisPassword for the Redis server
	RedisPassword string `split_words:"true"`

	// RedisDB is the Redis database number
	RedisDB int `envconfig:"REDIS_DB" default:"0"`

	// LockTTL is how long a Redis submission lock lasts if never released
	LockTTL time.Duration `default:"5m" split_words:"true"`

	// {{{1 Records
	// DbHost is the MongoDB server host, submission records are not saved if empty
	DbHost string `split_words:"true"`

	// DbPort is the MongoDB server port
	DbPort int `default:"27017" split_words:"true"`

	// DbUser is the MongoDB user
	DbUser string `default:"paper-submission-dev" split_words:"true"`

	// DbPassword is the MongoDB password
	DbPassword string `default:"secretpassword" split_words:"true"`

	// DbName is the database to connect to inside MongoDB
	DbName string `default:"paper-submission-api-dev" split_words:"true"`

	// {{{1 Notifications
	// NotifyWebhookURL receives a POST for every completed submission, disabled if empty
	NotifyWebhookURL string `split_words:"true"`

	// NotifyWebhookSecret is sent in the Authorization header of notifications
	NotifyWebhookSecret string `split_words:"true"`

	// {{{1 HTTP
	// AllowedOrigin is sent in the Access-Control-Allow-Origin header
	AllowedOrigin string `default:"*" split_words:"true"`
}

// NewConfig loads configuration values from environment variables
func NewConfig() (*Config, error) {
	var config Config

	if err := envconfig.Process("app", &config); err != nil {
		return nil, fmt.Errorf("error loading values from environment variables: %s",
			err.Error())
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values which are only required for some backends
func (c Config) Validate() error {
	problems := []string{}

	switch c.RosterType {
	case RosterTypeSheets:
		if len(c.SheetsSpreadsheetID) == 0 {
			problems = append(problems, "APP_SHEETS_SPREADSHEET_ID is required for "+
				"the sheets roster")
		}
	case RosterTypeCSV:
		if len(c.RosterCSVPath) == 0 {
			problems = append(problems, "APP_ROSTER_CSV_PATH is required for the csv roster")
		}
	default:
		problems = append(problems, fmt.Sprintf("APP_ROSTER_TYPE must be %s or %s, was: %s",
			RosterTypeSheets, RosterTypeCSV, c.RosterType))
	}

	if c.RosterRequestsPerMinute <= 0 {
		problems = append(problems, "APP_ROSTER_REQUESTS_PER_MINUTE must be positive")
	}

	if c.MaxUploadBytes <= 0 {
		problems = append(problems, "APP_MAX_UPLOAD_BYTES must be positive")
	}

	if len(c.NotifyWebhookURL) > 0 {
		u, err := url.Parse(c.NotifyWebhookURL)
		if err != nil || len(u.Scheme) == 0 || len(u.Host) == 0 {
			problems = append(problems, "APP_NOTIFY_WEBHOOK_URL must be an absolute URL")
		}
	}

	if len(c.SummaryBoldFontPath) > 0 && len(c.SummaryFontPath) == 0 {
		problems = append(problems, "APP_SUMMARY_BOLD_FONT_PATH requires "+
			"APP_SUMMARY_FONT_PATH")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, ", "))
	}

	return nil
}

// String returns a log safe version of Config in string form. Redacts any sensative fields.
func (c Config) String() (string, error) {
	if c.DbPassword != "" {
		c.DbPassword = "REDACTED_NOT_EMPTY"
	}

	if c.RedisPassword != "" {
		c.RedisPassword = "REDACTED_NOT_EMPTY"
	}

	if c.NotifyWebhookSecret != "" {
		c.NotifyWebhookSecret = "REDACTED_NOT_EMPTY"
	}

	configBytes, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to convert configuration into JSON: %s", err.Error())
	}

	return string(configBytes), nil
}
