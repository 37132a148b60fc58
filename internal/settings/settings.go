package settings

import (
	"bufio"
	"fmt"
	"log"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"
)

var Settings *AppSettings

func NewSettings() *AppSettings {
	settings := AppSettings{
		SessionExpires:    time.Duration(30 * 24 * time.Hour),
		Domain:            getEnvOrDefault("TEXTPIPE_DOMAIN", "localhost"),
		Port:              getEnvOrDefault("TEXTPIPE_PORT", ":8080"),
		SQLiteDatabase:    getEnvOrDefault("TEXTPIPE_DB_PATH", "file:.///db.sqlite"),
		PostgresDSN:       os.Getenv("TEXTPIPE_POSTGRES_DSN"),
		AWSRegion:         getEnvOrDefault("TEXTPIPE_AWS_REGION", "us-east-1"),
		ArtifactBucket:    os.Getenv("TEXTPIPE_ARTIFACT_BUCKET"),
		PipelineRoleARN:   os.Getenv("TEXTPIPE_PIPELINE_ROLE_ARN"),
		DataAccessRoleARN: os.Getenv("TEXTPIPE_DATA_ACCESS_ROLE_ARN"),
	}
	if !strings.HasPrefix(settings.Port, ":") {
		settings.Port = ":" + settings.Port
	}
	return &settings
}

func getEnvOrDefault(key, defaultValue string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	return value
}

type AppSettings struct {
	SQLiteDatabase string
	// When set, execution history lives in a shared postgres database
	// instead of the local sqlite file.
	PostgresDSN    string
	Domain         string
	Port           string
	SessionExpires time.Duration

	AWSRegion string
	// Bucket holding datasets, step handoff files and profiler output.
	ArtifactBucket string
	// Execution role passed to the managed pipeline service.
	PipelineRoleARN string
	// Role Comprehend assumes to read training data from S3.
	DataAccessRoleARN string
}

func (as *AppSettings) BaseURL() string {
	if as.Domain == "localhost" {
		return fmt.Sprintf("http://%s%s", as.Domain, as.Port)
	} else {
		return fmt.Sprintf("https://%s", as.Domain)
	}
}

func (as *AppSettings) SQLiteDbString(readonly bool) string {
	params := make(url.Values)
	params.Add("_journal_mode", "WAL")
	params.Add("_busy_timeout", "5000")
	params.Add("_synchronous", "NORMAL")
	params.Add("_cache_size", "-20000")
	params.Add("_foreign_keys", "ON")
	if readonly {
		params.Add("mode", "ro")
	} else {
		params.Add("_txlock", "IMMEDIATE")
		params.Add("mode", "rwc")
	}

	return as.SQLiteDatabase + "?" + params.Encode()
}

func ReadDotenv(path string) {
	re := regexp.MustCompile(`^[^0-9][A-Z0-9_]+=.+$`)
	f, err := os.Open(path)
	if err != nil {
		log.Fatal("err opening dotenv: ", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) > 0 && line[0] != '#' && re.Match(line) {
			split := strings.Split(string(line), "=")
			name := strings.TrimSpace(split[0])
			value := strings.TrimSpace(split[1])
			value = strings.Trim(value, `"`)
			os.Setenv(name, value)
		}
	}
}
