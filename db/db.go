package db

import (
	"flag"
	"os"

	"github.com/wishstox/wishstox-backend/models"
)

// Database wraps the persistent store. Slightly more limited than CRUD for
// each of the tables: registrants are insert-only, contact messages are
// insert-only, and the suppression list is append-and-check.
type Database interface {
	// Inserts a registrant. A duplicate email is silently ignored; the
	// store's unique index is the only arbiter of which insert wins.
	AddRegistrant(models.Registrant) error
	// Retrieves all registrants ordered by creation time, oldest first.
	GetRegistrants() ([]models.Registrant, error)
	// Retrieves the total number of registrants.
	CountRegistrants() (int, error)
	// Retrieves registrant signups grouped by UTC day.
	GetDailySignups() (models.TimeSeries, error)
	// Inserts a contact-form message.
	AddContactMessage(models.ContactMessage) error
	// Adds a bounce or complaint notification to the suppression list.
	AddSuppressedEmail(email string, reason string, timestamp string) error
	// Returns true if we've suppressed sending to an email address.
	IsSuppressedEmail(string) (bool, error)
	ClearTables() error
}

// Config is a configuration struct for a Database.
type Config struct {
	Port       string
	DbHost     string
	DbName     string
	DbUsername string
	DbPass     string
}

// Default configuration values. Can be overwritten by env vars of the same name.
var configDefaults = map[string]string{
	"PORT":         "8080",
	"DB_HOST":      "localhost",
	"DB_NAME":      "wishstox",
	"DB_USERNAME":  "postgres",
	"DB_PASSWORD":  "postgres",
	"TEST_DB_NAME": "wishstox_test",
}

func getEnvOrDefault(varName string) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		envVar = configDefaults[varName]
	}
	return envVar
}

// LoadEnvironmentVariables loads relevant environment variables into a
// Config object.
func LoadEnvironmentVariables() (Config, error) {
	config := Config{
		Port:       getEnvOrDefault("PORT"),
		DbHost:     getEnvOrDefault("DB_HOST"),
		DbName:     getEnvOrDefault("DB_NAME"),
		DbUsername: getEnvOrDefault("DB_USERNAME"),
		DbPass:     getEnvOrDefault("DB_PASSWORD"),
	}
	if flag.Lookup("test.v") != nil {
		// Avoid accidentally wiping the default db during tests.
		config.DbName = getEnvOrDefault("TEST_DB_NAME")
	}
	return config, nil
}
