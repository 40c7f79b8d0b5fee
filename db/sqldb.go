package db

import (
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"time"

	// Imports postgresql driver for database/sql
	_ "github.com/lib/pq"
	"gopkg.in/gorp.v2"

	"github.com/wishstox/wishstox-backend/models"
)

// SQLDatabase is a Database interface backed by postgresql.
type SQLDatabase struct {
	cfg  Config // Configuration to define the DB connection.
	conn *gorp.DbMap
}

func getConnectionString(cfg Config) string {
	connectionString := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		url.PathEscape(cfg.DbUsername),
		url.PathEscape(cfg.DbPass),
		url.PathEscape(cfg.DbHost),
		url.PathEscape(cfg.DbName))
	return connectionString
}

// InitSQLDatabase creates a DB connection based on information in a Config, and
// returns a pointer the resulting SQLDatabase object. If connection fails,
// returns an error.
func InitSQLDatabase(cfg Config) (*SQLDatabase, error) {
	connectionString := getConnectionString(cfg)
	log.Printf("Connecting to Postgres DB ... \n")
	conn, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, err
	}
	dbmap := &gorp.DbMap{Db: conn, Dialect: gorp.PostgresDialect{}}
	dbmap.AddTableWithName(models.Registrant{}, "registrants").SetKeys(true, "ID")
	dbmap.AddTableWithName(models.ContactMessage{}, "contact_messages").SetKeys(true, "ID")
	return &SQLDatabase{cfg: cfg, conn: dbmap}, nil
}

// REGISTRANT DB FUNCTIONS

// AddRegistrant inserts a waiting-list signup. The registrants table carries a
// unique index on email; a conflicting insert is dropped by the store rather
// than reported, so resubmitting an email never creates a second ranked row
// and never errors. id and created_at are assigned by the store.
func (db *SQLDatabase) AddRegistrant(registrant models.Registrant) error {
	_, err := db.conn.Exec(
		"INSERT INTO registrants(name, email) VALUES($1, $2) "+
			"ON CONFLICT (email) DO NOTHING",
		registrant.Name, registrant.Email)
	return err
}

// GetRegistrants retrieves every waiting-list signup, oldest first. The
// ordering defines each registrant's spot.
func (db SQLDatabase) GetRegistrants() ([]models.Registrant, error) {
	registrantPtrs := []*models.Registrant{}
	_, err := db.conn.Select(&registrantPtrs,
		"SELECT id, name, email, created_at FROM registrants ORDER BY created_at ASC, id ASC")
	registrants := []models.Registrant{}
	for _, registrant := range registrantPtrs {
		registrants = append(registrants, *registrant)
	}
	return registrants, err
}

// CountRegistrants retrieves the total number of waiting-list signups.
func (db SQLDatabase) CountRegistrants() (int, error) {
	count, err := db.conn.SelectInt("SELECT COUNT(*) FROM registrants")
	return int(count), err
}

// GetDailySignups returns the number of signups per UTC day.
func (db SQLDatabase) GetDailySignups() (models.TimeSeries, error) {
	type signupDay struct {
		Day   time.Time `db:"day"`
		Total int64     `db:"total"`
	}
	days := []*signupDay{}
	_, err := db.conn.Select(&days,
		"SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, COUNT(*) AS total "+
			"FROM registrants GROUP BY day ORDER BY day ASC")
	series := models.TimeSeries{}
	for _, day := range days {
		series[day.Day.UTC()] = float64(day.Total)
	}
	return series, err
}

// CONTACT DB FUNCTIONS

// AddContactMessage inserts a contact-form submission.
func (db *SQLDatabase) AddContactMessage(msg models.ContactMessage) error {
	_, err := db.conn.Exec(
		"INSERT INTO contact_messages(name, email, message) VALUES($1, $2, $3)",
		msg.Name, msg.Email, msg.Message)
	return err
}

// EMAIL SUPPRESSION DB FUNCTIONS

// AddSuppressedEmail adds a bounce or complaint notification to the suppression list.
func (db SQLDatabase) AddSuppressedEmail(email string, reason string, timestamp string) error {
	_, err := db.conn.Exec(
		"INSERT INTO suppressed_emails(email, reason, timestamp) VALUES($1, $2, $3)",
		email, reason, timestamp)
	return err
}

// IsSuppressedEmail returns true iff we've suppressed the passed email address for sending.
func (db SQLDatabase) IsSuppressedEmail(email string) (bool, error) {
	count, err := db.conn.SelectInt("SELECT COUNT(*) FROM suppressed_emails WHERE email=$1", email)
	return count > 0, err
}

func tryExec(database SQLDatabase, commands []string) error {
	for _, command := range commands {
		if _, err := database.conn.Exec(command); err != nil {
			return fmt.Errorf("command failed: %s\nwith error: %v",
				command, err.Error())
		}
	}
	return nil
}

// ClearTables nukes all the tables. ** Should only be used during testing **
func (db SQLDatabase) ClearTables() error {
	return tryExec(db, []string{
		"DELETE FROM registrants",
		"DELETE FROM contact_messages",
		"DELETE FROM suppressed_emails",
		"ALTER SEQUENCE registrants_id_seq RESTART WITH 1",
		"ALTER SEQUENCE contact_messages_id_seq RESTART WITH 1",
	})
}
