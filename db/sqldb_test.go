package db_test

import (
	"log"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"github.com/wishstox/wishstox-backend/db"
	"github.com/wishstox/wishstox-backend/models"
)

// Global database object for tests.
var database *db.SQLDatabase

// Connects to local test db.
func initTestDb() *db.SQLDatabase {
	cfg, err := db.LoadEnvironmentVariables()
	if err != nil {
		log.Fatal(err)
	}
	database, err := db.InitSQLDatabase(cfg)
	if err != nil {
		log.Fatal(err)
	}
	return database
}

func TestMain(m *testing.M) {
	godotenv.Overload("../.env.test")
	database = initTestDb()
	code := m.Run()
	err := database.ClearTables()
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

////////////////////////////////
// ***** Database tests ***** //
////////////////////////////////

func TestAddRegistrant(t *testing.T) {
	database.ClearTables()
	err := database.AddRegistrant(models.Registrant{Name: "Ann", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("AddRegistrant failed: %v\n", err)
	}
	registrants, err := database.GetRegistrants()
	if err != nil {
		t.Fatalf("GetRegistrants failed: %v\n", err)
	}
	if len(registrants) != 1 {
		t.Fatalf("expected 1 registrant, got %d", len(registrants))
	}
	if registrants[0].Email != "ann@example.com" || registrants[0].Name != "Ann" {
		t.Errorf("unexpected registrant data: %+v", registrants[0])
	}
	if registrants[0].CreatedAt.IsZero() {
		t.Errorf("store should assign created_at")
	}
}

func TestAddRegistrantDuplicateIgnored(t *testing.T) {
	database.ClearTables()
	if err := database.AddRegistrant(models.Registrant{Email: "dup@example.com"}); err != nil {
		t.Fatalf("AddRegistrant failed: %v\n", err)
	}
	// A second insert with the same email should neither error nor add a row.
	if err := database.AddRegistrant(models.Registrant{Name: "Again", Email: "dup@example.com"}); err != nil {
		t.Fatalf("duplicate AddRegistrant should not error: %v\n", err)
	}
	count, err := database.CountRegistrants()
	if err != nil {
		t.Fatalf("CountRegistrants failed: %v\n", err)
	}
	if count != 1 {
		t.Errorf("expected 1 registrant after duplicate insert, got %d", count)
	}
}

func TestGetRegistrantsOrdered(t *testing.T) {
	database.ClearTables()
	emails := []string{"a@x.com", "b@x.com", "c@x.com"}
	for _, email := range emails {
		if err := database.AddRegistrant(models.Registrant{Email: email}); err != nil {
			t.Fatalf("AddRegistrant failed: %v\n", err)
		}
	}
	registrants, err := database.GetRegistrants()
	if err != nil {
		t.Fatalf("GetRegistrants failed: %v\n", err)
	}
	if len(registrants) != 3 {
		t.Fatalf("expected 3 registrants, got %d", len(registrants))
	}
	for i, email := range emails {
		if registrants[i].Email != email {
			t.Errorf("position %d: expected %s, got %s", i, email, registrants[i].Email)
		}
	}
	if models.SpotOf(registrants, "b@x.com") != 2 {
		t.Errorf("b@x.com should be spot 2")
	}
}

func TestCountRegistrants(t *testing.T) {
	database.ClearTables()
	count, err := database.CountRegistrants()
	if err != nil {
		t.Fatalf("CountRegistrants failed: %v\n", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d", count)
	}
	database.AddRegistrant(models.Registrant{Email: "one@x.com"})
	database.AddRegistrant(models.Registrant{Email: "two@x.com"})
	count, err = database.CountRegistrants()
	if err != nil {
		t.Fatalf("CountRegistrants failed: %v\n", err)
	}
	if count != 2 {
		t.Errorf("expected 2, got %d", count)
	}
}

func TestGetDailySignups(t *testing.T) {
	database.ClearTables()
	database.AddRegistrant(models.Registrant{Email: "one@x.com"})
	database.AddRegistrant(models.Registrant{Email: "two@x.com"})
	series, err := database.GetDailySignups()
	if err != nil {
		t.Fatalf("GetDailySignups failed: %v\n", err)
	}
	if len(series) != 1 {
		t.Fatalf("expected a single day bucket, got %d", len(series))
	}
	for _, total := range series {
		if total != 2 {
			t.Errorf("expected 2 signups today, got %f", total)
		}
	}
}

func TestAddContactMessage(t *testing.T) {
	database.ClearTables()
	err := database.AddContactMessage(models.ContactMessage{
		Name: "Ann", Email: "ann@example.com", Message: "When do you launch?",
	})
	if err != nil {
		t.Fatalf("AddContactMessage failed: %v\n", err)
	}
}

func TestSuppressedEmails(t *testing.T) {
	database.ClearTables()
	suppressed, err := database.IsSuppressedEmail("bounce@example.com")
	if err != nil {
		t.Fatalf("IsSuppressedEmail failed: %v\n", err)
	}
	if suppressed {
		t.Errorf("no email should be suppressed yet")
	}
	err = database.AddSuppressedEmail("bounce@example.com", "bounce", "2017-07-21T18:47:13.498Z")
	if err != nil {
		t.Fatalf("AddSuppressedEmail failed: %v\n", err)
	}
	suppressed, err = database.IsSuppressedEmail("bounce@example.com")
	if err != nil {
		t.Fatalf("IsSuppressedEmail failed: %v\n", err)
	}
	if !suppressed {
		t.Errorf("bounce@example.com should be suppressed")
	}
}
