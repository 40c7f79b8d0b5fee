package db

import (
	"sync"
	"time"

	"github.com/wishstox/wishstox-backend/models"
)

// MemDatabase is a straw-man in-memory database (for testing!)
type MemDatabase struct {
	mu          sync.Mutex
	registrants []models.Registrant
	contacts    []models.ContactMessage
	suppressed  map[string]bool
	nextID      int64
}

// InitMemDatabase returns a fresh empty MemDatabase.
func InitMemDatabase() *MemDatabase {
	return &MemDatabase{
		registrants: []models.Registrant{},
		contacts:    []models.ContactMessage{},
		suppressed:  make(map[string]bool),
		nextID:      1,
	}
}

func (db *MemDatabase) AddRegistrant(registrant models.Registrant) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, existing := range db.registrants {
		if existing.Email == registrant.Email {
			// Mirrors ON CONFLICT DO NOTHING.
			return nil
		}
	}
	registrant.ID = db.nextID
	registrant.CreatedAt = time.Now().UTC()
	db.nextID++
	db.registrants = append(db.registrants, registrant)
	return nil
}

func (db *MemDatabase) GetRegistrants() ([]models.Registrant, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	registrants := make([]models.Registrant, len(db.registrants))
	copy(registrants, db.registrants)
	return registrants, nil
}

func (db *MemDatabase) CountRegistrants() (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.registrants), nil
}

func (db *MemDatabase) GetDailySignups() (models.TimeSeries, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	series := models.TimeSeries{}
	for _, registrant := range db.registrants {
		day := registrant.CreatedAt.UTC().Truncate(24 * time.Hour)
		series[day]++
	}
	return series, nil
}

func (db *MemDatabase) AddContactMessage(msg models.ContactMessage) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	msg.ID = int64(len(db.contacts) + 1)
	msg.CreatedAt = time.Now().UTC()
	db.contacts = append(db.contacts, msg)
	return nil
}

// ContactMessages returns all stored contact messages, for test assertions.
func (db *MemDatabase) ContactMessages() []models.ContactMessage {
	db.mu.Lock()
	defer db.mu.Unlock()
	contacts := make([]models.ContactMessage, len(db.contacts))
	copy(contacts, db.contacts)
	return contacts
}

func (db *MemDatabase) AddSuppressedEmail(email string, reason string, timestamp string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.suppressed[email] = true
	return nil
}

func (db *MemDatabase) IsSuppressedEmail(email string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.suppressed[email], nil
}

func (db *MemDatabase) ClearTables() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.registrants = []models.Registrant{}
	db.contacts = []models.ContactMessage{}
	db.suppressed = make(map[string]bool)
	db.nextID = 1
	return nil
}
