package services_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"apotek/internal/database"
	"apotek/internal/models"
	"apotek/internal/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

// newStore opens a fresh in-memory database private to the test.
func newStore(t *testing.T) *repositories.GORMStore {
	t.Helper()
	store, _ := newStoreDB(t)
	return store
}

func newStoreDB(t *testing.T) (*repositories.GORMStore, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenInMemory(name)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewGORMStore(db), db
}

func seedUser(t *testing.T, store repositories.Store, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash"}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func seedMedicine(t *testing.T, store repositories.Store, m models.Medicine) *models.Medicine {
	t.Helper()
	if m.Name == "" {
		m.Name = "Paracetamol"
	}
	require.NoError(t, store.Medicines().Create(context.Background(), &m))
	return &m
}

func seedPrescription(t *testing.T, store repositories.Store, userID string, verified bool) *models.Prescription {
	t.Helper()
	p := &models.Prescription{UserID: userID, ImageURL: "rx.jpg", IsVerified: verified}
	require.NoError(t, store.Prescriptions().Create(context.Background(), p))
	return p
}

func seedPharmacy(t *testing.T, store repositories.Store, name string, lat, lon *float64) *models.Pharmacy {
	t.Helper()
	p := &models.Pharmacy{Name: name, Address: name + " street", Latitude: lat, Longitude: lon, IsActive: true}
	require.NoError(t, store.Providers().CreatePharmacy(context.Background(), p))
	return p
}

func seedPartner(t *testing.T, store repositories.Store, name string, lat, lon *float64) *models.DeliveryPartner {
	t.Helper()
	p := &models.DeliveryPartner{Name: name, Latitude: lat, Longitude: lon, IsAvailable: true, Status: models.PartnerAvailable}
	require.NoError(t, store.Providers().CreatePartner(context.Background(), p))
	return p
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *fakePublisher) Publish(routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, routingKey)
	return nil
}

func (p *fakePublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

type notification struct {
	UserID, Title, Body string
}

// fakeNotifier records notifications synchronously.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *fakeNotifier) NotifyUser(userID, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{userID, title, body})
}

func (n *fakeNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.sent...)
}
