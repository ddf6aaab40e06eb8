package services

import (
	"context"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"edu-network/internal/config"
	"edu-network/internal/events"
	"edu-network/internal/models"
	"edu-network/internal/storage"
)

// fixture wires every service against a fresh sqlite database.
type fixture struct {
	ctx    context.Context
	db     *gorm.DB
	events *events.Recorder

	users    storage.UserRepository
	privacyR storage.PrivacyRepository
	requests storage.ConnectionRequestRepository
	conns    storage.ConnectionRepository
	follows  storage.FollowRepository

	privacy       PrivacyService
	network       NetworkService
	jobs          JobService
	notifications NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := storage.InitDB(config.DatabaseConfig{
		Type:     "sqlite",
		DBName:   filepath.Join(t.TempDir(), "test.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		t.Fatalf("AutoMigrateTables: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	f := &fixture{
		ctx:      context.Background(),
		db:       db,
		events:   events.NewRecorder(64),
		users:    storage.NewGormUserRepository(db),
		privacyR: storage.NewGormPrivacyRepository(db),
		requests: storage.NewGormConnectionRequestRepository(db),
		conns:    storage.NewGormConnectionRepository(db),
		follows:  storage.NewGormFollowRepository(db),
	}
	f.privacy = NewPrivacyService(f.users, f.privacyR, f.conns)
	f.network = NewNetworkService(db, f.users, f.requests, f.conns, f.follows, f.privacy, f.events)
	f.jobs = NewJobService(storage.NewGormJobRepository(db), storage.NewGormEducatorProfileRepository(db), 20)
	f.notifications = NewNotificationService(storage.NewGormNotificationRepository(db))
	return f
}

func (f *fixture) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:     username,
		Nickname:     username,
		Email:        username + "@example.com",
		Phone:        "555-0100",
		PasswordHash: "x",
	}
	if err := f.users.Create(f.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

// connect drives the normal request/accept flow between a and b.
func (f *fixture) connect(t *testing.T, a, b *models.User) {
	t.Helper()
	res, err := f.network.SendConnectionRequest(f.ctx, a.ID, b.ID, "")
	if err != nil {
		t.Fatalf("send %d->%d: %v", a.ID, b.ID, err)
	}
	if _, err := f.network.ActOnRequest(f.ctx, b.ID, res.Request.ID, models.RequestActionAccept); err != nil {
		t.Fatalf("accept %d: %v", res.Request.ID, err)
	}
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) setPrivacy(t *testing.T, user *models.User, patch PrivacyPatch) {
	t.Helper()
	if _, err := f.privacy.UpdateSettings(f.ctx, user.ID, user.ID, patch); err != nil {
		t.Fatalf("update privacy: %v", err)
	}
}

func level(v models.VisibilityLevel) *models.VisibilityLevel { return &v }
