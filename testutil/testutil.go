// Package testutil provides an in-memory database and fakes for tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"spacrm-backend/models"
	"spacrm-backend/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	utils.PasswordCost = bcrypt.MinCost

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql DB: %v", err)
	}
	// A single connection keeps SQLite from reporting table locks between
	// pooled connections sharing the cache.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Clock is a settable clock.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock(t time.Time) *Clock { return &Clock{t: t} }

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type SentSMS struct {
	To   string
	Body string
}

// FakeSMS records messages instead of sending them.
type FakeSMS struct {
	mu   sync.Mutex
	Sent []SentSMS
	Err  error
}

func (f *FakeSMS) Send(_ context.Context, to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, SentSMS{To: to, Body: body})
	return nil
}

func (f *FakeSMS) Last() (SentSMS, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		return SentSMS{}, false
	}
	return f.Sent[len(f.Sent)-1], true
}

// SeedAccount inserts an active account with the given role.
func SeedAccount(t testing.TB, db *gorm.DB, email, role string) *models.Account {
	t.Helper()
	acc := &models.Account{Email: email, Password: "password123", Role: role, IsActive: true}
	if err := db.Create(acc).Error; err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc
}
