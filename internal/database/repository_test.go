package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"slotwise/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "slotwise.db"))
	if err != nil {
		t.Fatalf("NewDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	return db
}

func TestRunMigrations_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := RunMigrations(db); err != nil {
		t.Fatalf("second RunMigrations failed: %v", err)
	}
}

func TestAccountRepository_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	acct := models.Account{
		ID:           "acct-1",
		GoogleID:     "google-123",
		Email:        "alex@example.com",
		Name:         "Alex",
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenExpiry:  now.Add(time.Hour),
		CreatedAt:    now,
		LastLogin:    now,
	}
	if err := repo.Insert(ctx, acct); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.GetByGoogleID(ctx, "google-123")
	if err != nil {
		t.Fatalf("GetByGoogleID failed: %v", err)
	}
	if got.Email != "alex@example.com" || got.AccessToken != "at" || got.RefreshToken != "rt" {
		t.Errorf("unexpected account: %+v", got)
	}
	if !got.HasCalendarGrant() {
		t.Error("expected calendar grant")
	}
}

func TestAccountRepository_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAccountRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	acct := models.Account{ID: "acct-1", GoogleID: "g1", Email: "a@example.com", CreatedAt: now, LastLogin: now}
	if err := repo.Insert(ctx, acct); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	acct.AccessToken = "new-at"
	acct.RefreshToken = "new-rt"
	acct.LastLogin = now.Add(time.Minute)
	if err := repo.Update(ctx, acct); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repo.Get(ctx, "acct-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.AccessToken != "new-at" || got.RefreshToken != "new-rt" {
		t.Errorf("tokens not updated: %+v", got)
	}
}

func TestProspectRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProspectRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	p := models.Prospect{
		ID:            "p-1",
		Name:          "Jordan",
		Email:         "jordan@example.com",
		Company:       "Acme",
		CreatedAt:     now,
		LastMessageAt: now,
	}
	if err := repo.Insert(ctx, p); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := repo.Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "Jordan" || got.Company != "Acme" {
		t.Errorf("unexpected prospect: %+v", got)
	}

	got.Notes = "met at conference"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 || list[0].Notes != "met at conference" {
		t.Errorf("unexpected list: %+v", list)
	}

	if err := repo.Delete(ctx, "p-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "p-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "p-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
