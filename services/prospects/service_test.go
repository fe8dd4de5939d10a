package prospects

import (
	"context"
	"errors"
	"testing"

	"slotwise/internal/database"
	"slotwise/models"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.NewDB(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	return NewService(database.NewProspectRepository(db))
}

func TestCreateValidates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "", Email: "a@x.com"})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("missing name: err = %v, want ErrValidation", err)
	}
	_, err = svc.Create(ctx, Input{Name: "Ada", Email: "not-an-email"})
	if !errors.Is(err, models.ErrValidation) {
		t.Errorf("bad email: err = %v, want ErrValidation", err)
	}
}

func TestCRUDRoundTrip(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: " Ada ", Email: "ada@x.com", Company: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.Name != "Ada" {
		t.Fatalf("unexpected prospect: %+v", created)
	}

	updated, err := svc.Update(ctx, created.ID, Input{Name: "Ada L.", Email: "ada@x.com", Notes: "warm lead"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Ada L." || updated.Notes != "warm lead" {
		t.Errorf("update not applied: %+v", updated)
	}

	list, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d prospects, want 1", len(list))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestTouchLastMessage(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Bo", Email: "bo@x.com"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	svc.TouchLastMessage(ctx, "BO@X.COM")

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.LastMessageAt.IsZero() {
		t.Error("LastMessageAt not set")
	}
}
