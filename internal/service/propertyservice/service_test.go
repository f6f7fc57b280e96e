package propertyservice

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lpms-app/lpms/internal/db"
	"github.com/lpms-app/lpms/internal/property"
)

// getTestDB returns a migrated, empty test database
func getTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration tests")
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		DELETE FROM maintenance;
		DELETE FROM unit;
		DELETE FROM property;
		DELETE FROM app_user;
	`)
	if err != nil {
		t.Fatalf("Failed to clean test database: %v", err)
	}
	return pool
}

func createOwner(t *testing.T, pool *pgxpool.Pool, sub string) string {
	t.Helper()
	var id string
	if err := pool.QueryRow(context.Background(),
		`INSERT INTO app_user (sub) VALUES ($1) RETURNING id`, sub).Scan(&id); err != nil {
		t.Fatalf("Failed to create owner: %v", err)
	}
	return id
}

func TestPropertyService_CreateUpdate(t *testing.T) {
	pool := getTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, pool, "manager-1")
	svc := NewPropertyService(pool)

	created, err := svc.CreateProperty(ctx, owner, property.Property{
		Name:             "Sunrise Apts",
		LRL:              "LR-001",
		NumberOfUnits:    1,
		WaterRatePerUnit: "25",
		Units:            []property.Unit{{Name: "A1", Floor: 1}},
	})
	if err != nil {
		t.Fatalf("CreateProperty failed: %v", err)
	}
	if created.WaterRatePerUnit != "25" {
		t.Errorf("expected rate stored as entered, got %s", created.WaterRatePerUnit)
	}
	if len(created.Units) != 1 || created.Units[0].ID == uuid.Nil {
		t.Fatalf("expected one stored unit, got %+v", created.Units)
	}

	updated, err := svc.UpdateProperty(ctx, owner, created.ID, func(p property.Property) (property.Property, error) {
		p.Name = "Sunrise Towers"
		floors := 5
		p.NumberOfFloors = &floors
		return p, nil
	})
	if err != nil {
		t.Fatalf("UpdateProperty failed: %v", err)
	}
	if updated.Name != "Sunrise Towers" || updated.Floors() != 5 {
		t.Errorf("unexpected update result: %+v", updated)
	}
	if len(updated.Units) != 1 {
		t.Errorf("units must survive an update, got %d", len(updated.Units))
	}

	list, err := svc.ListProperties(ctx, owner)
	if err != nil {
		t.Fatalf("ListProperties failed: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Sunrise Towers" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestPropertyService_RateRoundTripsAsText(t *testing.T) {
	pool := getTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, pool, "manager-3")
	svc := NewPropertyService(pool)

	created, err := svc.CreateProperty(ctx, owner, property.Property{Name: "Harbor View", LRL: "HV-1", WaterRatePerUnit: "27.00"})
	if err != nil {
		t.Fatalf("CreateProperty failed: %v", err)
	}

	for _, rate := range []string{"27.129", "12345678901", "27"} {
		updated, err := svc.UpdateProperty(ctx, owner, created.ID, func(p property.Property) (property.Property, error) {
			p.WaterRatePerUnit = rate
			return p, nil
		})
		if err != nil {
			t.Fatalf("UpdateProperty(%s) failed: %v", rate, err)
		}
		got, err := svc.GetProperty(ctx, owner, created.ID)
		if err != nil {
			t.Fatalf("GetProperty failed: %v", err)
		}
		if updated.WaterRatePerUnit != rate || got.WaterRatePerUnit != rate {
			t.Errorf("expected %q back, got %q (update) and %q (get)", rate, updated.WaterRatePerUnit, got.WaterRatePerUnit)
		}
	}

	_, err = svc.UpdateProperty(ctx, owner, created.ID, func(p property.Property) (property.Property, error) {
		p.WaterRatePerUnit = "27."
		return p, nil
	})
	if err == nil {
		t.Error("expected the store to reject a malformed rate")
	}
}

func TestPropertyService_OwnerScoping(t *testing.T) {
	pool := getTestDB(t)
	ctx := context.Background()
	alice := createOwner(t, pool, "alice")
	bob := createOwner(t, pool, "bob")
	svc := NewPropertyService(pool)

	p, err := svc.CreateProperty(ctx, alice, property.Property{Name: "Alice Court", LRL: "AC-1", WaterRatePerUnit: "1"})
	if err != nil {
		t.Fatalf("CreateProperty failed: %v", err)
	}

	if _, err := svc.GetProperty(ctx, bob, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another owner, got %v", err)
	}
	_, err = svc.UpdateProperty(ctx, bob, p.ID, func(p property.Property) (property.Property, error) { return p, nil })
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on update by another owner, got %v", err)
	}
}

func TestMaintenanceService(t *testing.T) {
	pool := getTestDB(t)
	ctx := context.Background()
	owner := createOwner(t, pool, "manager-2")
	props := NewPropertyService(pool)
	svc := NewMaintenanceService(pool)

	p, err := props.CreateProperty(ctx, owner, property.Property{
		Name: "Lakeview", LRL: "LV-9", WaterRatePerUnit: "10",
		Units: []property.Unit{{Name: "B2"}},
	})
	if err != nil {
		t.Fatalf("CreateProperty failed: %v", err)
	}

	for _, date := range []string{"2024-01-10", "2024-03-05"} {
		_, err := svc.CreateMaintenance(ctx, owner, property.Maintenance{
			PropertyID: p.ID, UnitID: p.Units[0].ID,
			Description: "Fix pump", Cost: "800.5", Date: date,
		})
		if err != nil {
			t.Fatalf("CreateMaintenance failed: %v", err)
		}
	}

	list, err := svc.ListMaintenances(ctx, owner, p.ID)
	if err != nil {
		t.Fatalf("ListMaintenances failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}
	if list[0].Date != "2024-03-05" || list[0].UnitName != "B2" || list[0].Cost != "800.5" {
		t.Errorf("unexpected first record: %+v", list[0])
	}

	_, err = svc.CreateMaintenance(ctx, owner, property.Maintenance{
		PropertyID: p.ID, UnitID: uuid.New(), Description: "Paint", Cost: "1", Date: "2024-01-01",
	})
	if !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("expected ErrUnknownUnit, got %v", err)
	}

	if _, err := svc.ListMaintenances(ctx, owner, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
