package models

import (
	"context"
	"errors"
	"testing"
)

func seedClient(t *testing.T, repo *MemoryRepository) Client {
	t.Helper()
	client := Client{
		FirstName:   "John",
		LastName:    "Doe",
		Email:       "john@doe.com",
		DateOfBirth: "01.01.2000",
	}
	if err := repo.CreateClient(context.Background(), &client); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}
	return client
}

func TestMemoryClientCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	client := seedClient(t, repo)
	if client.ID == 0 {
		t.Fatal("expected an assigned id after create")
	}

	got, err := repo.GetClientByID(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetClientByID failed: %v", err)
	}
	if got.Email != "john@doe.com" {
		t.Errorf("unexpected client: %+v", got)
	}

	got.Email = "john@new.com"
	if err := repo.UpdateClient(ctx, got); err != nil {
		t.Fatalf("UpdateClient failed: %v", err)
	}
	updated, _ := repo.GetClientByID(ctx, client.ID)
	if updated.Email != "john@new.com" {
		t.Errorf("update not persisted: %+v", updated)
	}

	clients, err := repo.ListClients(ctx)
	if err != nil {
		t.Fatalf("ListClients failed: %v", err)
	}
	if len(clients) != 1 {
		t.Errorf("ListClients returned %d clients; want 1", len(clients))
	}

	if err := repo.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}
	if _, err := repo.GetClientByID(ctx, client.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.GetClientByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetClientByID: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteClient(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteClient: expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateClient(ctx, &Client{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateClient: expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetMeasurementByID(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMeasurementByID: expected ErrNotFound, got %v", err)
	}
	if err := repo.DeleteMeasurement(ctx, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteMeasurement: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryConflictTolerantInsert(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	client := seedClient(t, repo)

	// Re-inserting the same identity is ignored, not an error.
	duplicate := Client{Email: "other@mail.com"}
	duplicate.ID = client.ID
	if err := repo.CreateClient(ctx, &duplicate); err != nil {
		t.Fatalf("conflicting insert should be a no-op, got %v", err)
	}

	got, _ := repo.GetClientByID(ctx, client.ID)
	if got.Email != "john@doe.com" {
		t.Errorf("conflicting insert overwrote the record: %+v", got)
	}
	clients, _ := repo.ListClients(ctx)
	if len(clients) != 1 {
		t.Errorf("conflicting insert added a record: %d clients", len(clients))
	}
}

func TestMemoryCascadeDelete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	client := seedClient(t, repo)
	other := Client{FirstName: "Jane", LastName: "Roe", Email: "jane@roe.com", DateOfBirth: "02.02.1990"}
	if err := repo.CreateClient(ctx, &other); err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	for _, weight := range []float64{80.1, 79.4} {
		m := Measurement{ClientID: client.ID, Date: "15.06.2024", BodyWeightKg: weight}
		if err := repo.CreateMeasurement(ctx, &m); err != nil {
			t.Fatalf("CreateMeasurement failed: %v", err)
		}
	}
	keep := Measurement{ClientID: other.ID, Date: "16.06.2024", BodyWeightKg: 61.0}
	if err := repo.CreateMeasurement(ctx, &keep); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}

	if err := repo.DeleteClient(ctx, client.ID); err != nil {
		t.Fatalf("DeleteClient failed: %v", err)
	}

	orphans, err := repo.ListClientMeasurements(ctx, client.ID)
	if err != nil {
		t.Fatalf("ListClientMeasurements failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Errorf("expected no measurements for deleted client, got %d", len(orphans))
	}

	kept, _ := repo.ListClientMeasurements(ctx, other.ID)
	if len(kept) != 1 {
		t.Errorf("cascade removed another client's measurements: %d left", len(kept))
	}
}

func TestMemoryMeasurementCRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	client := seedClient(t, repo)

	m := Measurement{ClientID: client.ID, Date: "15.06.2024", BodyWeightKg: 79.7, MetabolicAge: 31}
	if err := repo.CreateMeasurement(ctx, &m); err != nil {
		t.Fatalf("CreateMeasurement failed: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected an assigned id after create")
	}

	got, err := repo.GetMeasurementByID(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMeasurementByID failed: %v", err)
	}
	if got.BodyWeightKg != 79.7 {
		t.Errorf("unexpected measurement: %+v", got)
	}

	got.BodyWeightKg = 78.9
	if err := repo.UpdateMeasurement(ctx, got); err != nil {
		t.Fatalf("UpdateMeasurement failed: %v", err)
	}
	updated, _ := repo.GetMeasurementByID(ctx, m.ID)
	if updated.BodyWeightKg != 78.9 {
		t.Errorf("update not persisted: %+v", updated)
	}

	if err := repo.DeleteMeasurement(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMeasurement failed: %v", err)
	}
	if _, err := repo.GetMeasurementByID(ctx, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
