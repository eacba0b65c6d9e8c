package vehicle

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	vehicles map[uuid.UUID]*Vehicle
}

func newMockRepo() *mockRepo {
	return &mockRepo{vehicles: make(map[uuid.UUID]*Vehicle)}
}

func (m *mockRepo) Create(_ context.Context, v *Vehicle) error {
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	m.vehicles[v.ID] = v
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

func (m *mockRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Vehicle, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepo) Update(_ context.Context, v *Vehicle) error {
	m.vehicles[v.ID] = v
	return nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	v, ok := m.vehicles[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	v.Status = status
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.vehicles, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Vehicle, int, error) {
	var result []*Vehicle
	for _, v := range m.vehicles {
		result = append(result, v)
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*Vehicle, int, error) {
	return m.List(context.Background(), limit, offset)
}

func TestCreateVehicle_DefaultsToDisponivel(t *testing.T) {
	svc := NewService(newMockRepo())
	v := &Vehicle{Plate: "ABC-1234"}
	if err := svc.Create(context.Background(), v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Status != StatusDisponivel {
		t.Errorf("expected default status disponivel, got %s", v.Status)
	}
}

func TestCreateVehicle_PlateRequired(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), &Vehicle{}); err == nil {
		t.Error("expected error for missing plate")
	}
}

func TestCreateVehicle_InvalidStatus(t *testing.T) {
	svc := NewService(newMockRepo())
	v := &Vehicle{Plate: "ABC-1234", Status: "flying"}
	if err := svc.Create(context.Background(), v); err == nil {
		t.Error("expected error for invalid status")
	}
}

func TestUpdateStatus_FleetOperations(t *testing.T) {
	svc := NewService(newMockRepo())
	v := &Vehicle{Plate: "ABC-1234"}
	svc.Create(context.Background(), v)

	if err := svc.UpdateStatus(context.Background(), v.ID, StatusEmManutencao); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetched, _ := svc.Get(context.Background(), v.ID)
	if fetched.Status != StatusEmManutencao {
		t.Errorf("expected em_manutencao, got %s", fetched.Status)
	}
}

func TestUpdateStatus_EmTransitoReserved(t *testing.T) {
	svc := NewService(newMockRepo())
	v := &Vehicle{Plate: "ABC-1234"}
	svc.Create(context.Background(), v)

	if err := svc.UpdateStatus(context.Background(), v.ID, StatusEmTransito); err == nil {
		t.Error("expected error: em_transito is reserved for assignment")
	}
}

func TestUpdateStatus_UnknownVehicle(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.UpdateStatus(context.Background(), uuid.New(), StatusIndisponivel); err == nil {
		t.Error("expected error for unknown vehicle")
	}
}

func TestValidStatus(t *testing.T) {
	valid := []string{StatusDisponivel, StatusEmTransito, StatusEmManutencao, StatusIndisponivel}
	for _, s := range valid {
		if !ValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidStatus("parado") {
		t.Error("expected 'parado' to be invalid")
	}
}
