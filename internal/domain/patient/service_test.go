package patient

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok || p.DeletedAt != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if p, ok := m.patients[id]; ok {
		now := time.Now()
		p.DeletedAt = &now
	}
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.patients {
		if p.DeletedAt == nil {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*Patient, int, error) {
	return m.List(context.Background(), limit, offset)
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{Name: "Maria Jose"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be set")
	}
}

func TestCreatePatient_NameRequired(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{}
	if err := svc.Create(context.Background(), p); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestGetPatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{Name: "Joao Pedro"}
	svc.Create(context.Background(), p)

	fetched, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetched.Name != "Joao Pedro" {
		t.Errorf("expected name 'Joao Pedro', got %s", fetched.Name)
	}
}

func TestDeletePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{Name: "Ana"}
	svc.Create(context.Background(), p)

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); err == nil {
		t.Error("expected error after soft delete")
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	p := &Patient{ID: uuid.New(), Name: "Carlos"}
	if err := svc.Update(context.Background(), p); err == nil {
		t.Error("expected error for unknown patient")
	}
}
