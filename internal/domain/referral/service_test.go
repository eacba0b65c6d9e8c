package referral

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sivec/sivec/internal/domain/triage"
	"github.com/sivec/sivec/internal/domain/vehicle"
)

// passthroughRunner executes the unit of work without a real transaction.
type passthroughRunner struct{}

func (passthroughRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	referrals map[uuid.UUID]*Referral
	history   map[uuid.UUID][]*StatusChange
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		referrals: make(map[uuid.UUID]*Referral),
		history:   make(map[uuid.UUID][]*StatusChange),
	}
}

func (m *mockRepo) Create(_ context.Context, r *Referral) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.referrals[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Referral, error) {
	r, ok := m.referrals[id]
	if !ok || r.DeletedAt != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	copied := *r
	return &copied, nil
}

func (m *mockRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Referral, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRepo) Update(_ context.Context, r *Referral) error {
	if _, ok := m.referrals[r.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, r.ID)
	}
	m.referrals[r.ID] = r
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	r, ok := m.referrals[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	now := time.Now()
	r.DeletedAt = &now
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Referral, int, error) {
	var result []*Referral
	for _, r := range m.referrals {
		if r.DeletedAt == nil {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByTriage(_ context.Context, triageID uuid.UUID) ([]*Referral, error) {
	var result []*Referral
	for _, r := range m.referrals {
		if r.DeletedAt == nil && r.TriageID != nil && *r.TriageID == triageID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockRepo) Search(ctx context.Context, _ map[string]string, limit, offset int) ([]*Referral, int, error) {
	return m.List(ctx, limit, offset)
}

func (m *mockRepo) AddStatusChange(_ context.Context, c *StatusChange) error {
	c.ID = uuid.New()
	m.history[c.ReferralID] = append(m.history[c.ReferralID], c)
	return nil
}

func (m *mockRepo) ListStatusChanges(_ context.Context, referralID uuid.UUID) ([]*StatusChange, error) {
	return m.history[referralID], nil
}

type mockTriageRepo struct {
	triages map[uuid.UUID]*triage.Triage
}

func (m *mockTriageRepo) Create(_ context.Context, t *triage.Triage) error {
	t.ID = uuid.New()
	m.triages[t.ID] = t
	return nil
}

func (m *mockTriageRepo) GetByID(_ context.Context, id uuid.UUID) (*triage.Triage, error) {
	t, ok := m.triages[id]
	if !ok {
		return nil, triage.ErrNotFound
	}
	return t, nil
}

func (m *mockTriageRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*triage.Triage, error) {
	return m.GetByID(ctx, id)
}

func (m *mockTriageRepo) Update(_ context.Context, t *triage.Triage) error {
	m.triages[t.ID] = t
	return nil
}

func (m *mockTriageRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string, concludedAt *time.Time) error {
	t, ok := m.triages[id]
	if !ok {
		return triage.ErrNotFound
	}
	t.Status = status
	// First conclusion wins, mirroring COALESCE(concluded_at, $3).
	if concludedAt != nil && t.ConcludedAt == nil {
		t.ConcludedAt = concludedAt
	}
	return nil
}

func (m *mockTriageRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

func (m *mockTriageRepo) List(_ context.Context, limit, offset int) ([]*triage.Triage, int, error) {
	return nil, 0, nil
}

func (m *mockTriageRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*triage.Triage, int, error) {
	return nil, 0, nil
}

func (m *mockTriageRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*triage.Triage, int, error) {
	return nil, 0, nil
}

type mockVehicleRepo struct {
	vehicles map[uuid.UUID]*vehicle.Vehicle
}

func (m *mockVehicleRepo) Create(_ context.Context, v *vehicle.Vehicle) error {
	v.ID = uuid.New()
	m.vehicles[v.ID] = v
	return nil
}

func (m *mockVehicleRepo) GetByID(_ context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, vehicle.ErrNotFound
	}
	return v, nil
}

func (m *mockVehicleRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*vehicle.Vehicle, error) {
	return m.GetByID(ctx, id)
}

func (m *mockVehicleRepo) Update(_ context.Context, v *vehicle.Vehicle) error { return nil }

func (m *mockVehicleRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	v, ok := m.vehicles[id]
	if !ok {
		return vehicle.ErrNotFound
	}
	v.Status = status
	return nil
}

func (m *mockVehicleRepo) Delete(_ context.Context, id uuid.UUID) error { return nil }

func (m *mockVehicleRepo) List(_ context.Context, limit, offset int) ([]*vehicle.Vehicle, int, error) {
	return nil, 0, nil
}

func (m *mockVehicleRepo) Search(_ context.Context, _ map[string]string, limit, offset int) ([]*vehicle.Vehicle, int, error) {
	return nil, 0, nil
}

type testEnv struct {
	svc      *Service
	repo     *mockRepo
	triages  *mockTriageRepo
	vehicles *mockVehicleRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newMockRepo()
	triages := &mockTriageRepo{triages: make(map[uuid.UUID]*triage.Triage)}
	vehicles := &mockVehicleRepo{vehicles: make(map[uuid.UUID]*vehicle.Vehicle)}
	return &testEnv{
		svc:      NewService(repo, triages, vehicles, passthroughRunner{}),
		repo:     repo,
		triages:  triages,
		vehicles: vehicles,
	}
}

func (e *testEnv) openTriage(status string) *triage.Triage {
	t := &triage.Triage{PatientID: uuid.New(), Status: status, UrgencyLevel: triage.UrgencyAlto}
	e.triages.Create(context.Background(), t)
	return t
}

func (e *testEnv) availableVehicle() *vehicle.Vehicle {
	v := &vehicle.Vehicle{Plate: "ABC-1234", Status: vehicle.StatusDisponivel}
	e.vehicles.Create(context.Background(), v)
	return v
}

func (e *testEnv) openReferral(t *testing.T, tr *triage.Triage) *Referral {
	t.Helper()
	ref := &Referral{TriageID: &tr.ID}
	if err := e.svc.Create(context.Background(), ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ref
}

func (e *testEnv) setStatus(t *testing.T, id uuid.UUID, status string) *Referral {
	t.Helper()
	ref, err := e.svc.UpdateStatus(context.Background(), id, StatusUpdate{Status: status}, nil)
	if err != nil {
		t.Fatalf("unexpected error moving to %s: %v", status, err)
	}
	return ref
}

func TestCreateReferral_MarksTriageEncaminhada(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)

	ref := env.openReferral(t, tr)
	if ref.Status != StatusPendente {
		t.Errorf("expected status pendente, got %s", ref.Status)
	}
	if ref.Priority != PriorityMedia {
		t.Errorf("expected default priority media, got %s", ref.Priority)
	}
	if ref.PatientID != tr.PatientID {
		t.Error("patient must be taken from the triage")
	}
	if tr.Status != triage.StatusEncaminhada {
		t.Errorf("triage should be encaminhada, got %s", tr.Status)
	}
	if len(env.repo.history[ref.ID]) != 1 {
		t.Errorf("expected 1 history row, got %d", len(env.repo.history[ref.ID]))
	}
}

func TestCreateReferral_WithoutTriage(t *testing.T) {
	env := newTestEnv(t)
	patient := uuid.New()

	ref := &Referral{PatientID: patient}
	if err := env.svc.Create(context.Background(), ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Status != StatusPendente {
		t.Errorf("expected status pendente, got %s", ref.Status)
	}
	if ref.TriageID != nil {
		t.Errorf("expected no triage link, got %v", ref.TriageID)
	}
	if ref.PatientID != patient {
		t.Error("patient must be kept as given")
	}
	if len(env.repo.history[ref.ID]) != 1 {
		t.Errorf("expected 1 history row, got %d", len(env.repo.history[ref.ID]))
	}
}

func TestCreateReferral_RequiresPatientWithoutTriage(t *testing.T) {
	env := newTestEnv(t)
	err := env.svc.Create(context.Background(), &Referral{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateReferral_EmergenciaPriority(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)

	ref := &Referral{TriageID: &tr.ID, Priority: PriorityEmergencia}
	if err := env.svc.Create(context.Background(), ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Priority != PriorityEmergencia {
		t.Errorf("expected priority emergencia, got %s", ref.Priority)
	}
}

func TestCreateReferral_RejectsConcludedTriage(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusConcluida)
	err := env.svc.Create(context.Background(), &Referral{TriageID: &tr.ID})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCreateReferral_AlreadyEncaminhadaStays(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEncaminhada)
	env.openReferral(t, tr)
	if tr.Status != triage.StatusEncaminhada {
		t.Errorf("triage should stay encaminhada, got %s", tr.Status)
	}
}

func TestCreateReferral_UnknownTriage(t *testing.T) {
	env := newTestEnv(t)
	unknown := uuid.New()
	err := env.svc.Create(context.Background(), &Referral{TriageID: &unknown})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateReferral_DerivesType(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusPendente)
	origin := uuid.New()
	dest := uuid.New()
	ref := &Referral{TriageID: &tr.ID, OriginCarePointID: &origin, DestFacilityID: &dest}
	if err := env.svc.Create(context.Background(), ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.ReferralType == nil || *ref.ReferralType != TypePontoParaUnidade {
		t.Errorf("expected ponto_para_unidade, got %v", ref.ReferralType)
	}
}

func TestUpdateStatus_FullTransportLifecycle(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	v := env.availableVehicle()
	ref := env.openReferral(t, tr)

	got, err := env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: v.ID}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != StatusAprovado {
		t.Errorf("assignment should auto-approve, got %s", got.Status)
	}
	if v.Status != vehicle.StatusEmTransito {
		t.Errorf("vehicle should be em_transito, got %s", v.Status)
	}

	got = env.setStatus(t, ref.ID, StatusEmTransporte)
	if got.DepartedAt == nil {
		t.Error("expected departed_at to be set")
	}

	got = env.setStatus(t, ref.ID, StatusConcluido)
	if got.ArrivedAt == nil {
		t.Error("expected arrived_at to be set")
	}
	if tr.Status != triage.StatusConcluida {
		t.Errorf("triage should conclude with the transport, got %s", tr.Status)
	}
	if tr.ConcludedAt == nil {
		t.Error("expected triage concluded_at to be set")
	}
	if v.Status != vehicle.StatusDisponivel {
		t.Errorf("vehicle should be released, got %s", v.Status)
	}

	changes, err := env.svc.History(context.Background(), ref.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// pendente, aprovado, em_transporte, concluido
	if len(changes) != 4 {
		t.Errorf("expected 4 history rows, got %d", len(changes))
	}
}

func TestUpdateStatus_WithoutTriageConcludes(t *testing.T) {
	env := newTestEnv(t)
	ref := &Referral{PatientID: uuid.New()}
	if err := env.svc.Create(context.Background(), ref); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env.setStatus(t, ref.ID, StatusAprovado)
	env.setStatus(t, ref.ID, StatusEmTransporte)
	got := env.setStatus(t, ref.ID, StatusConcluido)
	if got.Status != StatusConcluido || got.ArrivedAt == nil {
		t.Errorf("expected concluded referral with arrived_at, got %+v", got)
	}
}

func TestUpdateStatus_FirstConclusionKeepsConcludedAt(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	refA := env.openReferral(t, tr)
	refB := env.openReferral(t, tr)

	env.setStatus(t, refA.ID, StatusAprovado)
	env.setStatus(t, refA.ID, StatusEmTransporte)
	env.setStatus(t, refA.ID, StatusConcluido)
	if tr.ConcludedAt == nil {
		t.Fatal("expected triage concluded_at after the first transport")
	}
	first := *tr.ConcludedAt

	env.setStatus(t, refB.ID, StatusAprovado)
	env.setStatus(t, refB.ID, StatusEmTransporte)
	env.setStatus(t, refB.ID, StatusConcluido)
	if tr.ConcludedAt == nil || !tr.ConcludedAt.Equal(first) {
		t.Errorf("concluded_at must keep the first conclusion, got %v", tr.ConcludedAt)
	}
}

func TestUpdateStatus_CancelRevertsTriage(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	v := env.availableVehicle()
	ref := env.openReferral(t, tr)
	env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: v.ID}, nil)

	reason := "paciente estabilizado no local"
	got, err := env.svc.UpdateStatus(context.Background(), ref.ID,
		StatusUpdate{Status: StatusCancelado, Note: &reason}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CancelReason == nil || *got.CancelReason != reason {
		t.Errorf("expected cancel reason recorded, got %v", got.CancelReason)
	}
	if tr.Status != triage.StatusEmAndamento {
		t.Errorf("triage should revert to em_andamento, got %s", tr.Status)
	}
	if v.Status != vehicle.StatusDisponivel {
		t.Errorf("vehicle should be released on cancel, got %s", v.Status)
	}
}

func TestUpdateStatus_CancelDoesNotRevertConcludedTriage(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)

	// The triage concluded outside the referral path in the meantime.
	tr.Status = triage.StatusConcluida

	env.setStatus(t, ref.ID, StatusCancelado)
	if tr.Status != triage.StatusConcluida {
		t.Errorf("concluded triage must keep its state, got %s", tr.Status)
	}
}

func TestUpdateStatus_SameStateIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)

	got := env.setStatus(t, ref.ID, StatusPendente)
	if got.Status != StatusPendente {
		t.Errorf("unexpected status %s", got.Status)
	}
	if len(env.repo.history[ref.ID]) != 1 {
		t.Errorf("no-op must not add history rows, got %d", len(env.repo.history[ref.ID]))
	}
}

func TestUpdateStatus_SameStateAppliesFields(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)

	eta := time.Now().Add(2 * time.Hour).UTC()
	got, err := env.svc.UpdateStatus(context.Background(), ref.ID,
		StatusUpdate{Status: StatusPendente, EstimatedArrival: &eta}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EstimatedArrival == nil || !got.EstimatedArrival.Equal(eta) {
		t.Errorf("expected estimated_arrival applied, got %v", got.EstimatedArrival)
	}
	if len(env.repo.history[ref.ID]) != 1 {
		t.Errorf("same-state request must not add history rows, got %d", len(env.repo.history[ref.ID]))
	}

	first := "mudanca de rota"
	second := "estrada bloqueada"
	if _, err := env.svc.UpdateStatus(context.Background(), ref.ID,
		StatusUpdate{Status: StatusCancelado, Note: &first}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err = env.svc.UpdateStatus(context.Background(), ref.ID,
		StatusUpdate{Status: StatusCancelado, Note: &second}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CancelReason == nil || *got.CancelReason != second {
		t.Errorf("expected updated cancel reason, got %v", got.CancelReason)
	}
	if len(env.repo.history[ref.ID]) != 2 {
		t.Errorf("expected 2 history rows, got %d", len(env.repo.history[ref.ID]))
	}
}

func TestUpdateStatus_TerminalRejected(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)
	env.setStatus(t, ref.ID, StatusCancelado)
	_, err := env.svc.UpdateStatus(context.Background(), ref.ID, StatusUpdate{Status: StatusAprovado}, nil)
	if !errors.Is(err, ErrTerminalState) {
		t.Errorf("expected ErrTerminalState, got %v", err)
	}
}

func TestUpdateStatus_SkippingStagesRejected(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)
	_, err := env.svc.UpdateStatus(context.Background(), ref.ID, StatusUpdate{Status: StatusConcluido}, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAssignVehicle_UnavailableVehicle(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)
	v := env.availableVehicle()
	v.Status = vehicle.StatusEmManutencao

	_, err := env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: v.ID}, nil)
	if !errors.Is(err, ErrVehicleUnavailable) {
		t.Errorf("expected ErrVehicleUnavailable, got %v", err)
	}
}

func TestAssignVehicle_ExclusiveAcrossReferrals(t *testing.T) {
	env := newTestEnv(t)
	v := env.availableVehicle()
	refA := env.openReferral(t, env.openTriage(triage.StatusEmAndamento))
	refB := env.openReferral(t, env.openTriage(triage.StatusEmAndamento))

	if _, err := env.svc.AssignVehicle(context.Background(), refA.ID, VehicleAssignment{VehicleID: v.ID}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := env.svc.AssignVehicle(context.Background(), refB.ID, VehicleAssignment{VehicleID: v.ID}, nil)
	if !errors.Is(err, ErrVehicleUnavailable) {
		t.Errorf("a vehicle in transit cannot serve a second referral, got %v", err)
	}
}

func TestAssignVehicle_ReassignReleasesPrevious(t *testing.T) {
	env := newTestEnv(t)
	first := env.availableVehicle()
	second := env.availableVehicle()
	ref := env.openReferral(t, env.openTriage(triage.StatusEmAndamento))

	env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: first.ID}, nil)
	got, err := env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: second.ID}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VehicleID == nil || *got.VehicleID != second.ID {
		t.Error("expected the new vehicle on the referral")
	}
	if first.Status != vehicle.StatusDisponivel {
		t.Errorf("previous vehicle should be released, got %s", first.Status)
	}
	if second.Status != vehicle.StatusEmTransito {
		t.Errorf("new vehicle should be em_transito, got %s", second.Status)
	}
}

func TestAssignVehicle_SameVehicleIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	v := env.availableVehicle()
	ref := env.openReferral(t, env.openTriage(triage.StatusEmAndamento))

	env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: v.ID}, nil)
	got, err := env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: v.ID}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.VehicleID == nil || *got.VehicleID != v.ID {
		t.Error("expected the vehicle to stay assigned")
	}
}

func TestAssignVehicle_StoresEstimates(t *testing.T) {
	env := newTestEnv(t)
	v := env.availableVehicle()
	ref := env.openReferral(t, env.openTriage(triage.StatusEmAndamento))

	departure := time.Now().Add(30 * time.Minute).UTC()
	arrival := departure.Add(time.Hour)
	got, err := env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{
		VehicleID:          v.ID,
		EstimatedDeparture: &departure,
		EstimatedArrival:   &arrival,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EstimatedDeparture == nil || !got.EstimatedDeparture.Equal(departure) {
		t.Errorf("expected estimated_departure stored, got %v", got.EstimatedDeparture)
	}
	if got.EstimatedArrival == nil || !got.EstimatedArrival.Equal(arrival) {
		t.Errorf("expected estimated_arrival stored, got %v", got.EstimatedArrival)
	}
}

func TestAssignVehicle_RejectedInTransit(t *testing.T) {
	env := newTestEnv(t)
	v := env.availableVehicle()
	spare := env.availableVehicle()
	ref := env.openReferral(t, env.openTriage(triage.StatusEmAndamento))

	env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: v.ID}, nil)
	env.setStatus(t, ref.ID, StatusEmTransporte)
	_, err := env.svc.AssignVehicle(context.Background(), ref.ID, VehicleAssignment{VehicleID: spare.ID}, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestSource_SummariesByTriage(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)

	src := NewSource(env.repo)
	summaries, err := src.SummariesByTriage(context.Background(), tr.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	if summaries[0].ID != ref.ID || summaries[0].Status != StatusPendente {
		t.Errorf("unexpected summary: %+v", summaries[0])
	}
}

func TestUpdate_TerminalRejected(t *testing.T) {
	env := newTestEnv(t)
	ref := env.openReferral(t, env.openTriage(triage.StatusEmAndamento))
	env.setStatus(t, ref.ID, StatusCancelado)

	err := env.svc.Update(context.Background(), &Referral{ID: ref.ID, Priority: PriorityAlta})
	if !errors.Is(err, ErrTerminalState) {
		t.Errorf("expected ErrTerminalState, got %v", err)
	}
}

func TestDelete_HidesReferral(t *testing.T) {
	env := newTestEnv(t)
	tr := env.openTriage(triage.StatusEmAndamento)
	ref := env.openReferral(t, tr)

	if err := env.svc.Delete(context.Background(), ref.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := env.svc.Get(context.Background(), ref.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	refs, _ := env.repo.ListByTriage(context.Background(), tr.ID)
	if len(refs) != 0 {
		t.Errorf("deleted referral must not be listed, got %d", len(refs))
	}
}
