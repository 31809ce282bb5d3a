package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/engine"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/repository"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

type fakeTeamRepo struct {
	teams []domain.Team

	// forceFull makes IncrementLoad refuse the listed teams, simulating a
	// claim that loses the race against a concurrent assignment.
	forceFull map[string]bool
}

func (r *fakeTeamRepo) Create(ctx context.Context, team *domain.Team) error {
	team.ID = fmt.Sprintf("team-%d", len(r.teams)+1)
	r.teams = append(r.teams, *team)
	return nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, team *domain.Team) error {
	for i := range r.teams {
		if r.teams[i].ID == team.ID {
			r.teams[i] = *team
			return nil
		}
	}
	return fmt.Errorf("team %s not found", team.ID)
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	for i := range r.teams {
		if r.teams[i].ID == id {
			team := r.teams[i]
			return &team, nil
		}
	}
	return nil, fmt.Errorf("team %s not found", id)
}

func (r *fakeTeamRepo) List(ctx context.Context) ([]domain.Team, error) {
	return append([]domain.Team{}, r.teams...), nil
}

func (r *fakeTeamRepo) ListActiveByCategory(ctx context.Context, category domain.Category) ([]domain.Team, error) {
	var roster []domain.Team
	for _, team := range r.teams {
		if team.Category == category && team.IsActive {
			roster = append(roster, team)
		}
	}
	return roster, nil
}

func (r *fakeTeamRepo) IncrementLoad(ctx context.Context, id string) error {
	for i := range r.teams {
		if r.teams[i].ID == id {
			if r.forceFull[id] || r.teams[i].CurrentLoad >= r.teams[i].Capacity {
				return repository.ErrTeamAtCapacity
			}
			r.teams[i].CurrentLoad++
			return nil
		}
	}
	return fmt.Errorf("team %s not found", id)
}

func (r *fakeTeamRepo) DecrementLoad(ctx context.Context, id string) error {
	for i := range r.teams {
		if r.teams[i].ID == id && r.teams[i].CurrentLoad > 0 {
			r.teams[i].CurrentLoad--
		}
	}
	return nil
}

type fakeTaskRepo struct {
	tasks map[string]domain.Task
	seq   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]domain.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	r.seq++
	task.ID = fmt.Sprintf("task-%d", r.seq)
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return fmt.Errorf("task %s not found", task.ID)
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	return &task, nil
}

func (r *fakeTaskRepo) ListWithFilter(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, task := range r.tasks {
		out = append(out, task)
	}
	return out, nil
}

type fakeResultRepo struct {
	classifications map[string][]domain.ClassificationResult
	assignments     map[string][]domain.AssignmentResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{
		classifications: make(map[string][]domain.ClassificationResult),
		assignments:     make(map[string][]domain.AssignmentResult),
	}
}

func (r *fakeResultRepo) SaveClassification(ctx context.Context, taskID string, result *domain.ClassificationResult) error {
	r.classifications[taskID] = append(r.classifications[taskID], *result)
	return nil
}

func (r *fakeResultRepo) SaveAssignment(ctx context.Context, taskID string, result *domain.AssignmentResult) error {
	r.assignments[taskID] = append(r.assignments[taskID], *result)
	return nil
}

func (r *fakeResultRepo) ListClassificationsByTask(ctx context.Context, taskID string) ([]domain.ClassificationResult, error) {
	return r.classifications[taskID], nil
}

func (r *fakeResultRepo) ListAssignmentsByTask(ctx context.Context, taskID string) ([]domain.AssignmentResult, error) {
	return r.assignments[taskID], nil
}

type eventRecorder struct {
	events []events.Event
}

func (r *eventRecorder) record(ctx context.Context, event events.Event) error {
	r.events = append(r.events, event)
	return nil
}

func itRoster(capacities ...int) *fakeTeamRepo {
	repo := &fakeTeamRepo{}
	for i, capacity := range capacities {
		repo.teams = append(repo.teams, domain.Team{
			ID:             fmt.Sprintf("team-%d", i+1),
			Name:           fmt.Sprintf("IT Squad %d", i+1),
			Category:       domain.CategoryIT,
			Skills:         []string{"network", "server"},
			Capacity:       capacity,
			PriorityWeight: 1.0,
			IsActive:       true,
		})
	}
	return repo
}

func newTriageFixture(teams *fakeTeamRepo) (*TriageService, *fakeTaskRepo, *fakeResultRepo, *eventRecorder) {
	keywords := engine.DefaultKeywords()
	rules := engine.NewRuleClassifier(engine.DefaultRuleClassifierConfig(), keywords)
	classifier := engine.NewClassificationEngine(engine.DefaultHybridConfig(), rules, nil, nil)
	assigner := engine.NewAssignmentEngine(engine.DefaultAssignmentConfig(), keywords, nil)

	tasks := newFakeTaskRepo()
	results := newFakeResultRepo()
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	dispatcher.Subscribe(events.EventTaskReceived, recorder.record)
	dispatcher.Subscribe(events.EventTaskClassified, recorder.record)
	dispatcher.Subscribe(events.EventTaskAssigned, recorder.record)

	svc := NewTriageService(TriageDependencies{
		Classifier:                    classifier,
		Assigner:                      assigner,
		TeamRepo:                      teams,
		TaskRepo:                      tasks,
		ResultRepo:                    results,
		Dispatcher:                    dispatcher,
		DefaultClassificationStrategy: "rule_based",
		DefaultAssignmentStrategy:     "workload_based",
	})
	return svc, tasks, results, recorder
}

func TestTriageTaskClassifiesAssignsAndPersists(t *testing.T) {
	teams := itRoster(5, 5)
	svc, tasks, results, recorder := newTriageFixture(teams)

	outcome, err := svc.TriageTask(context.Background(), TriageInput{
		Title:       "Email outage",
		Description: "Production server is down, all users cannot access email",
	})
	if err != nil {
		t.Fatalf("TriageTask: %v", err)
	}

	if outcome.Classification.Category != domain.CategoryIT {
		t.Fatalf("category = %s, want IT", outcome.Classification.Category)
	}
	if outcome.Classification.Priority != domain.PriorityCritical {
		t.Fatalf("priority = %s, want Critical", outcome.Classification.Priority)
	}
	if outcome.Assignment == nil || outcome.Assignment.AssignedTeamID == "" {
		t.Fatal("expected an assignment")
	}

	stored, err := tasks.GetByID(context.Background(), outcome.Task.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Category != domain.CategoryIT {
		t.Fatalf("stored category = %s, want IT", stored.Category)
	}
	if stored.AssignedTeamID == nil || *stored.AssignedTeamID != outcome.Assignment.AssignedTeamID {
		t.Fatal("stored task missing assigned team")
	}

	if n := len(results.classifications[outcome.Task.ID]); n != 1 {
		t.Fatalf("persisted classifications = %d, want 1", n)
	}
	if n := len(results.assignments[outcome.Task.ID]); n != 1 {
		t.Fatalf("persisted assignments = %d, want 1", n)
	}

	wantEvents := []events.EventType{events.EventTaskReceived, events.EventTaskClassified, events.EventTaskAssigned}
	if len(recorder.events) != len(wantEvents) {
		t.Fatalf("events = %v, want %v", recorder.events, wantEvents)
	}
	for i, eventType := range wantEvents {
		if recorder.events[i].Type != eventType {
			t.Fatalf("event[%d] = %s, want %s", i, recorder.events[i].Type, eventType)
		}
	}
}

func TestTriageTaskPublishesExtractedFeatures(t *testing.T) {
	svc, _, _, recorder := newTriageFixture(itRoster(5))

	_, err := svc.TriageTask(context.Background(), TriageInput{
		Title:       "URGENT outage",
		Description: "Production server is down! Fix within 2 hours",
	})
	if err != nil {
		t.Fatalf("TriageTask: %v", err)
	}

	if len(recorder.events) == 0 || recorder.events[0].Type != events.EventTaskReceived {
		t.Fatalf("first event = %v, want task_received", recorder.events)
	}
	payload, ok := recorder.events[0].Payload.(events.TaskReceivedPayload)
	if !ok {
		t.Fatalf("payload type = %T, want TaskReceivedPayload", recorder.events[0].Payload)
	}

	found := false
	for _, keyword := range payload.Keywords {
		if keyword == "server" {
			found = true
		}
	}
	if !found {
		t.Fatalf("keywords = %v, want to contain server", payload.Keywords)
	}
	// exclamation mark, URGENT caps word, "within 2 hours" constraint
	if payload.UrgencyCues < 3 {
		t.Fatalf("urgency cues = %d, want >= 3", payload.UrgencyCues)
	}
}

func TestTriageTaskClaimsWinnerCapacity(t *testing.T) {
	teams := itRoster(5)
	svc, _, _, _ := newTriageFixture(teams)

	if _, err := svc.TriageTask(context.Background(), TriageInput{
		Description: "Server crashed and the network is down",
	}); err != nil {
		t.Fatalf("TriageTask: %v", err)
	}

	if teams.teams[0].CurrentLoad != 1 {
		t.Fatalf("current load = %d, want 1", teams.teams[0].CurrentLoad)
	}
}

func TestAssignTaskFallsBackWhenWinnerFillsUp(t *testing.T) {
	// team-1 has more spare capacity so workload scoring picks it, but it
	// fills up between scoring and claiming.
	teams := itRoster(10, 8)
	teams.teams[1].CurrentLoad = 6
	teams.forceFull = map[string]bool{"team-1": true}

	svc, tasks, _, _ := newTriageFixture(teams)

	task := &domain.Task{
		Title:       "Server issue",
		Description: "Server is down",
		Category:    domain.CategoryIT,
		Priority:    domain.PriorityHigh,
	}
	if err := tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	outcome, err := svc.AssignTask(context.Background(), task.ID, "workload_based")
	if err != nil {
		t.Fatalf("AssignTask: %v", err)
	}
	if outcome.Assignment.AssignedTeamID != "team-2" {
		t.Fatalf("assigned team = %s, want team-2", outcome.Assignment.AssignedTeamID)
	}
	if teams.teams[1].CurrentLoad != 7 {
		t.Fatalf("team-2 load = %d, want 7", teams.teams[1].CurrentLoad)
	}
}

func TestAssignTaskRejectsUnclassifiedTask(t *testing.T) {
	svc, tasks, _, _ := newTriageFixture(itRoster(5))

	task := &domain.Task{Title: "Untriaged", Description: "something happened"}
	if err := tasks.Create(context.Background(), task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := svc.AssignTask(context.Background(), task.ID, "")
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus != 422 {
		t.Fatalf("status = %d, want 422", domainErr.HTTPStatus)
	}
}

func TestTriageTaskConflictsWhenAllTeamsFull(t *testing.T) {
	teams := itRoster(1)
	teams.forceFull = map[string]bool{"team-1": true}

	svc, _, _, _ := newTriageFixture(teams)

	_, err := svc.TriageTask(context.Background(), TriageInput{
		Description: "Server is down and needs urgent attention",
	})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus != 409 {
		t.Fatalf("status = %d, want 409", domainErr.HTTPStatus)
	}
}

func TestTriageTaskRejectsBlankDescription(t *testing.T) {
	svc, _, _, _ := newTriageFixture(itRoster(5))

	_, err := svc.TriageTask(context.Background(), TriageInput{Description: "   "})
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus != 400 {
		t.Fatalf("status = %d, want 400", domainErr.HTTPStatus)
	}
}

func TestClassifyTextRejectsUnknownStrategy(t *testing.T) {
	svc, _, _, _ := newTriageFixture(itRoster(5))

	_, err := svc.ClassifyText(context.Background(), ClassifyInput{
		Text:     "printer is broken",
		Strategy: "coin_flip",
	})
	domainErr := apperrors.ToDomainError(err)
	if domainErr.HTTPStatus != 400 {
		t.Fatalf("status = %d, want 400", domainErr.HTTPStatus)
	}
}
