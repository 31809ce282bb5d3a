package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/triage-service/internal/domain"
	"github.com/spec-kit/triage-service/internal/engine"
	"github.com/spec-kit/triage-service/internal/events"
	"github.com/spec-kit/triage-service/internal/repository"
	apperrors "github.com/spec-kit/triage-service/pkg/util/errorutil"
)

// TriageService coordinates the classify-then-assign workflow.
type TriageService struct {
	classifier *engine.ClassificationEngine
	assigner   *engine.AssignmentEngine
	features   *engine.FeatureExtractor
	teams      repository.TeamRepository
	tasks      repository.TaskRepository
	results    repository.ResultRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	defaultClassification domain.ClassificationStrategy
	defaultAssignment     domain.AssignmentStrategy
}

// TriageDependencies bundles collaborators for the triage service.
type TriageDependencies struct {
	Classifier *engine.ClassificationEngine
	Assigner   *engine.AssignmentEngine
	Features   *engine.FeatureExtractor
	TeamRepo   repository.TeamRepository
	TaskRepo   repository.TaskRepository
	ResultRepo repository.ResultRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger

	DefaultClassificationStrategy string
	DefaultAssignmentStrategy     string
}

// ClassifyInput describes a stateless classification request.
type ClassifyInput struct {
	Title    string
	Text     string
	Strategy string
}

// TriageInput describes a full intake request.
type TriageInput struct {
	Title                  string
	Description            string
	ClassificationStrategy string
	AssignmentStrategy     string
}

// TriageOutcome carries the persisted task and both decisions.
type TriageOutcome struct {
	Task           *domain.Task
	Classification *domain.ClassificationResult
	Assignment     *domain.AssignmentResult
}

// NewTriageService constructs the service.
func NewTriageService(deps TriageDependencies) *TriageService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	defaultClassification := domain.StrategyHybrid
	if parsed, ok := domain.ParseClassificationStrategy(deps.DefaultClassificationStrategy); ok {
		defaultClassification = parsed
	}
	defaultAssignment := domain.AssignHybrid
	if parsed, ok := domain.ParseAssignmentStrategy(deps.DefaultAssignmentStrategy); ok {
		defaultAssignment = parsed
	}

	features := deps.Features
	if features == nil {
		features = engine.NewFeatureExtractor(engine.DefaultKeywords())
	}

	return &TriageService{
		classifier:            deps.Classifier,
		assigner:              deps.Assigner,
		features:              features,
		teams:                 deps.TeamRepo,
		tasks:                 deps.TaskRepo,
		results:               deps.ResultRepo,
		dispatcher:            deps.Dispatcher,
		logger:                logger,
		defaultClassification: defaultClassification,
		defaultAssignment:     defaultAssignment,
	}
}

// ClassifyText classifies without persisting a task.
func (s *TriageService) ClassifyText(ctx context.Context, input ClassifyInput) (*domain.ClassificationResult, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.NewValidationError("text is required", nil)
	}
	strategy, err := s.classificationStrategy(input.Strategy)
	if err != nil {
		return nil, err
	}

	result, err := s.classifier.Classify(ctx, input.Text, input.Title, strategy)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return result, nil
}

// TriageTask persists a task, classifies it, and assigns it to a team.
func (s *TriageService) TriageTask(ctx context.Context, input TriageInput) (*TriageOutcome, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	classificationStrategy, err := s.classificationStrategy(input.ClassificationStrategy)
	if err != nil {
		return nil, err
	}
	assignmentStrategy, err := s.assignmentStrategy(input.AssignmentStrategy)
	if err != nil {
		return nil, err
	}

	task := &domain.Task{
		Title:       strings.TrimSpace(input.Title),
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	bag := s.features.Extract(strings.TrimSpace(task.Title + " " + task.Description))
	s.publishEvent(ctx, events.Event{
		Type:   events.EventTaskReceived,
		TaskID: task.ID,
		Payload: events.TaskReceivedPayload{
			Title:       task.Title,
			TextLength:  len(task.Description),
			Keywords:    bag.Keywords,
			UrgencyCues: urgencyCues(bag.Urgency),
		},
	})

	classification, err := s.classifier.Classify(ctx, task.Description, task.Title, classificationStrategy)
	if err != nil {
		return nil, mapEngineError(err)
	}
	task.Category = classification.Category
	task.Priority = classification.Priority
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	if err := s.results.SaveClassification(ctx, task.ID, classification); err != nil {
		s.logger.Warn("failed to persist classification", zap.String("task_id", task.ID), zap.Error(err))
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventTaskClassified,
		TaskID: task.ID,
		Payload: events.TaskClassifiedPayload{
			Category:   classification.Category,
			Priority:   classification.Priority,
			Confidence: classification.Confidence,
			Strategy:   classification.Strategy,
		},
	})

	assignment, err := s.assignTeam(ctx, task, assignmentStrategy)
	if err != nil {
		return nil, err
	}

	return &TriageOutcome{Task: task, Classification: classification, Assignment: assignment}, nil
}

// AssignTask routes an already classified task to a team.
func (s *TriageService) AssignTask(ctx context.Context, taskID, strategyName string) (*TriageOutcome, error) {
	strategy, err := s.assignmentStrategy(strategyName)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Category == "" {
		return nil, apperrors.NewUnprocessable("task has not been classified", map[string]any{"task_id": taskID})
	}

	assignment, err := s.assignTeam(ctx, task, strategy)
	if err != nil {
		return nil, err
	}
	return &TriageOutcome{Task: task, Assignment: assignment}, nil
}

// GetTask fetches a task by id.
func (s *TriageService) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

// ListTasks returns tasks matching the filter.
func (s *TriageService) ListTasks(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	return s.tasks.ListWithFilter(ctx, filter)
}

// TaskDecisions returns the persisted decision history for a task.
func (s *TriageService) TaskDecisions(ctx context.Context, taskID string) ([]domain.ClassificationResult, []domain.AssignmentResult, error) {
	classifications, err := s.results.ListClassificationsByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	assignments, err := s.results.ListAssignmentsByTask(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return classifications, assignments, nil
}

// assignTeam scores the roster, claims capacity on the winner, and records
// the decision. When the winner fills up between scoring and claiming, the
// ranked alternatives are tried in order.
func (s *TriageService) assignTeam(ctx context.Context, task *domain.Task, strategy domain.AssignmentStrategy) (*domain.AssignmentResult, error) {
	roster, err := s.teams.ListActiveByCategory(ctx, task.Category)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, apperrors.NewUnprocessable("no active teams for category", map[string]any{"category": task.Category})
	}

	assignment, err := s.assigner.Assign(*task, roster, strategy)
	if err != nil {
		return nil, mapEngineError(err)
	}

	claimedID, err := s.claimCapacity(ctx, assignment)
	if err != nil {
		return nil, err
	}
	if claimedID != assignment.AssignedTeamID {
		s.logger.Info("assignment fell back to alternative team",
			zap.String("task_id", task.ID),
			zap.String("scored_team", assignment.AssignedTeamID),
			zap.String("assigned_team", claimedID))
		assignment.AssignedTeamID = claimedID
	}

	task.AssignedTeamID = &claimedID
	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	if err := s.results.SaveAssignment(ctx, task.ID, assignment); err != nil {
		s.logger.Warn("failed to persist assignment", zap.String("task_id", task.ID), zap.Error(err))
	}
	s.publishEvent(ctx, events.Event{
		Type:   events.EventTaskAssigned,
		TaskID: task.ID,
		Payload: events.TaskAssignedPayload{
			TeamID:     assignment.AssignedTeamID,
			Category:   task.Category,
			Confidence: assignment.Confidence,
			Strategy:   assignment.Strategy,
		},
	})
	return assignment, nil
}

func (s *TriageService) claimCapacity(ctx context.Context, assignment *domain.AssignmentResult) (string, error) {
	candidates := []string{assignment.AssignedTeamID}
	for _, alt := range assignment.Alternatives {
		if alt.TeamID != assignment.AssignedTeamID {
			candidates = append(candidates, alt.TeamID)
		}
	}

	for _, id := range candidates {
		err := s.teams.IncrementLoad(ctx, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, repository.ErrTeamAtCapacity) {
			return "", err
		}
	}
	return "", apperrors.NewConflict("all candidate teams are at capacity", nil)
}

func (s *TriageService) classificationStrategy(name string) (domain.ClassificationStrategy, error) {
	if strings.TrimSpace(name) == "" {
		return s.defaultClassification, nil
	}
	strategy, ok := domain.ParseClassificationStrategy(name)
	if !ok {
		return "", apperrors.NewValidationError("unknown classification strategy", map[string]any{"strategy": name})
	}
	return strategy, nil
}

func (s *TriageService) assignmentStrategy(name string) (domain.AssignmentStrategy, error) {
	if strings.TrimSpace(name) == "" {
		return s.defaultAssignment, nil
	}
	strategy, ok := domain.ParseAssignmentStrategy(name)
	if !ok {
		return "", apperrors.NewValidationError("unknown assignment strategy", map[string]any{"strategy": name})
	}
	return strategy, nil
}

func urgencyCues(signals engine.UrgencySignals) int {
	return signals.ExclamationMarks + signals.CapsWords + signals.UrgentPhrases + len(signals.TimeConstraints)
}

func (s *TriageService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// mapEngineError translates engine failures into transport-level errors.
func mapEngineError(err error) error {
	var clsErr *engine.ClassificationError
	if errors.As(err, &clsErr) {
		return apperrors.NewUnprocessable(clsErr.Message, map[string]any{"strategy": clsErr.Strategy})
	}
	var asgErr *engine.AssignmentError
	if errors.As(err, &asgErr) {
		return apperrors.NewUnprocessable(asgErr.Message, map[string]any{"strategy": asgErr.Strategy})
	}
	return err
}
