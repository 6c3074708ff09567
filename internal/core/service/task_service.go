package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/pkg/logger"
)

// TaskService handles task submission and moderation.
type TaskService struct {
	tasks ports.TaskRepository
	users ports.IdentityRepository
	now   func() time.Time
	log   zerolog.Logger
}

func NewTaskService(tasks ports.TaskRepository, users ports.IdentityRepository, log zerolog.Logger) *TaskService {
	return &TaskService{
		tasks: tasks,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
		log:   logger.Component(log, "tasks"),
	}
}

// Add stores a new task. Staff submissions are visible immediately; the returned
// message tells the caller which path was taken.
func (s *TaskService) Add(ctx context.Context, in ports.AddTaskInput) (*domain.Task, string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, "", domain.NewValidationError("name", "Task name is required.")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, "", domain.NewValidationError("description", "Task description is required.")
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		Name:        name,
		Description: in.Description,
		Shown:       in.Submitter.IsStaff,
		CreatorID:   in.Submitter.UserID,
		CreatedAt:   s.now(),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, "", fmt.Errorf("add task: %w", err)
	}

	s.log.Info().Str("task_id", task.ID).Bool("shown", task.Shown).Msg("task submitted")
	if task.Shown {
		return task, fmt.Sprintf("Task '%s' added.", task.Name), nil
	}
	return task, fmt.Sprintf("Request to add task '%s' sent.", task.Name), nil
}

// RandomRequest picks one pending task together with its creator and the number
// of tasks still waiting.
func (s *TaskService) RandomRequest(ctx context.Context) (*ports.TaskRequest, error) {
	task, err := s.tasks.RandomByShown(ctx, false)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrNoPendingRequests
		}
		return nil, fmt.Errorf("random task request: %w", err)
	}

	pending, err := s.tasks.CountByShown(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("random task request: count: %w", err)
	}

	req := &ports.TaskRequest{Task: task, Pending: pending}
	req.Creator = lookupCreator(ctx, s.users, task.CreatorID, s.log)
	return req, nil
}

// ListShown returns one page of published tasks.
func (s *TaskService) ListShown(ctx context.Context, page, pageSize int) (*ports.TaskPage, error) {
	p := pageOf(page, pageSize, defaultTaskPageSize)
	tasks, total, err := s.tasks.ListShown(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list shown tasks: %w", err)
	}
	return &ports.TaskPage{
		Tasks:      tasks,
		Page:       p.Number,
		PageSize:   p.Size,
		TotalPages: totalPages(total, p.Size),
	}, nil
}

// Accept makes a pending task visible.
func (s *TaskService) Accept(ctx context.Context, id string) error {
	if err := s.tasks.Accept(ctx, id); err != nil {
		return fmt.Errorf("accept task: %w", err)
	}
	s.log.Info().Str("task_id", id).Msg("task request accepted")
	return nil
}

// Deny archives a pending task with the reason and removes it.
func (s *TaskService) Deny(ctx context.Context, in ports.DenyInput) (string, error) {
	if strings.TrimSpace(in.Reason) == "" {
		return "", domain.NewValidationError("reason", "A reason is required to deny a request.")
	}

	task, err := s.tasks.FindByID(ctx, in.ID)
	if err != nil {
		return "", fmt.Errorf("deny task: %w", err)
	}
	if task.Shown {
		return "", fmt.Errorf("deny task: %w", domain.ErrTaskNotFound)
	}

	archived := &domain.ArchivedTask{
		Task:   *task,
		Denial: domain.Denial{Reason: in.Reason, StaffID: in.StaffID, DeniedAt: s.now()},
	}
	if err := s.tasks.Archive(ctx, archived); err != nil {
		return "", fmt.Errorf("deny task: %w", err)
	}

	s.log.Info().Str("task_id", task.ID).Str("staff_id", in.StaffID).Msg("task request denied")
	return fmt.Sprintf("Task '%s' request denied.", task.Name), nil
}

// lookupCreator resolves a submitter for display. Anonymous or deleted creators
// are not an error.
func lookupCreator(ctx context.Context, users ports.IdentityRepository, id string, log zerolog.Logger) *domain.Identity {
	if id == "" {
		return nil
	}
	creator, err := users.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Warn().Err(err).Str("user_id", id).Msg("creator lookup failed")
		}
		return nil
	}
	return creator
}
