package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jdalton/taskwell-api/internal/domain"
	"github.com/jdalton/taskwell-api/internal/platform/logger"
	"github.com/jdalton/taskwell-api/internal/store"
)

const taskColumns = `id, user_id, title, description, completed, priority,
	due_date, recurrence_pattern, reminder_lead_minutes, last_occurrence_id,
	created_at, updated_at`

// TaskStore implements store.TaskStore using PostgreSQL.
type TaskStore struct {
	db store.DBTX
}

// Ensure TaskStore implements store.TaskStore
var _ store.TaskStore = (*TaskStore)(nil)

// NewTaskStore creates a PostgreSQL task store.
func NewTaskStore(db store.DBTX) *TaskStore {
	return &TaskStore{db: db}
}

// WithTx returns a TaskStore bound to the provided transaction.
func (s *TaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &TaskStore{db: tx}
}

// Create saves a new task.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		task.RecurrencePattern,
		task.ReminderLeadMinutes,
		task.LastOccurrenceID,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create task", "task_id", task.ID, "error", err)
		return fmt.Errorf("failed to create task: %w", mapError(err))
	}
	return nil
}

// GetByID retrieves a task by ID for the given owner.
func (s *TaskStore) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2
	`
	return s.scanTask(s.db.QueryRowContext(ctx, query, id, userID))
}

// Get retrieves a task by ID regardless of owner.
func (s *TaskStore) Get(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1
	`
	return s.scanTask(s.db.QueryRowContext(ctx, query, id))
}

// List returns the owner's tasks matching the filter.
func (s *TaskStore) List(ctx context.Context, userID uuid.UUID, filter store.TaskFilter) ([]*domain.Task, error) {
	query, args := buildListQuery(userID, filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", mapError(err))
	}
	defer func() { _ = rows.Close() }()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update saves changes to an existing task, scoped to its owner.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContext(ctx)

	if err := task.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, completed = $3, priority = $4,
			due_date = $5, recurrence_pattern = $6, reminder_lead_minutes = $7,
			last_occurrence_id = $8, updated_at = $9
		WHERE id = $10 AND user_id = $11
	`
	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		task.Completed,
		task.Priority,
		task.DueDate,
		task.RecurrencePattern,
		task.ReminderLeadMinutes,
		task.LastOccurrenceID,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		log.Error("failed to update task", "task_id", task.ID, "error", err)
		return fmt.Errorf("failed to update task: %w", mapError(err))
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// Delete removes a task for the given owner.
func (s *TaskStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", mapError(err))
	}
	return checkRowsAffected(result, store.ErrTaskNotFound)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func (s *TaskStore) scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.Priority,
		&task.DueDate,
		&task.RecurrencePattern,
		&task.ReminderLeadMinutes,
		&task.LastOccurrenceID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if store.IsNotFoundError(mapError(err)) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to scan task: %w", mapError(err))
	}
	return &task, nil
}

// buildListQuery assembles the filtered, sorted listing query.
func buildListQuery(userID uuid.UUID, filter store.TaskFilter) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`)
	args := []interface{}{userID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		fmt.Fprintf(&sb, ` AND (title ILIKE $%d OR description ILIKE $%d)`, n, n)
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		fmt.Fprintf(&sb, ` AND priority = $%d`, len(args))
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		fmt.Fprintf(&sb, ` AND completed = $%d`, len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		fmt.Fprintf(&sb, ` AND EXISTS (
			SELECT 1 FROM task_tags tt
			JOIN tags t ON t.id = tt.tag_id
			WHERE tt.task_id = tasks.id AND t.name = $%d
		)`, len(args))
	}

	switch filter.DueStatus {
	case domain.DueStatusOverdue:
		sb.WriteString(` AND NOT completed AND due_date IS NOT NULL
			AND due_date < NOW() AND due_date::date <> CURRENT_DATE`)
	case domain.DueStatusDueToday:
		sb.WriteString(` AND NOT completed AND due_date::date = CURRENT_DATE`)
	case domain.DueStatusUpcoming:
		sb.WriteString(` AND NOT completed AND due_date IS NOT NULL
			AND due_date > NOW() AND due_date::date <> CURRENT_DATE`)
	}

	direction := "ASC"
	if filter.Descending {
		direction = "DESC"
	}
	switch filter.Sort {
	case store.TaskSortDueDate:
		fmt.Fprintf(&sb, ` ORDER BY due_date %s NULLS LAST, created_at ASC`, direction)
	case store.TaskSortPriority:
		fmt.Fprintf(&sb, ` ORDER BY CASE priority
			WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END %s, created_at ASC`, direction)
	default:
		fmt.Fprintf(&sb, ` ORDER BY created_at %s`, direction)
	}

	return sb.String(), args
}
