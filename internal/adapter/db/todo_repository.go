package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/ports"
)

var tracer = otel.Tracer("todoapi/internal/adapter/db")

var todoColumns = []string{
	"id", "user_id", "title", "description", "created_at", "due_date",
	"status", "priority", "additional_data", "is_deleted", "version",
}

const percentageQuery = `
SELECT
  COUNT(*) AS total,
  COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS matching
FROM todos
WHERE user_id = ? AND is_deleted = FALSE;
`

const (
	msgTodoAdded       = "Todo added successfully."
	msgTodoUpdated     = "Todo updated successfully."
	msgTodoDeleted     = "Todo deleted successfully."
	msgTodoSoftDeleted = "Todo marked as deleted."
	msgDuplicateTitle  = "A todo with that title already exists."
	msgStaleUpdate     = "The todo was modified or deleted by another request."
)

// TodoRepository stores todos in MySQL. Title uniqueness relies on the
// uq_todos_title index and updates are guarded by the version column.
type TodoRepository struct {
	db *sqlx.DB
}

type todoRow struct {
	ID             int64          `db:"id"`
	UserID         int64          `db:"user_id"`
	Title          string         `db:"title"`
	Description    sql.NullString `db:"description"`
	CreatedAt      time.Time      `db:"created_at"`
	DueDate        sql.NullTime   `db:"due_date"`
	Status         string         `db:"status"`
	Priority       sql.NullString `db:"priority"`
	AdditionalData sql.NullString `db:"additional_data"`
	IsDeleted      bool           `db:"is_deleted"`
	Version        int64          `db:"version"`
}

type percentageRow struct {
	Total    int64 `db:"total"`
	Matching int64 `db:"matching"`
}

var _ ports.TodoRepository = (*TodoRepository)(nil)

func NewTodoRepository(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) GetAll(ctx context.Context, userID int64) ([]domain.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoRepository.GetAll", trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	todos, err := r.selectTodos(ctx, ownedBy(userID).OrderBy("id"))
	if err != nil {
		return nil, recordError(span, err)
	}
	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	return todos, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoRepository.GetByID", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("todo.id", id),
	))
	defer span.End()

	query, args, err := ownedBy(userID).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, recordError(span, err)
	}

	var row todoRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			span.SetAttributes(attribute.Bool("todo.found", false))
			return nil, nil
		}
		return nil, recordError(span, err)
	}

	span.SetAttributes(attribute.Bool("todo.found", true))
	todo := mapTodoRowToDomainTodo(row)
	return &todo, nil
}

func (r *TodoRepository) Filter(ctx context.Context, userID int64, filter domain.TodoFilter) ([]domain.Todo, error) {
	ctx, span := tracer.Start(ctx, "TodoRepository.Filter", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("todo.filter", filter.Key()),
	))
	defer span.End()

	builder := ownedBy(userID)
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.Priority != nil {
		builder = builder.Where(squirrel.Eq{"priority": string(*filter.Priority)})
	}
	if filter.Title != nil && *filter.Title != "" {
		builder = builder.Where(squirrel.Like{"title": "%" + escapeLike(*filter.Title) + "%"})
	}
	if start, end, ok := filter.DayRange(); ok {
		builder = builder.
			Where(squirrel.GtOrEq{"due_date": start}).
			Where(squirrel.Lt{"due_date": end})
	}

	todos, err := r.selectTodos(ctx, builder.OrderBy("id"))
	if err != nil {
		return nil, recordError(span, err)
	}
	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	return todos, nil
}

func (r *TodoRepository) Add(ctx context.Context, todo *domain.Todo) (domain.WriteResult, error) {
	ctx, span := tracer.Start(ctx, "TodoRepository.Add", trace.WithAttributes(
		attribute.Int64("user.id", todo.UserID),
		attribute.String("todo.title", todo.Title),
	))
	defer span.End()

	query, args, err := squirrel.Insert("todos").
		Columns(todoColumns[1:]...).
		Values(
			todo.UserID,
			todo.Title,
			nullString(todo.Description),
			todo.CreatedAt.UTC(),
			nullTime(todo.DueDate),
			string(todo.Status),
			nullPriority(todo.Priority),
			nullString(todo.AdditionalData),
			todo.IsDeleted,
			1,
		).
		ToSql()
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateEntry(err) {
			span.SetAttributes(attribute.Bool("todo.duplicate", true))
			return domain.WriteFailed(domain.ErrDuplicateTitle, msgDuplicateTitle), nil
		}
		return domain.WriteResult{}, recordError(span, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}
	todo.ID = id
	todo.Version = 1
	span.SetAttributes(attribute.Int64("todo.id", id))
	return domain.WriteOK(msgTodoAdded), nil
}

// Update writes every mutable field if the stored version still matches.
func (r *TodoRepository) Update(ctx context.Context, todo *domain.Todo) (domain.WriteResult, error) {
	ctx, span := tracer.Start(ctx, "TodoRepository.Update", trace.WithAttributes(
		attribute.Int64("user.id", todo.UserID),
		attribute.Int64("todo.id", todo.ID),
		attribute.Int64("todo.version", todo.Version),
	))
	defer span.End()

	query, args, err := squirrel.Update("todos").
		Set("title", todo.Title).
		Set("description", nullString(todo.Description)).
		Set("due_date", nullTime(todo.DueDate)).
		Set("status", string(todo.Status)).
		Set("priority", nullPriority(todo.Priority)).
		Set("additional_data", nullString(todo.AdditionalData)).
		Set("is_deleted", todo.IsDeleted).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": todo.ID}).
		Where(squirrel.Eq{"user_id": todo.UserID}).
		Where(squirrel.Eq{"version": todo.Version}).
		Where(squirrel.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isDuplicateEntry(err) {
			return domain.WriteFailed(domain.ErrDuplicateTitle, msgDuplicateTitle), nil
		}
		return domain.WriteResult{}, recordError(span, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}
	if affected == 0 {
		span.SetAttributes(attribute.Bool("todo.stale", true))
		return domain.WriteFailed(domain.ErrConcurrentUpdate, msgStaleUpdate), nil
	}

	todo.Version++
	return domain.WriteOK(msgTodoUpdated), nil
}

func (r *TodoRepository) Delete(ctx context.Context, userID, id int64) (domain.WriteResult, error) {
	ctx, span := tracer.Start(ctx, "TodoRepository.Delete", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("todo.id", id),
	))
	defer span.End()

	query, args, err := squirrel.Delete("todos").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}

	return r.execWrite(ctx, span, query, args, domain.MsgTodoNotFound, msgTodoDeleted)
}

func (r *TodoRepository) SoftDelete(ctx context.Context, userID, id int64) (domain.WriteResult, error) {
	ctx, span := tracer.Start(ctx, "TodoRepository.SoftDelete", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.Int64("todo.id", id),
	))
	defer span.End()

	query, args, err := squirrel.Update("todos").
		Set("is_deleted", true).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_deleted": false}).
		ToSql()
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}

	return r.execWrite(ctx, span, query, args, domain.MsgTodoAlreadyDeleted, msgTodoSoftDeleted)
}

func (r *TodoRepository) CountCompletedPercentage(ctx context.Context, userID int64) (float64, error) {
	return r.percentage(ctx, "TodoRepository.CountCompletedPercentage", userID, domain.TodoStatusCompleted)
}

func (r *TodoRepository) CountPendingPercentage(ctx context.Context, userID int64) (float64, error) {
	return r.percentage(ctx, "TodoRepository.CountPendingPercentage", userID, domain.TodoStatusPending)
}

func (r *TodoRepository) percentage(ctx context.Context, spanName string, userID int64, status domain.TodoStatus) (float64, error) {
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(attribute.Int64("user.id", userID)))
	defer span.End()

	var row percentageRow
	if err := r.db.GetContext(ctx, &row, percentageQuery, string(status), userID); err != nil {
		return 0, recordError(span, err)
	}
	if row.Total == 0 {
		return 0, nil
	}
	return float64(row.Matching) * 100 / float64(row.Total), nil
}

func (r *TodoRepository) selectTodos(ctx context.Context, builder squirrel.SelectBuilder) ([]domain.Todo, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []todoRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	todos := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, mapTodoRowToDomainTodo(row))
	}
	return todos, nil
}

func (r *TodoRepository) execWrite(ctx context.Context, span trace.Span, query string, args []interface{}, missing, ok string) (domain.WriteResult, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.WriteResult{}, recordError(span, err)
	}
	if affected == 0 {
		return domain.WriteFailed(domain.ErrTodoNotFound, missing), nil
	}
	return domain.WriteOK(ok), nil
}

func ownedBy(userID int64) squirrel.SelectBuilder {
	return squirrel.Select(todoColumns...).
		From("todos").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.Eq{"is_deleted": false})
}

func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

func mapTodoRowToDomainTodo(row todoRow) domain.Todo {
	todo := domain.Todo{
		ID:        row.ID,
		UserID:    row.UserID,
		Title:     row.Title,
		CreatedAt: row.CreatedAt,
		Status:    domain.TodoStatus(row.Status),
		IsDeleted: row.IsDeleted,
		Version:   row.Version,
	}

	if row.Description.Valid {
		value := row.Description.String
		todo.Description = &value
	}

	if row.DueDate.Valid {
		value := row.DueDate.Time
		todo.DueDate = &value
	}

	if row.Priority.Valid {
		value := domain.Priority(row.Priority.String)
		todo.Priority = &value
	}

	if row.AdditionalData.Valid {
		value := row.AdditionalData.String
		todo.AdditionalData = &value
	}

	return todo
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: value.UTC(), Valid: true}
}

func nullPriority(value *domain.Priority) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*value), Valid: true}
}
