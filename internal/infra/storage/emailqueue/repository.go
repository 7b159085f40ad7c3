package emailqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/avkuzmin/ACP-AppointmentService/pkg/dbmetrics"
	"github.com/avkuzmin/ACP-AppointmentService/pkg/psqlbuilder"
)

// DBExecutor интерфейс для выполнения запросов к БД
type DBExecutor = dbmetrics.DBExecutor

// Статусы писем в очереди
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Email письмо в очереди отправки.
// Доставка выполняется внешним воркером; ядро только ставит письма в очередь.
type Email struct {
	ID        int64
	UserID    int64
	Template  string
	Payload   map[string]interface{}
	Status    string
	CreatedAt time.Time
	SentAt    *time.Time
}

// Repository очередь исходящих писем (outbox).
// Enqueue вызывается внутри транзакции бизнес-операции, чтобы письмо
// не могло появиться без соответствующего изменения данных и наоборот.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр очереди писем
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Enqueue ставит письмо в очередь отправки
func (r *Repository) Enqueue(ctx context.Context, userID int64, template string, payload map[string]interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: Enqueue - marshal payload: %v", ErrEncodePayload, err)
	}

	query, args, err := psqlbuilder.Insert("email_queue").
		Columns("user_id", "template", "payload", "status").
		Values(userID, template, encoded, StatusPending).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Enqueue - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Enqueue - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// ListPending возвращает письма, ожидающие отправки (для внешнего воркера доставки)
func (r *Repository) ListPending(ctx context.Context, limit int) ([]*Email, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"user_id",
		"template",
		"payload",
		"status",
		"created_at",
		"sent_at",
	).
		From("email_queue").
		Where(squirrel.Eq{"status": StatusPending}).
		OrderBy("created_at ASC").
		Limit(uint64(limit)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListPending - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	emails := make([]*Email, 0)

	for rows.Next() {
		var email Email
		var payload []byte
		var createdAt sql.NullTime

		err := rows.Scan(
			&email.ID,
			&email.UserID,
			&email.Template,
			&payload,
			&email.Status,
			&createdAt,
			&email.SentAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListPending - scan row: %v", ErrScanRow, err)
		}

		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &email.Payload); err != nil {
				return nil, fmt.Errorf("%w: ListPending - unmarshal payload: %v", ErrScanRow, err)
			}
		}

		email.CreatedAt = createdAt.Time
		emails = append(emails, &email)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListPending - rows error: %v", ErrScanRow, err)
	}

	return emails, nil
}

// MarkSent помечает письмо отправленным
func (r *Repository) MarkSent(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, StatusSent, true)
}

// MarkFailed помечает письмо неотправленным
func (r *Repository) MarkFailed(ctx context.Context, id int64) error {
	return r.setStatus(ctx, id, StatusFailed, false)
}

func (r *Repository) setStatus(ctx context.Context, id int64, status string, stampSent bool) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("email_queue").
		Set("status", status).
		Where(squirrel.Eq{"id": id})

	if stampSent {
		updateBuilder = updateBuilder.Set("sent_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: setStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: setStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: setStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrEmailNotFound
	}

	return nil
}
