package store

import (
	"context"
	"fmt"
	"time"

	"portfolio/internal/utils"
	"portfolio/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	messageTableName        = "messages"
	contactMessageTableName = "contact_messages"
)

var (
	messageColumns        = utils.StructTagValues(types.Message{})
	contactMessageColumns = utils.StructTagValues(types.ContactMessage{})
)

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) CreateMessage(ctx context.Context, message *types.Message) error {
	message.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(messageTableName).
		Columns("name", "email", "message", "created_at").
		Values(message.Name, message.Email, message.Message, message.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create message query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&message.ID); err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// Messages returns one page of messages, newest first.
func (r *MessageRepository) Messages(ctx context.Context, limit, offset uint64) ([]*types.Message, error) {
	query, args, err := psql().
		Select(messageColumns...).
		From(messageTableName).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate messages query: %w", err)
	}

	var messages = make([]*types.Message, 0)
	err = pgxscan.Select(ctx, r.pool, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	return messages, nil
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id int64) error {
	query, args, err := psql().
		Delete(messageTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete message query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrMessageNotFound
	}

	return nil
}

func (r *MessageRepository) CreateContactMessage(ctx context.Context, message *types.ContactMessage) error {
	message.CreatedAt = time.Now()

	query, args, err := psql().
		Insert(contactMessageTableName).
		Columns("name", "email", "phone", "message", "created_at").
		Values(message.Name, message.Email, message.Phone, message.Message, message.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create contact message query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&message.ID); err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

func (r *MessageRepository) ContactMessages(ctx context.Context, limit, offset uint64) ([]*types.ContactMessage, error) {
	query, args, err := psql().
		Select(contactMessageColumns...).
		From(contactMessageTableName).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate contact messages query: %w", err)
	}

	var messages = make([]*types.ContactMessage, 0)
	err = pgxscan.Select(ctx, r.pool, &messages, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contact messages: %w", err)
	}

	return messages, nil
}
