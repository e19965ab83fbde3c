package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chat-messages/internal/domain/message"
	chat_errors "chat-messages/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	doc             JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS chat_messages_conversation_idx
	ON chat_messages (conversation_id, id DESC);
`

// MessageCollection stores each message as a JSONB document keyed by the
// hex object id.
type MessageCollection struct {
	pool *pgxpool.Pool
}

func NewMessageCollection(pool *pgxpool.Pool) *MessageCollection {
	return &MessageCollection{pool: pool}
}

func (c *MessageCollection) EnsureSchema(ctx context.Context) error {
	_, err := c.pool.Exec(ctx, schema)
	return translate(err)
}

func (c *MessageCollection) InsertOne(ctx context.Context, m *message.ChatMessage) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	doc, err := encode(*m)
	if err != nil {
		return err
	}
	_, err = c.pool.Exec(ctx,
		`INSERT INTO chat_messages (id, conversation_id, doc) VALUES ($1, $2, $3)`,
		m.ID.Hex(), m.ConversationID.Hex(), doc)
	if isUniqueViolation(err) {
		return chat_errors.Invalid("duplicate id %s", m.ID.Hex())
	}
	return translate(err)
}

func (c *MessageCollection) FindByID(ctx context.Context, id primitive.ObjectID) (message.ChatMessage, error) {
	var doc []byte
	err := c.pool.QueryRow(ctx, `SELECT doc FROM chat_messages WHERE id = $1`, id.Hex()).Scan(&doc)
	if err != nil {
		return message.ChatMessage{}, translate(err)
	}
	return decode(doc)
}

// UpdateByID locks the row, applies u and writes the document back in one
// transaction.
func (c *MessageCollection) UpdateByID(ctx context.Context, id primitive.ObjectID, u message.Update) (message.ChatMessage, error) {
	var updated message.ChatMessage
	err := pgx.BeginFunc(ctx, c.pool, func(tx pgx.Tx) error {
		var doc []byte
		err := tx.QueryRow(ctx, `SELECT doc FROM chat_messages WHERE id = $1 FOR UPDATE`, id.Hex()).Scan(&doc)
		if err != nil {
			return err
		}
		m, err := decode(doc)
		if err != nil {
			return err
		}
		u.Apply(&m)
		out, err := encode(m)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `UPDATE chat_messages SET doc = $2 WHERE id = $1`, id.Hex(), out); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return message.ChatMessage{}, translate(err)
	}
	return updated, nil
}

func (c *MessageCollection) Find(ctx context.Context, q message.ListQuery) ([]message.ChatMessage, error) {
	before := ""
	if !q.Before.IsZero() {
		before = q.Before.Hex()
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 1000
	}

	rows, err := c.pool.Query(ctx,
		`SELECT doc FROM chat_messages
		 WHERE conversation_id = $1 AND ($2::text = '' OR id < $2::text)
		 ORDER BY id DESC LIMIT $3::int`,
		q.ConversationID.Hex(), before, limit)
	if err != nil {
		return nil, translate(err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, translate(err)
	}

	items := make([]message.ChatMessage, 0, len(docs))
	for _, doc := range docs {
		m, err := decode(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, nil
}

func (c *MessageCollection) DeleteMany(ctx context.Context) (int64, error) {
	tag, err := c.pool.Exec(ctx, `DELETE FROM chat_messages`)
	if err != nil {
		return 0, translate(err)
	}
	return tag.RowsAffected(), nil
}

func (c *MessageCollection) Ping(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return chat_errors.Unavailable(err)
	}
	return nil
}

// document is the stored JSONB shape. It carries only persisted fields; the
// reference views are rebuilt on read.
type document struct {
	ID             primitive.ObjectID   `json:"id"`
	ConversationID primitive.ObjectID   `json:"conversationId"`
	SenderID       primitive.ObjectID   `json:"senderId"`
	Text           string               `json:"text"`
	Created        time.Time            `json:"created"`
	Deleted        bool                 `json:"deleted"`
	Resolved       bool                 `json:"resolved"`
	Likes          []primitive.ObjectID `json:"likes"`
	LikesCount     int                  `json:"likesCount"`
	Reactions      []message.Reaction   `json:"reactions"`
	Tags           []message.Tag        `json:"tags"`
}

func encode(m message.ChatMessage) ([]byte, error) {
	doc, err := json.Marshal(document{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Text:           m.Text,
		Created:        m.Created,
		Deleted:        m.Deleted,
		Resolved:       m.Resolved,
		Likes:          m.Likes,
		LikesCount:     m.LikesCount,
		Reactions:      m.Reactions,
		Tags:           m.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("encode message %s: %w", m.ID.Hex(), err)
	}
	return doc, nil
}

func decode(raw []byte) (message.ChatMessage, error) {
	var d document
	if err := json.Unmarshal(raw, &d); err != nil {
		return message.ChatMessage{}, fmt.Errorf("decode message: %w", err)
	}
	m := message.ChatMessage{
		ID:             d.ID,
		ConversationID: d.ConversationID,
		SenderID:       d.SenderID,
		Text:           d.Text,
		Created:        d.Created,
		Deleted:        d.Deleted,
		Resolved:       d.Resolved,
		Likes:          d.Likes,
		LikesCount:     d.LikesCount,
		Reactions:      d.Reactions,
		Tags:           d.Tags,
	}
	m.Normalize()
	return m, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func translate(err error) error {
	var connErr *pgconn.ConnectError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return chat_errors.ErrNotFound
	case errors.As(err, &connErr), pgconn.Timeout(err), errors.Is(err, context.DeadlineExceeded):
		return chat_errors.Unavailable(err)
	default:
		return err
	}
}
