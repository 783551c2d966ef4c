package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/fitcoach/internal/models"
)

// ConversationHistory returns a user's coach conversation, oldest first.
func (db *DB) ConversationHistory(ctx context.Context, auth0ID string) ([]models.Message, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT role, content, created_at FROM conversation_messages
		 WHERE auth0_id = $1 ORDER BY id ASC`, auth0ID)
	if err != nil {
		return nil, fmt.Errorf("querying conversation: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// AppendMessages adds turns to a user's conversation in order.
func (db *DB) AppendMessages(ctx context.Context, auth0ID string, msgs ...models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range msgs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO conversation_messages (auth0_id, role, content) VALUES ($1, $2, $3)`,
			auth0ID, m.Role, m.Content); err != nil {
			return fmt.Errorf("inserting message: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// ResetConversation deletes a user's conversation.
func (db *DB) ResetConversation(ctx context.Context, auth0ID string) error {
	if _, err := db.Pool.Exec(ctx,
		`DELETE FROM conversation_messages WHERE auth0_id = $1`, auth0ID); err != nil {
		return fmt.Errorf("deleting conversation: %w", err)
	}
	return nil
}

// PruneConversations deletes every conversation whose latest message is
// older than cutoff. Returns the number of messages removed.
func (db *DB) PruneConversations(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM conversation_messages
		WHERE auth0_id IN (
			SELECT auth0_id FROM conversation_messages
			GROUP BY auth0_id
			HAVING MAX(created_at) < $1
		)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning conversations: %w", err)
	}
	return tag.RowsAffected(), nil
}
