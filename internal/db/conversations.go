package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// GetConversation retrieves a conversation by ID, or nil if absent
func (db *DB) GetConversation(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	var c Conversation
	var contextJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_id, title, context, created_at, updated_at
		 FROM conversations WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.UserID, &c.Title, &contextJSON, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	if contextJSON != nil {
		_ = json.Unmarshal(contextJSON, &c.Context)
	}
	return &c, nil
}

// CreateConversation starts a new conversation for a user
func (db *DB) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*Conversation, error) {
	var c Conversation
	err := db.pool.QueryRow(ctx,
		`INSERT INTO conversations (user_id, title)
		 VALUES ($1, $2)
		 RETURNING id, user_id, title, created_at, updated_at`,
		userID, title,
	).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &c, nil
}

// ListConversations retrieves a user's conversations, most recently active first
func (db *DB) ListConversations(ctx context.Context, userID uuid.UUID) ([]Conversation, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, title, context, created_at, updated_at
		 FROM conversations WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var conversations []Conversation
	for rows.Next() {
		var c Conversation
		var contextJSON []byte
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &contextJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if contextJSON != nil {
			_ = json.Unmarshal(contextJSON, &c.Context)
		}
		conversations = append(conversations, c)
	}
	return conversations, nil
}

// AddMessage appends a role-tagged message and bumps the conversation's activity time
func (db *DB) AddMessage(ctx context.Context, conversationID uuid.UUID, role, content string) (*Message, error) {
	var m Message
	err := db.pool.QueryRow(ctx,
		`INSERT INTO messages (conversation_id, role, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, conversation_id, role, content, created_at`,
		conversationID, role, content,
	).Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add message: %w", err)
	}

	_, _ = db.pool.Exec(ctx,
		`UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)

	return &m, nil
}

// ListMessages retrieves all messages in a conversation in chronological order
func (db *DB) ListMessages(ctx context.Context, conversationID uuid.UUID) ([]Message, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at
		 FROM messages WHERE conversation_id = $1
		 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// GetRecentMessages retrieves the last n messages in chronological order
func (db *DB) GetRecentMessages(ctx context.Context, conversationID uuid.UUID, n int) ([]Message, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, conversation_id, role, content, created_at FROM (
		   SELECT id, conversation_id, role, content, created_at
		   FROM messages WHERE conversation_id = $1
		   ORDER BY created_at DESC LIMIT $2
		 ) recent ORDER BY created_at ASC`,
		conversationID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}
