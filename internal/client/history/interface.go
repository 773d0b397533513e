// Package history persists the chat message log in a local sqlite database
// so a restart restores the conversation. The log is scoped by user id; the
// empty id holds the anonymous conversation.
package history

import (
	"context"

	"chatterm/internal/client/models"
)

type Repository interface {
	// Replace persists the whole log for userID in one transaction,
	// discarding what was there before. Called after every append; messages
	// are never individually deleted or edited.
	Replace(ctx context.Context, userID string, msgs []models.ChatMessage) error

	// List returns the log for userID in display order.
	List(ctx context.Context, userID string) ([]models.ChatMessage, error)
}
