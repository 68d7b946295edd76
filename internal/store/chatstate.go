package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ActionAwaitingPrice marks a chat whose next text message is a new price.
const ActionAwaitingPrice = "awaiting_price"

// ChatState is what the bot expects next from an operator chat.
type ChatState struct {
	ChatID  int64
	OrderID string
	Action  string
}

func (s *Store) SetChatState(ctx context.Context, st ChatState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO telegram_states (chat_id, order_id, action)
		VALUES (?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			order_id = excluded.order_id,
			action = excluded.action,
			updated_at = CURRENT_TIMESTAMP
	`, st.ChatID, st.OrderID, st.Action)
	if err != nil {
		return fmt.Errorf("upsert chat state: %w", err)
	}
	return nil
}

func (s *Store) GetChatState(ctx context.Context, chatID int64) (ChatState, error) {
	st := ChatState{ChatID: chatID}
	err := s.db.QueryRowContext(ctx, `
		SELECT order_id, action FROM telegram_states WHERE chat_id = ?
	`, chatID).Scan(&st.OrderID, &st.Action)
	if errors.Is(err, sql.ErrNoRows) {
		return ChatState{}, ErrNotFound
	}
	if err != nil {
		return ChatState{}, fmt.Errorf("query chat state: %w", err)
	}
	return st, nil
}

func (s *Store) ClearChatState(ctx context.Context, chatID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM telegram_states WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("delete chat state: %w", err)
	}
	return nil
}
