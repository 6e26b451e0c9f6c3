package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"drafthub/internal/adapter"
	"drafthub/internal/domain/models"
)

// RegisterDevAdapters binds log-and-acknowledge senders for both channels.
// They require no external gateway, so approve/edit work end to end in a
// local environment. The email binding is synchronous; the chat binding is
// asynchronous, which keeps both registry forms exercised in dev.
func RegisterDevAdapters(registry *adapter.Registry, logger *slog.Logger) error {
	email := func(_ context.Context, payload adapter.Payload) (string, error) {
		msgID := fmt.Sprintf("dev-email-%s", uuid.New().String())
		logger.Info("dev email send",
			"draft_id", payload.DraftID,
			"conversation_id", payload.ConversationID,
			"msg_id", msgID,
		)
		return msgID, nil
	}
	if err := registry.Register(string(models.ChannelEmail), email); err != nil {
		return err
	}

	chat := func(ctx context.Context, payload adapter.Payload) (<-chan adapter.SendResult, error) {
		results := make(chan adapter.SendResult, 1)
		go func() {
			msgID := fmt.Sprintf("dev-chat-%s", uuid.New().String())
			logger.Info("dev chat send",
				"draft_id", payload.DraftID,
				"conversation_id", payload.ConversationID,
				"msg_id", msgID,
			)
			results <- adapter.SendResult{MsgID: msgID}
		}()
		return results, nil
	}
	return registry.Register(string(models.ChannelChat), chat)
}
