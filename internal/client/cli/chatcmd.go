package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"chatterm/internal/client/chat"
	"chatterm/internal/client/models"
)

// Chat opens an interactive chat sub-loop. History is restored for the
// current account (or the anonymous log), every exchange is persisted, and
// "/quit" returns to the main prompt.
func (a *App) Chat(ctx context.Context) error {
	sess := chat.NewSession(a.client, a.repo, a.logger, a.currentUserID(), a.config.ChatTimeout)
	sess.Load(ctx)

	for _, m := range sess.Messages() {
		printMessage(m)
	}
	printlnFn("Type a message, or /quit to leave the chat.")

	for {
		line, err := getSimpleText(a.reader, "you", os.Stdout)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "/quit" {
			return nil
		}

		reply, err := sess.Send(ctx, line)
		switch {
		case errors.Is(err, chat.ErrEmptyMessage):
			continue
		case errors.Is(err, chat.ErrSendInFlight):
			printlnFn("Still waiting for the previous reply.")
			continue
		case err != nil:
			printlnFn("Error:", err.Error())
			continue
		}

		printMessage(reply)
	}
}

func printMessage(m models.ChatMessage) {
	who := "you"
	if m.Sender == models.SenderAssistant {
		who = "ai"
	}
	printlnFn(fmt.Sprintf("[%s] %s", who, m.Text))
}
