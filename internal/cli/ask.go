// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/verity-tui/internal/engine"
	"github.com/jeranaias/verity-tui/internal/query"
)

// =============================================================================
// ONE-SHOT ASK
// =============================================================================

// HandleAsk submits one question and writes the streamed reply to stdout.
func HandleAsk(p *ArgParser) error {
	text := p.JoinPositionalFrom(0)
	if text == "" {
		return errors.New("usage: verity ask <question>")
	}

	rt, err := NewRuntime(p)
	if err != nil {
		return err
	}
	defer rt.Close()

	// Ctrl-C cancels the turn; the partial reply stays on screen.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		rt.Eng.CancelTurn()
	}()

	msg, err := rt.Eng.Submit(context.Background(), text)
	if errors.Is(err, query.ErrInvalidInput) {
		return errors.New("usage: verity ask <question>")
	}
	if err != nil {
		return err
	}

	return streamReply(rt.Eng, msg.ID, os.Stdout)
}

// streamReply drains engine updates for one assistant message, writing
// content increments as they land. Content updates may coalesce under
// load; each one re-reads the full message so nothing is lost.
func streamReply(eng *engine.Engine, id string, out *os.File) error {
	printed := 0

	flush := func() {
		content := messageContent(eng, id)
		if len(content) > printed {
			fmt.Fprint(out, content[printed:])
			printed = len(content)
		}
	}

	for u := range eng.Updates() {
		if u.MessageID != id {
			continue
		}
		switch u.Kind {
		case engine.UpdateContent:
			flush()

		case engine.UpdateCompleted, engine.UpdateCancelled:
			flush()
			fmt.Fprintln(out)
			return nil

		case engine.UpdateFailed:
			flush()
			fmt.Fprintln(out)
			return fmt.Errorf("la réponse a échoué: %s", u.Reason)
		}
	}
	return nil
}

// messageContent finds a message's current content by id.
func messageContent(eng *engine.Engine, id string) string {
	for _, m := range eng.Messages() {
		if m.ID == id {
			return m.Content
		}
	}
	return ""
}
