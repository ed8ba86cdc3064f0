package ai

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mrz1836/gitsmart/internal/domain"
	gserrors "github.com/mrz1836/gitsmart/internal/errors"
)

// Codex event types read from "codex exec --json".
const (
	codexThreadStarted = "thread.started"
	codexItemCompleted = "item.completed"
	codexTurnFailed    = "turn.failed"
	codexError         = "error"
	codexAgentMessage  = "agent_message"
)

// codexEvent is one line of the codex JSONL stream. Only the fields this
// package reads are declared.
type codexEvent struct {
	Type     string `json:"type"`
	ThreadID string `json:"thread_id"`
	Message  string `json:"message"`
	Item     *struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"item"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// parseCodexEvents folds a JSONL event stream into one result. The last
// agent message is the answer; a failure event marks the result failed.
// Lines that are not JSON are skipped.
func parseCodexEvents(data []byte) (*domain.AIResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %w", gserrors.ErrCodexInvocation, gserrors.ErrAIEmptyResponse)
	}

	result := &domain.AIResult{Success: true}
	parsed := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || line[0] != '{' {
			continue
		}
		var ev codexEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		parsed++

		switch ev.Type {
		case codexThreadStarted:
			result.SessionID = ev.ThreadID
		case codexItemCompleted:
			if ev.Item != nil && ev.Item.Type == codexAgentMessage {
				result.Output = ev.Item.Text
			}
		case codexTurnFailed, codexError:
			result.Success = false
			msg := ev.Message
			if ev.Error != nil && ev.Error.Message != "" {
				msg = ev.Error.Message
			}
			result.Error = strings.TrimSpace(msg)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read json events: %w", gserrors.ErrCodexInvocation, err)
	}
	if parsed == 0 {
		return nil, fmt.Errorf("%w: failed to parse json events (%d bytes)", gserrors.ErrCodexInvocation, len(data))
	}
	return result, nil
}
