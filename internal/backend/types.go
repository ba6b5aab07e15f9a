package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// SourceRef is one grounding document cited by an answer.
type SourceRef struct {
	KnowledgeBaseID string `json:"kb"`
	Title           string `json:"title,omitempty"`
	Filepath        string `json:"filepath,omitempty"`
	URL             string `json:"url,omitempty"`
}

// UnmarshalJSON also accepts a bare string, which older backends send as the
// whole citation. The string becomes the title.
func (s *SourceRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var title string
		if err := json.Unmarshal(trimmed, &title); err != nil {
			return err
		}
		*s = SourceRef{Title: title}
		return nil
	}
	type plain SourceRef
	var out plain
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	*s = SourceRef(out)
	return nil
}

// ChatResponse is the orchestrator's answer. Agent is empty for routing-only
// or legacy responses.
type ChatResponse struct {
	Message string      `json:"message"`
	Agent   string      `json:"agent,omitempty"`
	Sources []SourceRef `json:"sources,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// wireResponse distinguishes a missing message from an empty one.
type wireResponse struct {
	Message *string     `json:"message"`
	Agent   string      `json:"agent"`
	Sources []SourceRef `json:"sources"`
}
