package services

import (
	"encoding/json"
	"strings"
)

type PayloadKind int

const (
	PayloadEmpty PayloadKind = iota
	PayloadKnown
	PayloadUnknown
)

// AnalysisPayload is the typed view of a stored analysis snapshot. Raw keeps the
// original bytes for clients that want the untouched document.
type AnalysisPayload struct {
	Kind       PayloadKind
	SkinScores map[string]float64
	SkinIssues []string
	Concerns   []string
	Raw        json.RawMessage
}

// DecodeAnalysisPayload never fails. A document that is not a JSON object is
// Unknown; an object without any recognised field is also Unknown. Each field
// is decoded on its own so one malformed field does not hide the others.
func DecodeAnalysisPayload(raw []byte) AnalysisPayload {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return AnalysisPayload{Kind: PayloadEmpty}
	}

	payload := AnalysisPayload{Kind: PayloadUnknown, Raw: json.RawMessage(trimmed)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return payload
	}

	recognised := false
	if scoresRaw, ok := fields["skinScores"]; ok {
		if scores, ok := decodeScores(scoresRaw); ok {
			payload.SkinScores = scores
			recognised = true
		}
	}
	if issuesRaw, ok := fields["skinIssues"]; ok {
		if issues, ok := decodeLabels(issuesRaw); ok {
			payload.SkinIssues = issues
			recognised = true
		}
	}
	if concernsRaw, ok := fields["concerns"]; ok {
		if concerns, ok := decodeLabels(concernsRaw); ok {
			payload.Concerns = concerns
			recognised = true
		}
	}

	if recognised {
		payload.Kind = PayloadKnown
	}
	return payload
}

// Score returns the named score and whether it is usable. Zero counts as absent.
func (payload AnalysisPayload) Score(name string) (float64, bool) {
	value, ok := payload.SkinScores[name]
	if !ok || value == 0 {
		return 0, false
	}
	return value, true
}

// Object returns the raw document when it is a JSON object and {} otherwise.
func (payload AnalysisPayload) Object() json.RawMessage {
	if len(payload.Raw) > 0 && payload.Raw[0] == '{' {
		return payload.Raw
	}
	return json.RawMessage("{}")
}

func decodeScores(raw json.RawMessage) (map[string]float64, bool) {
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}

	scores := make(map[string]float64, len(entries))
	for name, value := range entries {
		var number float64
		if err := json.Unmarshal(value, &number); err != nil {
			continue
		}
		scores[name] = number
	}
	return scores, true
}

func decodeLabels(raw json.RawMessage) ([]string, bool) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}

	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		var label string
		if err := json.Unmarshal(entry, &label); err != nil {
			continue
		}
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		labels = append(labels, label)
	}
	return labels, true
}
