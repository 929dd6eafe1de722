package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// signaturePlaceholder replaces stored signature strokes in the metadata
// snapshot.
const signaturePlaceholder = "(gespeichert)"

// RedactMetadata renders the submission as indented UTF-8 JSON with all
// inline image payloads removed: required photos keep only their titles,
// checklist and damage photo lists become counts, and present signatures
// become a placeholder. Every other field, including fields this service
// does not know, passes through unchanged.
func RedactMetadata(sub *Submission) ([]byte, error) {
	raw, err := sub.rawFields()
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(raw))
	for key, val := range raw {
		switch key {
		case "photos":
			titles, err := photoTitles(val)
			if err != nil {
				return nil, fmt.Errorf("redact %s: %w", key, err)
			}
			out[key] = titles
		case "signatures":
			redacted, err := redactSignatures(val)
			if err != nil {
				return nil, fmt.Errorf("redact %s: %w", key, err)
			}
			out[key] = redacted
		case "damage", "exterior", "interior":
			entries, err := photosToCounts(val)
			if err != nil {
				return nil, fmt.Errorf("redact %s: %w", key, err)
			}
			out[key] = entries
		default:
			out[key] = val
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return buf.Bytes(), nil
}

// rawFields returns the submission's top-level fields as submitted. For
// submissions built in code rather than decoded from JSON it falls back to
// marshaling the typed struct.
func (s *Submission) rawFields() (map[string]json.RawMessage, error) {
	if s.raw != nil {
		return s.raw, nil
	}
	type plain Submission
	data, err := json.Marshal((*plain)(s))
	if err != nil {
		return nil, fmt.Errorf("marshal submission: %w", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		raw[k] = v
	}
	return raw, nil
}

func photoTitles(val json.RawMessage) ([]map[string]any, error) {
	var photos []map[string]any
	if err := json.Unmarshal(val, &photos); err != nil {
		return nil, err
	}
	titles := make([]map[string]any, 0, len(photos))
	for _, p := range photos {
		titles = append(titles, map[string]any{"title": p["title"]})
	}
	return titles, nil
}

func redactSignatures(val json.RawMessage) (map[string]string, error) {
	var sigs map[string]string
	if err := json.Unmarshal(val, &sigs); err != nil {
		return nil, err
	}
	redacted := make(map[string]string, len(sigs))
	for role, data := range sigs {
		if data != "" {
			redacted[role] = signaturePlaceholder
		}
	}
	return redacted, nil
}

// photosToCounts replaces each entry's photo list with its length, keeping
// all other entry fields byte-for-byte.
func photosToCounts(val json.RawMessage) ([]map[string]any, error) {
	var entries []map[string]any
	if err := json.Unmarshal(val, &entries); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		count := 0
		if photos, ok := entry["photos"].([]any); ok {
			count = len(photos)
		}
		entry["photos"] = count
	}
	return entries, nil
}
