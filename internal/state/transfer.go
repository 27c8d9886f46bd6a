package state

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ayoisaiah/webfocus/internal/models"
)

// importKinds lists the keys an import document must carry along with the
// JSON kind each must have.
var importKinds = []struct {
	key      string
	kind     string
	required bool
}{
	{key: keyCategories, kind: "array", required: true},
	{key: keyAssignments, kind: "object", required: true},
	{key: keyRules, kind: "array", required: true},
	{key: keyTrackedTime, kind: "object", required: true},
	{key: keyCategoryTime, kind: "object", required: true},
	{key: keyDailyDomain, kind: "object", required: true},
	{key: keyDailyCategory, kind: "object", required: true},
	{key: keyHourly, kind: "object", required: true},
	{key: keyRatings, kind: "object"},
	{key: keyPomodoroStats, kind: "object"},
	{key: keyBlockPage, kind: "object"},
	{key: keyPomodoro, kind: "object"},
}

// Export encodes the full state as an indented JSON document.
func (s *State) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return json.MarshalIndent(s.data, "", "  ")
}

// Import validates an export document and replaces the whole state with it.
// Optional keys absent from the document take their default values.
func (s *State) Import(doc []byte) error {
	snap, err := s.decodeImport(doc)
	if err != nil {
		return err
	}

	s.repair(&snap)

	s.mu.Lock()
	s.data = snap
	s.mu.Unlock()

	s.logger.Info("state imported")

	return s.commit(Imported)
}

func (s *State) decodeImport(doc []byte) (models.Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(doc, &raw); err != nil || raw == nil {
		return models.Snapshot{}, errImportDecode.Wrap(err)
	}

	for _, k := range importKinds {
		v, ok := raw[k.key]
		if !ok {
			if k.required {
				return models.Snapshot{}, errImportMissingKey.Fmt(k.key)
			}

			continue
		}

		if jsonKind(v) != k.kind {
			return models.Snapshot{}, errImportKeyType.Fmt(k.key, k.kind)
		}
	}

	snap := s.seed()

	for key, ptr := range fields(&snap) {
		v, ok := raw[key]
		if !ok {
			continue
		}

		if err := json.Unmarshal(v, ptr); err != nil {
			return models.Snapshot{}, errImportDecode.Wrap(fmt.Errorf("%s: %w", key, err))
		}
	}

	return snap, nil
}

func jsonKind(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return ""
	}

	switch v[0] {
	case '[':
		return "array"
	case '{':
		return "object"
	default:
		return "scalar"
	}
}
