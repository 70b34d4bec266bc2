package dump

import (
	"bytes"

	gojson "github.com/goccy/go-json"

	"github.com/wikimirror/wikimirror/pkg/model"
)

// ParseEntity parses one dump line into an entity, or returns nil when
// the line carries none. The enclosing array punctuation ("[", "]"), the
// per-element trailing comma, blank lines, malformed JSON and entities
// without an id all yield nil; this function never fails.
func ParseEntity(line []byte) *model.Entity {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil
	}
	if len(line) == 1 && (line[0] == '[' || line[0] == ']') {
		return nil
	}
	if line[len(line)-1] == ',' {
		line = line[:len(line)-1]
	}

	var e model.Entity
	if err := gojson.Unmarshal(line, &e); err != nil {
		return nil
	}
	if e.ID == "" {
		return nil
	}
	return &e
}

// Project reduces a parsed entity to its stored form. Absent nested
// payloads become "{}" and absent scalars stay empty; malformed nested
// structure is carried through untouched inside the blob.
func Project(e *model.Entity) *model.StoredEntity {
	return &model.StoredEntity{
		ID:           e.ID,
		Kind:         e.Kind,
		Labels:       blob(e.Labels),
		Descriptions: blob(e.Descriptions),
		Aliases:      blob(e.Aliases),
		Claims:       blob(e.Claims),
		Sitelinks:    blob(e.Sitelinks),
		Modified:     e.Modified,
	}
}

func blob(raw []byte) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}
