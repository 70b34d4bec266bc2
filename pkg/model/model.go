// Package model defines core data models for the entity mirror.
// Entities are stored as one row per ID with nested payloads kept as
// opaque JSON blobs; only the read side ever decodes them.
package model

import (
	"encoding/json"
	"strings"
)

// Entity is one parsed record from the dump stream.
// The five nested payloads are kept raw: the importer never validates or
// rewrites their structure, it only re-serializes them per field.
type Entity struct {
	ID           string          `json:"id"`
	Kind         string          `json:"type"` // "item" or "property" in Wikidata dumps
	Labels       json.RawMessage `json:"labels,omitempty"`
	Descriptions json.RawMessage `json:"descriptions,omitempty"`
	Aliases      json.RawMessage `json:"aliases,omitempty"`
	Claims       json.RawMessage `json:"claims,omitempty"`
	Sitelinks    json.RawMessage `json:"sitelinks,omitempty"`
	Modified     string          `json:"modified,omitempty"`
}

// StoredEntity is the projected row actually persisted.
// Each payload is an independently serialized JSON text blob, defaulting
// to "{}" when the source entity lacks the field.
type StoredEntity struct {
	ID           string `json:"id"`
	Kind         string `json:"type"`
	Labels       string `json:"labels_json"`
	Descriptions string `json:"descriptions_json"`
	Aliases      string `json:"aliases_json"`
	Claims       string `json:"claims_json"`
	Sitelinks    string `json:"sitelinks_json"`
	Modified     string `json:"modified,omitempty"`
}

// Checkpoint is the durable import progress marker.
// BytesRead counts decompressed dump bytes; resume skips forward to
// approximately this offset and relies on idempotent upserts for the
// overlap.
type Checkpoint struct {
	BytesRead        int64  `json:"bytes_read"`
	EntitiesImported int64  `json:"entities_imported"`
	LastID           string `json:"last_id,omitempty"`
	Completed        bool   `json:"completed,omitempty"`
}

// SearchResult is one row of a full-text search response.
type SearchResult struct {
	ID          string `json:"id"`
	Kind        string `json:"type"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
}

// Stats summarizes the store contents.
type Stats struct {
	Total  int64            `json:"total"`
	ByKind map[string]int64 `json:"by_type"`
}

// NormalizeID canonicalizes an entity ID for lookup (q42 -> Q42).
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
