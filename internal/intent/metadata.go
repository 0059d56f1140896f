package intent

import (
	"fmt"
	"os"
	"regexp"
)

// Metadata identifies an intent document without fully extracting it.
type Metadata struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	CreatedDate string `json:"created_date"`
	Format      string `json:"format"`
}

var (
	intentIDRe = regexp.MustCompile(`(\w+):([A-Za-z0-9_-]+)\s+a\s+\w+:Intent\b`)
	createdRe  = regexp.MustCompile(`\w+:created\s+"([^"]+)"`)
)

// ExtractMetadata reads id, description, and creation date directly from a
// structured intent file, so no external index is required.
func ExtractMetadata(path string) (Metadata, error) {
	meta := Metadata{
		ID:          "Unknown",
		Description: "Unknown intent",
		CreatedDate: "Unknown",
		Format:      "structured",
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("reading intent file %s: %w", path, err)
	}
	meta.merge(MetadataFromDocument(string(content)))
	return meta, nil
}

// MetadataFromDocument extracts metadata from structured intent content.
func MetadataFromDocument(content string) Metadata {
	meta := Metadata{Format: "structured"}

	m := intentIDRe.FindStringSubmatch(content)
	if m == nil {
		return meta
	}
	prefix, id := m[1], m[2]
	meta.ID = id

	// The description attached to the same subject that was declared as the
	// Intent, not just any description in the document.
	descPattern := regexp.MustCompile(
		regexp.QuoteMeta(prefix+":"+id) + `\s+a\s+\w+:Intent[^;]*;\s*dct:description\s+"([^"]+)"@en`)
	if dm := descPattern.FindStringSubmatch(content); dm != nil {
		meta.Description = dm[1]
	}

	if cm := createdRe.FindStringSubmatch(content); cm != nil {
		meta.CreatedDate = cm[1]
	}
	return meta
}

func (m *Metadata) merge(other Metadata) {
	if other.ID != "" {
		m.ID = other.ID
	}
	if other.Description != "" {
		m.Description = other.Description
	}
	if other.CreatedDate != "" {
		m.CreatedDate = other.CreatedDate
	}
}
