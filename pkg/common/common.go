package common

// EntityNode represents a node in a book's knowledge graph. An entity can be
// a character, location, artifact, or any other narrative concept. Each node
// accumulates summary text incrementally as more of the book is processed.
//
// The Summary map is keyed by chapter range ("c3" for a single chapter,
// "c3-5" for a span) and holds the summary produced while reading that range.
// Keys are never overwritten: each pass through the book appends new ranges
// and leaves earlier ones untouched.
type EntityNode struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Category  string            `json:"category"`
	Summary   map[string]string `json:"summary"`
	Relations []Relation        `json:"relations"`
}

// Relation is a directed, labeled connection from the owning entity to
// another entity, referenced by name. A pair of entities can be connected by
// several relations with different types, so relations form a list rather
// than a map.
type Relation struct {
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Edge is a fully-qualified relation with an explicit source, as stored in
// the graph. Alias edges carry the reserved type "alias_of" and are excluded
// from traversal.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// EdgeTypeAlias is the reserved edge type that marks an alias redirect.
const EdgeTypeAlias = "alias_of"

// ExtractedEntity is the shape the generation service returns for a single
// entity during extraction. The summary arrives as plain text and is keyed
// by the chapter range on receipt.
type ExtractedEntity struct {
	Name          string              `json:"name"`
	Category      string              `json:"category"`
	Summary       string              `json:"summary"`
	Relationships []ExtractedRelation `json:"relationships"`
}

// ExtractedRelation mirrors Relation on the extraction wire format.
type ExtractedRelation struct {
	Target   string `json:"target"`
	Relation string `json:"relation"`
}
