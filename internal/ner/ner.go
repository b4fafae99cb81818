package ner

import "context"

// Entity is one span tagged by a recognizer.
type Entity struct {
	Word  string  `json:"word"`
	Group string  `json:"entity_group"`
	Score float32 `json:"score"`
}

// Recognizer tags entities in free text. Implementations are read-only and
// safe for concurrent use.
type Recognizer interface {
	Name() string
	Recognize(ctx context.Context, text string) ([]Entity, error)
}

// Location-like entity groups across recognizers: LOC is the BIO-tagging
// label family, GPE the geo-political label used by parser-style models.
func IsLocation(group string) bool {
	return group == "LOC" || group == "GPE"
}
