package core

// Document is the unit stored in a DocumentStore.
type Document struct {
	ID       string         `json:"id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Vector is the unit stored in a VectorStore: an embedding with optional
// metadata.
type Vector struct {
	ID       string         `json:"id"`
	Values   []float64      `json:"values"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocumentStore is the minimal capability contract for document storage
// collaborators. All operations address documents by string id; similarity
// search, chunking and parsing are out of scope for the orchestration core.
type DocumentStore interface {
	AddDocument(doc Document) error
	GetDocument(id string) (Document, bool)
	UpdateDocument(id string, doc Document) error
	DeleteDocument(id string) error
	Count() int
}

// VectorStore is the minimal capability contract for vector storage
// collaborators. Similarity math is the store's concern, never the
// orchestration core's.
type VectorStore interface {
	AddVector(vec Vector) error
	GetVector(id string) (Vector, bool)
	UpdateVector(id string, vec Vector) error
	DeleteVector(id string) error
}
