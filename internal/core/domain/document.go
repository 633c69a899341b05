package domain

// Document represents one user submission moving through the pipeline.
// It exists for the lifetime of a single request and is never persisted.
type Document struct {
	// ID is the unique submission identifier.
	ID string

	// Text is the raw input text.
	Text string

	// SourceLang is the declared or detected language of the input.
	SourceLang Language

	// TargetLang is the language the simplification must be written in.
	TargetLang Language

	// Level is the requested simplification level.
	Level Level
}

// Chunk is a bounded, sentence-aligned slice of a Document.
// Chunks are immutable once produced by the chunker.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Ordinal is the position within the document. Ordinals are
	// contiguous and unique, starting at zero.
	Ordinal int

	// Text is the chunk content.
	Text string

	// Offset is the byte offset of the chunk text within the document.
	Offset int

	// SentenceCount is the number of sentences in the chunk.
	SentenceCount int

	// WordCount is the number of words in the chunk.
	WordCount int
}
