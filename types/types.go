package types

// Chunk is a token-bounded slice of a document's text. Page is the 1-based
// index of the source unit (PDF page, paragraph block) where the chunk
// started accumulating; a chunk may run past that unit.
type Chunk struct {
	Content string
	Page    int
}

// Knowledge is one ingested document: chunks are in positional order,
// adjacent chunks contiguous in the original text.
type Knowledge struct {
	FileName string
	Uploader string
	Chunks   []Chunk
}

type Config struct {
	ServerAddr string
	StorageDir string
	FilesDir   string

	ChunkTokens int
	ChunkHead   int
	ChunkTail   int

	// MatchFraction sets the coarse candidate count to totalChunks/MatchFraction.
	MatchFraction int
	// TextSimWeight scales the rerank text similarity before it is added
	// to the cosine score.
	TextSimWeight float32

	EmbeddingModel string
	ChatModel      string
	OpenAIKey      string
}
