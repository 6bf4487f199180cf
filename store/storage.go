package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"qa/types"
)

// Storer persists knowledge documents under an append-only, key-addressed
// layout:
//
//	count                  -> number of published documents
//	{id}/name              -> file name
//	{id}/uploader          -> uploader
//	{id}/count             -> number of chunks
//	{id}/{chunk}/vector    -> embedding vector
//	{id}/{chunk}/content   -> chunk text
//	{id}/{chunk}/page      -> chunk page
//
// A document becomes visible to scans over [0, count) only once the count
// key has been advanced, which happens strictly after every other write.
type Storer interface {
	Persist(ctx context.Context, knowledge types.Knowledge, vectors [][]float32) (int, error)
	Load(ctx context.Context, id int, indices []int) (types.Knowledge, error)
	ChunkContent(ctx context.Context, id, chunk int) (string, error)
	RebuildVectors(ctx context.Context) (map[int][][]float32, error)
	RebuildNames(ctx context.Context) ([]string, error)
}

var ErrChunkMismatch = errors.New("chunk count does not match vector count")

type Storage struct {
	kv KVStorer
}

func New(kv KVStorer) *Storage {
	return &Storage{kv: kv}
}

const countKey = "count"

func nameKey(id int) string       { return strconv.Itoa(id) + "/name" }
func uploaderKey(id int) string   { return strconv.Itoa(id) + "/uploader" }
func chunkCountKey(id int) string { return strconv.Itoa(id) + "/count" }
func vectorKey(id, chunk int) string {
	return strconv.Itoa(id) + "/" + strconv.Itoa(chunk) + "/vector"
}
func contentKey(id, chunk int) string {
	return strconv.Itoa(id) + "/" + strconv.Itoa(chunk) + "/content"
}
func pageKey(id, chunk int) string {
	return strconv.Itoa(id) + "/" + strconv.Itoa(chunk) + "/page"
}

// Count reads the number of published documents. An absent key means an
// empty store, not an error.
func (s *Storage) Count(ctx context.Context) (int, error) {
	data, err := s.kv.Read(countKey)
	if errors.Is(err, ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return decodeInt(data)
}

// Persist writes a document and all of its chunk records, then advances the
// count key to publish it. The count write is last on purpose: a reader
// scanning [0, count) never observes a half-written document. Returns the
// new document id.
func (s *Storage) Persist(ctx context.Context, knowledge types.Knowledge, vectors [][]float32) (int, error) {
	if len(knowledge.Chunks) != len(vectors) {
		return 0, fmt.Errorf("%w: %d chunks, %d vectors", ErrChunkMismatch, len(knowledge.Chunks), len(vectors))
	}

	id, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.kv.Write(nameKey(id), []byte(knowledge.FileName)); err != nil {
		return 0, err
	}
	if err := s.kv.Write(uploaderKey(id), []byte(knowledge.Uploader)); err != nil {
		return 0, err
	}
	if err := s.kv.Write(chunkCountKey(id), encodeInt(len(vectors))); err != nil {
		return 0, err
	}
	for j, chunk := range knowledge.Chunks {
		if err := s.kv.Write(vectorKey(id, j), encodeVector(vectors[j])); err != nil {
			return 0, err
		}
		if err := s.kv.Write(contentKey(id, j), []byte(chunk.Content)); err != nil {
			return 0, err
		}
		if err := s.kv.Write(pageKey(id, j), encodeInt(chunk.Page)); err != nil {
			return 0, err
		}
	}

	if err := s.kv.Write(countKey, encodeInt(id+1)); err != nil {
		return 0, err
	}
	return id, nil
}

// Load fetches the document's name and uploader plus the content and page of
// every requested chunk, in the caller-supplied index order. Indices may be
// non-contiguous or repeated; any index outside [0, chunkCount) is an error.
func (s *Storage) Load(ctx context.Context, id int, indices []int) (types.Knowledge, error) {
	var knowledge types.Knowledge

	chunkCount, err := s.chunkCount(id)
	if err != nil {
		return knowledge, err
	}

	data, err := s.kv.Read(nameKey(id))
	if err != nil {
		return knowledge, err
	}
	knowledge.FileName = decodeString(data)

	data, err = s.kv.Read(uploaderKey(id))
	if err != nil {
		return knowledge, err
	}
	knowledge.Uploader = decodeString(data)

	for _, j := range indices {
		if j < 0 || j >= chunkCount {
			return types.Knowledge{}, fmt.Errorf("chunk index %d out of range [0,%d)", j, chunkCount)
		}
		data, err := s.kv.Read(contentKey(id, j))
		if err != nil {
			return types.Knowledge{}, err
		}
		content := decodeString(data)

		data, err = s.kv.Read(pageKey(id, j))
		if err != nil {
			return types.Knowledge{}, err
		}
		page, err := decodeInt(data)
		if err != nil {
			return types.Knowledge{}, err
		}
		knowledge.Chunks = append(knowledge.Chunks, types.Chunk{Content: content, Page: page})
	}
	return knowledge, nil
}

// ChunkContent reads a single chunk's exact text. The rerank phase uses it
// so only coarse candidates cost a storage read.
func (s *Storage) ChunkContent(ctx context.Context, id, chunk int) (string, error) {
	data, err := s.kv.Read(contentKey(id, chunk))
	if err != nil {
		return "", err
	}
	return decodeString(data), nil
}

// RebuildVectors scans every published document and loads all of its
// vectors. Used once at startup to warm the in-memory index.
func (s *Storage) RebuildVectors(ctx context.Context) (map[int][][]float32, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	vectors := make(map[int][][]float32, count)
	for id := 0; id < count; id++ {
		chunkCount, err := s.chunkCount(id)
		if err != nil {
			return nil, err
		}
		docVectors := make([][]float32, 0, chunkCount)
		for j := 0; j < chunkCount; j++ {
			data, err := s.kv.Read(vectorKey(id, j))
			if err != nil {
				return nil, err
			}
			docVectors = append(docVectors, decodeVector(data))
		}
		vectors[id] = docVectors
	}
	return vectors, nil
}

// RebuildNames returns the file name of every published document, in id
// order.
func (s *Storage) RebuildNames(ctx context.Context) ([]string, error) {
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, count)
	for id := 0; id < count; id++ {
		data, err := s.kv.Read(nameKey(id))
		if err != nil {
			return nil, err
		}
		names = append(names, decodeString(data))
	}
	return names, nil
}

func (s *Storage) chunkCount(id int) (int, error) {
	data, err := s.kv.Read(chunkCountKey(id))
	if err != nil {
		return 0, err
	}
	return decodeInt(data)
}
