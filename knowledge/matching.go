package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"qa/store"
)

// Floor for the text similarity: a coarse candidate that shares no
// characters with the query is dampened, not eliminated outright.
const textSimilarityMin = 0.4

var (
	ErrNoMatch           = errors.New("no candidate matched")
	ErrDimensionMismatch = errors.New("vector dimensions differ")
)

// Matched is one coarse-search candidate: a chunk of a document plus its
// running similarity score.
type Matched struct {
	Index       int // document id
	VectorIndex int // chunk index within the document
	Len         int // total chunk count of the document
	Similarity  float32
}

// MatchTopN scans every cached vector and keeps the best total/fraction
// candidates, sorted descending by cosine similarity. It does no storage
// I/O. Zero-magnitude vectors score NaN and are excluded from candidacy.
func MatchTopN(vectors map[int][][]float32, query []float32, fraction int) ([]Matched, error) {
	totalLen := 0
	for _, vecList := range vectors {
		totalLen += len(vecList)
	}
	n := totalLen / fraction

	var topN []Matched
	for index, vecList := range vectors {
		for vectorIndex, vec := range vecList {
			similarity, err := cosineSimilarity(query, vec)
			if err != nil {
				return nil, err
			}
			if math.IsNaN(float64(similarity)) {
				continue
			}
			matched := Matched{
				Index:       index,
				VectorIndex: vectorIndex,
				Len:         len(vecList),
				Similarity:  similarity,
			}
			if len(topN) < n {
				topN = append(topN, matched)
				sortBySimilarity(topN)
			} else if n > 0 && matched.Similarity > topN[len(topN)-1].Similarity {
				topN[len(topN)-1] = matched
				sortBySimilarity(topN)
			}
		}
	}
	return topN, nil
}

// MatchFinal reranks the coarse candidates by exact text similarity against
// the query and returns the single best one. This is the only phase that
// reads chunk content from storage, and only for the candidate set.
func MatchFinal(ctx context.Context, storage store.Storer, topN []Matched, query string, weight float32) (Matched, error) {
	if len(topN) == 0 {
		return Matched{}, ErrNoMatch
	}
	reranked := make([]Matched, 0, len(topN))
	for _, matched := range topN {
		content, err := storage.ChunkContent(ctx, matched.Index, matched.VectorIndex)
		if err != nil {
			return Matched{}, err
		}
		matched.Similarity += float32(jaroSimilarity(query, content)) * weight
		reranked = append(reranked, matched)
	}
	// Stable sort: equal final scores keep their coarse-phase order.
	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].Similarity > reranked[j].Similarity
	})
	return reranked[0], nil
}

func sortBySimilarity(matches []Matched) {
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
}

// jaroSimilarity is a Jaro-style metric with no search window: a character
// of a may match any unconsumed equal character of b, and a transposition is
// counted whenever a match lands earlier in b than the previous one.
func jaroSimilarity(a, b string) float64 {
	aRunes := []rune(a)
	bRunes := []rune(b)
	aLen := len(aRunes)
	bLen := len(bRunes)

	if aLen == 0 && bLen == 0 {
		return 1.0
	}
	if aLen == 0 || bLen == 0 {
		return 0.0
	}
	if aLen == 1 && bLen == 1 {
		if aRunes[0] == bRunes[0] {
			return 1.0
		}
		return 0.0
	}

	bConsumed := make([]bool, bLen)
	matches := 0.0
	transpositions := 0.0
	bMatchIndex := 0

	for _, aElem := range aRunes {
		for j, bElem := range bRunes {
			if aElem == bElem && !bConsumed[j] {
				bConsumed[j] = true
				matches++
				if j < bMatchIndex {
					transpositions++
				}
				bMatchIndex = j
				break
			}
		}
	}

	if matches == 0 {
		return textSimilarityMin
	}
	res := (1.0 / 3.0) * (matches/float64(aLen) + matches/float64(bLen) + (matches-transpositions)/matches)
	return math.Max(res, textSimilarityMin)
}

func cosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, magA, magB float32
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}
	return dot / (float32(math.Sqrt(float64(magA))) * float32(math.Sqrt(float64(magB)))), nil
}
