// Package tokenizer implements SentencePiece unigram tokenization for the
// corpus-compilation side of the pipeline. Token ids are raw SentencePiece
// indices; the symbol table and the compiled corpus share this id space.
package tokenizer

import (
	"fmt"
)

const negInf = -1e9

// Tokenizer encodes text into SentencePiece token ids using the unigram
// (Viterbi) algorithm.
type Tokenizer struct {
	scores      map[string]float64 // matchable piece -> log probability
	ids         map[string]int32   // matchable piece -> index
	idToPiece   []string
	unkID       int32
	unkScore    float64
	maxTokenLen int // in runes
}

// New loads a tokenizer from a SentencePiece .model file.
func New(modelPath string) (*Tokenizer, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("loading model: %w", err)
	}
	return FromModel(model)
}

// FromModel builds a tokenizer from an already loaded model.
func FromModel(model *Model) (*Tokenizer, error) {
	t := &Tokenizer{
		scores:    make(map[string]float64, len(model.Pieces)),
		ids:       make(map[string]int32, len(model.Pieces)),
		idToPiece: make([]string, len(model.Pieces)),
		unkID:     -1,
	}

	for i, piece := range model.Pieces {
		t.idToPiece[i] = piece.Piece

		switch piece.Type {
		case PieceUnknown:
			t.unkID = int32(i)
			t.unkScore = float64(piece.Score)
			continue
		case PieceControl, PieceUnused:
			// Control markers never match corpus text.
			continue
		}

		t.scores[piece.Piece] = float64(piece.Score)
		t.ids[piece.Piece] = int32(i)
		if n := len([]rune(piece.Piece)); n > t.maxTokenLen {
			t.maxTokenLen = n
		}
	}

	if t.unkID < 0 {
		return nil, fmt.Errorf("model defines no unknown piece")
	}
	return t, nil
}

// VocabSize returns the number of vocabulary pieces.
func (t *Tokenizer) VocabSize() int {
	return len(t.idToPiece)
}

// IDToPiece returns the piece string for a token id, or "" when the id is
// out of range.
func (t *Tokenizer) IDToPiece(id int32) string {
	if id < 0 || int(id) >= len(t.idToPiece) {
		return ""
	}
	return t.idToPiece[id]
}

// Encode tokenizes text into token ids. Characters no piece covers map to
// the unknown token one rune at a time.
func (t *Tokenizer) Encode(text string) []int32 {
	normalized := normalize(text)
	if normalized == "" {
		return nil
	}

	runes := []rune(normalized)
	n := len(runes)

	// best[i] holds the best log probability of tokenizing runes[0:i],
	// parent[i] the start of the token ending at i.
	best := make([]float64, n+1)
	parent := make([]int, n+1)
	tokenAt := make([]int32, n+1)
	for i := 1; i <= n; i++ {
		best[i] = negInf
		parent[i] = -1
	}

	for i := 1; i <= n; i++ {
		maxLen := t.maxTokenLen
		if maxLen > i {
			maxLen = i
		}
		for length := 1; length <= maxLen; length++ {
			j := i - length
			substr := string(runes[j:i])
			score, ok := t.scores[substr]
			if !ok {
				continue
			}
			if candidate := best[j] + score; candidate > best[i] {
				best[i] = candidate
				parent[i] = j
				tokenAt[i] = t.ids[substr]
			}
		}
		if parent[i] < 0 {
			// No piece ends here: consume one rune as unknown.
			best[i] = best[i-1] + t.unkScore
			parent[i] = i - 1
			tokenAt[i] = t.unkID
		}
	}

	// Backtrack, then reverse into encounter order.
	var reversed []int32
	for pos := n; pos > 0; pos = parent[pos] {
		reversed = append(reversed, tokenAt[pos])
	}
	ids := make([]int32, len(reversed))
	for i, id := range reversed {
		ids[len(ids)-1-i] = id
	}
	return ids
}
