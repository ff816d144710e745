package tokenizer

import "strings"

const sentencePieceSpace = '▁' // U+2581 LOWER ONE EIGHTH BLOCK

// normalize prepares text for tokenization following SentencePiece
// conventions: collapse whitespace runs, drop leading and trailing
// whitespace, and mark every word start with ▁ (including the dummy
// prefix on the first word).
func normalize(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	return string(sentencePieceSpace) + strings.Join(fields, string(sentencePieceSpace))
}
