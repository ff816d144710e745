package tokenizer

import (
	"fmt"
	"math"
	"os"

	"google.golang.org/protobuf/encoding/protowire"
)

// PieceType mirrors the SentencePiece ModelProto.SentencePiece.Type enum.
type PieceType int32

const (
	PieceNormal      PieceType = 1
	PieceUnknown     PieceType = 2
	PieceControl     PieceType = 3
	PieceUserDefined PieceType = 4
	PieceUnused      PieceType = 5
	PieceByte        PieceType = 6
)

// Piece is one vocabulary entry of a SentencePiece model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// Model is a loaded SentencePiece model, reduced to its vocabulary.
type Model struct {
	Pieces []Piece
}

// Field numbers from sentencepiece_model.proto.
const (
	modelFieldPieces = 1

	pieceFieldPiece = 1
	pieceFieldScore = 2
	pieceFieldType  = 3
)

// LoadModel reads a SentencePiece .model file.
//
// The file is a ModelProto message, but only the vocabulary pieces are
// needed here, so it is walked with protowire and the trainer/normalizer
// sections are skipped.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	m := &Model{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("parsing model: %w", protowire.ParseError(n))
		}
		data = data[n:]

		if num == modelFieldPieces && typ == protowire.BytesType {
			raw, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return nil, fmt.Errorf("parsing piece: %w", protowire.ParseError(n))
			}
			data = data[n:]

			piece, err := parsePiece(raw)
			if err != nil {
				return nil, err
			}
			m.Pieces = append(m.Pieces, piece)
			continue
		}

		n = protowire.ConsumeFieldValue(num, typ, data)
		if n < 0 {
			return nil, fmt.Errorf("parsing model field %d: %w", num, protowire.ParseError(n))
		}
		data = data[n:]
	}

	if len(m.Pieces) == 0 {
		return nil, fmt.Errorf("model %s contains no vocabulary pieces", path)
	}
	return m, nil
}

func parsePiece(raw []byte) (Piece, error) {
	// Type defaults to NORMAL when the field is absent (proto2 default).
	p := Piece{Type: PieceNormal}

	for len(raw) > 0 {
		num, typ, n := protowire.ConsumeTag(raw)
		if n < 0 {
			return p, fmt.Errorf("parsing piece tag: %w", protowire.ParseError(n))
		}
		raw = raw[n:]

		switch {
		case num == pieceFieldPiece && typ == protowire.BytesType:
			s, n := protowire.ConsumeBytes(raw)
			if n < 0 {
				return p, fmt.Errorf("parsing piece text: %w", protowire.ParseError(n))
			}
			p.Piece = string(s)
			raw = raw[n:]

		case num == pieceFieldScore && typ == protowire.Fixed32Type:
			v, n := protowire.ConsumeFixed32(raw)
			if n < 0 {
				return p, fmt.Errorf("parsing piece score: %w", protowire.ParseError(n))
			}
			p.Score = math.Float32frombits(v)
			raw = raw[n:]

		case num == pieceFieldType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(raw)
			if n < 0 {
				return p, fmt.Errorf("parsing piece type: %w", protowire.ParseError(n))
			}
			p.Type = PieceType(v)
			raw = raw[n:]

		default:
			n := protowire.ConsumeFieldValue(num, typ, raw)
			if n < 0 {
				return p, fmt.Errorf("parsing piece field %d: %w", num, protowire.ParseError(n))
			}
			raw = raw[n:]
		}
	}
	return p, nil
}
