package tokenizer

import "fmt"

// Aggregate joins per-language tokenizers into one flat id space. Ids of
// member i are offset by the total vocabulary size of the members before
// it, matching aggregate-vocabulary models whose language model is trained
// over the concatenated vocabularies.
type Aggregate struct {
	langs   []string
	members []*Tokenizer
	offsets []int32
	total   int
}

// NewAggregate builds an aggregate tokenizer. langs and members are
// parallel; the first member is the default when no language tag matches.
func NewAggregate(langs []string, members []*Tokenizer) (*Aggregate, error) {
	if len(members) == 0 {
		return nil, fmt.Errorf("aggregate tokenizer needs at least one member")
	}
	if len(langs) != len(members) {
		return nil, fmt.Errorf("aggregate tokenizer: %d languages for %d members", len(langs), len(members))
	}

	a := &Aggregate{
		langs:   langs,
		members: members,
		offsets: make([]int32, len(members)),
	}
	for i, m := range members {
		a.offsets[i] = int32(a.total)
		a.total += m.VocabSize()
	}
	return a, nil
}

// VocabSize returns the combined vocabulary size of all members.
func (a *Aggregate) VocabSize() int {
	return a.total
}

// Encode tokenizes with the default member. Lines without a language tag
// land here so flat and aggregate vocabularies behave uniformly.
func (a *Aggregate) Encode(text string) []int32 {
	return a.encodeWith(0, text)
}

// EncodeLang tokenizes with the member registered for lang, falling back
// to the default member for unknown tags.
func (a *Aggregate) EncodeLang(lang, text string) []int32 {
	for i, l := range a.langs {
		if l == lang {
			return a.encodeWith(i, text)
		}
	}
	return a.encodeWith(0, text)
}

func (a *Aggregate) encodeWith(member int, text string) []int32 {
	ids := a.members[member].Encode(text)
	if off := a.offsets[member]; off != 0 {
		for i := range ids {
			ids[i] += off
		}
	}
	return ids
}
