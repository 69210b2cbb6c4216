package ner

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
)

type tokenOffset struct {
	Start int
	End   int
}

var noOffset = tokenOffset{Start: -1, End: -1}

type wordSpan struct {
	Text  string
	Start int
	End   int
}

// wordPiece is a BERT-compatible WordPiece tokenizer that keeps byte offsets
// into the original text for every token.
type wordPiece struct {
	vocab        map[string]int64
	lowerCase    bool
	clsID        int64
	sepID        int64
	padID        int64
	unkID        int64
	continuation string
}

// loadWordPiece builds the tokenizer from a vocab.txt file. Cased models
// (vocab containing upper-case word pieces) are not lower-cased.
func loadWordPiece(path string) (*wordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab: %w", err)
	}
	defer f.Close()

	vocab := make(map[string]int64)
	sc := bufio.NewScanner(f)
	var idx int64
	for sc.Scan() {
		token := strings.TrimSpace(sc.Text())
		if token == "" {
			continue
		}
		vocab[token] = idx
		idx++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan vocab: %w", err)
	}
	return newWordPiece(vocab), nil
}

func newWordPiece(vocab map[string]int64) *wordPiece {
	return &wordPiece{
		vocab:        vocab,
		lowerCase:    !hasCasedTokens(vocab),
		continuation: "##",
		clsID:        vocab["[CLS]"],
		sepID:        vocab["[SEP]"],
		padID:        vocab["[PAD]"],
		unkID:        vocab["[UNK]"],
	}
}

func hasCasedTokens(vocab map[string]int64) bool {
	for tok := range vocab {
		if strings.HasPrefix(tok, "[") {
			continue
		}
		for _, r := range tok {
			if unicode.IsUpper(r) {
				return true
			}
		}
	}
	return false
}

// encode tokenizes words starting at words[0] into one sequence of seqLen
// ids. It returns the ids, the attention mask, per-token offsets and the
// number of words consumed, so long documents can be fed in windows.
func (t *wordPiece) encode(words []wordSpan, seqLen int) ([]int64, []int64, []tokenOffset, int) {
	if seqLen < 3 {
		return nil, nil, nil, len(words)
	}

	tokens := []int64{t.clsID}
	offsets := []tokenOffset{noOffset}
	consumed := 0

	for _, w := range words {
		token := w.Text
		var origAt map[int]int
		if t.lowerCase {
			token, origAt = lowerWord(token)
		}
		pieces := t.pieces(token)
		if len(tokens)+len(pieces) > seqLen-1 {
			if consumed == 0 {
				// A single word longer than the window is truncated.
				pieces = pieces[:seqLen-1-len(tokens)]
			} else {
				break
			}
		}
		for _, p := range pieces {
			start, end := p.start, p.end
			if origAt != nil {
				s, okStart := origAt[start]
				e, okEnd := origAt[end]
				if okStart && okEnd {
					start, end = s, e
				} else {
					start, end = 0, len(w.Text)
				}
			}
			tokens = append(tokens, p.id)
			offsets = append(offsets, tokenOffset{Start: w.Start + start, End: w.Start + end})
		}
		consumed++
	}

	tokens = append(tokens, t.sepID)
	offsets = append(offsets, noOffset)

	attn := make([]int64, seqLen)
	for i := range tokens {
		attn[i] = 1
	}
	for len(tokens) < seqLen {
		tokens = append(tokens, t.padID)
		offsets = append(offsets, noOffset)
	}
	return tokens, attn, offsets, consumed
}

// lowerWord lower-cases s rune by rune. Lower-casing can change a rune's
// encoded length, so it also maps each rune boundary of the result back to
// the byte offset in s.
func lowerWord(s string) (string, map[int]int) {
	var b strings.Builder
	origAt := make(map[int]int, len(s)+1)
	for i, r := range s {
		origAt[b.Len()] = i
		b.WriteRune(unicode.ToLower(r))
	}
	origAt[b.Len()] = len(s)
	return b.String(), origAt
}

type piece struct {
	id    int64
	start int
	end   int
}

// pieces applies greedy longest-match-first WordPiece to one word.
func (t *wordPiece) pieces(token string) []piece {
	if id, ok := t.vocab[token]; ok {
		return []piece{{id: id, start: 0, end: len(token)}}
	}

	var out []piece
	start := 0
	for start < len(token) {
		end := len(token)
		found := false
		for end > start {
			sub := token[start:end]
			if start > 0 {
				sub = t.continuation + sub
			}
			if id, ok := t.vocab[sub]; ok {
				out = append(out, piece{id: id, start: start, end: end})
				start = end
				found = true
				break
			}
			end--
		}
		if !found {
			return []piece{{id: t.unkID, start: 0, end: len(token)}}
		}
	}
	return out
}

// splitWords splits text on whitespace and isolates punctuation, the way the
// BERT basic tokenizer does. Offsets are byte offsets into text.
func splitWords(text string) []wordSpan {
	var spans []wordSpan
	start := -1
	flush := func(end int) {
		if start >= 0 {
			spans = append(spans, wordSpan{Text: text[start:end], Start: start, End: end})
			start = -1
		}
	}
	for idx, r := range text {
		switch {
		case unicode.IsSpace(r):
			flush(idx)
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			flush(idx)
			size := len(string(r))
			spans = append(spans, wordSpan{Text: text[idx : idx+size], Start: idx, End: idx + size})
		default:
			if start < 0 {
				start = idx
			}
		}
	}
	flush(len(text))
	return spans
}
