package embedding

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	defaultMaxTokens    = 256
	defaultMaxWordChars = 100
	defaultSubwordMark  = "##"
)

// Tokenizer produces BERT model inputs (input_ids, attention_mask, token_type_ids)
// padded with zeros to maxTokens.
type Tokenizer interface {
	Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64)
}

// WordPieceTokenizer is the uncased BERT tokenizer used by all-MiniLM-L6-v2: clean and
// lowercase, strip accents, split on whitespace and punctuation, then greedy longest-match
// WordPiece against the model vocabulary.
type WordPieceTokenizer struct {
	vocab        map[string]int64
	unkID        int64
	clsID        int64
	sepID        int64
	prefix       string
	maxWordChars int
	lowercase    bool
}

var _ Tokenizer = (*WordPieceTokenizer)(nil)

// tokenizerFile is the part of a HuggingFace tokenizer.json that a WordPiece model needs.
type tokenizerFile struct {
	Normalizer *struct {
		Lowercase *bool `json:"lowercase"`
	} `json:"normalizer"`
	Model struct {
		Type                    string           `json:"type"`
		UnkToken                string           `json:"unk_token"`
		ContinuingSubwordPrefix string           `json:"continuing_subword_prefix"`
		MaxInputCharsPerWord    int              `json:"max_input_chars_per_word"`
		Vocab                   map[string]int64 `json:"vocab"`
	} `json:"model"`
}

// LoadWordPieceTokenizer reads the vocabulary from a tokenizer.json or, for a .txt path,
// a BERT vocab.txt with one token per line.
func LoadWordPieceTokenizer(path string) (*WordPieceTokenizer, error) {
	var (
		t   *WordPieceTokenizer
		err error
	)
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		t, err = loadVocabTxt(path)
	} else {
		t, err = loadTokenizerJSON(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %s: %w", path, err)
	}
	return t, nil
}

func loadTokenizerJSON(path string) (*WordPieceTokenizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f tokenizerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Model.Type != "WordPiece" {
		return nil, fmt.Errorf("model type %q is not WordPiece", f.Model.Type)
	}
	lowercase := true
	if f.Normalizer != nil && f.Normalizer.Lowercase != nil {
		lowercase = *f.Normalizer.Lowercase
	}
	return newWordPiece(f.Model.Vocab, f.Model.UnkToken, f.Model.ContinuingSubwordPrefix, f.Model.MaxInputCharsPerWord, lowercase)
}

func loadVocabTxt(path string) (*WordPieceTokenizer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	vocab := make(map[string]int64)
	scanner := bufio.NewScanner(file)
	var id int64
	for scanner.Scan() {
		vocab[strings.TrimRight(scanner.Text(), "\r")] = id
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return newWordPiece(vocab, "", "", 0, true)
}

func newWordPiece(vocab map[string]int64, unk, prefix string, maxWordChars int, lowercase bool) (*WordPieceTokenizer, error) {
	if len(vocab) == 0 {
		return nil, errors.New("empty vocabulary")
	}
	if unk == "" {
		unk = "[UNK]"
	}
	if prefix == "" {
		prefix = defaultSubwordMark
	}
	if maxWordChars <= 0 {
		maxWordChars = defaultMaxWordChars
	}
	t := &WordPieceTokenizer{vocab: vocab, prefix: prefix, maxWordChars: maxWordChars, lowercase: lowercase}
	for token, dst := range map[string]*int64{unk: &t.unkID, "[CLS]": &t.clsID, "[SEP]": &t.sepID} {
		id, ok := vocab[token]
		if !ok {
			return nil, fmt.Errorf("vocabulary has no %s token", token)
		}
		*dst = id
	}
	return t, nil
}

// Tokenize encodes text as [CLS] pieces... [SEP]. Longer inputs are cut to maxTokens,
// keeping the closing [SEP].
func (t *WordPieceTokenizer) Tokenize(text string, maxTokens int) (inputIDs, attentionMask, tokenTypeIDs []int64) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	maxTokens = max(maxTokens, 2)
	inputIDs = make([]int64, maxTokens)
	attentionMask = make([]int64, maxTokens)
	tokenTypeIDs = make([]int64, maxTokens)

	inputIDs[0] = t.clsID
	n := 1
words:
	for _, word := range t.basicTokens(text) {
		for _, id := range t.wordPiece(word) {
			if n == maxTokens-1 {
				break words
			}
			inputIDs[n] = id
			n++
		}
	}
	inputIDs[n] = t.sepID
	for i := 0; i <= n; i++ {
		attentionMask[i] = 1
	}
	return inputIDs, attentionMask, tokenTypeIDs
}

// basicTokens splits cleaned text on whitespace and makes every punctuation mark and
// CJK ideograph a token of its own.
func (t *WordPieceTokenizer) basicTokens(text string) []string {
	if t.lowercase {
		text = stripAccents(strings.ToLower(text))
	}
	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case r == 0 || r == utf8.RuneError:
		case unicode.IsSpace(r):
			flush()
		case unicode.IsControl(r) || unicode.Is(unicode.Cf, r):
		case isPunctuation(r) || isCJK(r):
			flush()
			tokens = append(tokens, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return tokens
}

// wordPiece splits word greedily into the longest vocabulary pieces. A word that cannot be
// covered, or is longer than maxWordChars, becomes a single [UNK].
func (t *WordPieceTokenizer) wordPiece(word string) []int64 {
	chars := []rune(word)
	if len(chars) > t.maxWordChars {
		return []int64{t.unkID}
	}
	var ids []int64
	for start := 0; start < len(chars); {
		end := len(chars)
		found := false
		var id int64
		for ; end > start; end-- {
			piece := string(chars[start:end])
			if start > 0 {
				piece = t.prefix + piece
			}
			if id, found = t.vocab[piece]; found {
				break
			}
		}
		if !found {
			return []int64{t.unkID}
		}
		ids = append(ids, id)
		start = end
	}
	return ids
}

func stripAccents(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn))), s)
	if err != nil {
		return s
	}
	return out
}

// isPunctuation counts all non-alphanumeric ASCII as punctuation, as BERT does.
func isPunctuation(r rune) bool {
	if (r >= 33 && r <= 47) || (r >= 58 && r <= 64) || (r >= 91 && r <= 96) || (r >= 123 && r <= 126) {
		return true
	}
	return unicode.IsPunct(r)
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x20000 && r <= 0x2A6DF) ||
		(r >= 0x2A700 && r <= 0x2CEAF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		(r >= 0x2F800 && r <= 0x2FA1F)
}
