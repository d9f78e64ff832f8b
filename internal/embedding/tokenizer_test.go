package embedding

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

// testdata/tokenizer.json has the all-MiniLM-L6-v2 tokenizer layout cut down to a handful
// of vocabulary entries; the ids are the ones bert-base-uncased assigns.
func loadTestTokenizer(t *testing.T) *WordPieceTokenizer {
	t.Helper()
	tok, err := LoadWordPieceTokenizer(filepath.Join("testdata", "tokenizer.json"))
	if err != nil {
		t.Fatalf("LoadWordPieceTokenizer: %v", err)
	}
	return tok
}

func TestWordPieceTokenizer_ReferenceIDs(t *testing.T) {
	tok := loadTestTokenizer(t)
	ids, attn, types := tok.Tokenize("Hello, World! Embeddings.", 16)
	// [CLS] hello , world ! em ##bed ##ding ##s . [SEP]
	want := []int64{101, 7592, 1010, 2088, 999, 7861, 8270, 4667, 2015, 1012, 102}
	if len(ids) != 16 || len(attn) != 16 || len(types) != 16 {
		t.Fatalf("lengths: %d %d %d", len(ids), len(attn), len(types))
	}
	if !slices.Equal(ids[:len(want)], want) {
		t.Errorf("ids = %v, want %v", ids[:len(want)], want)
	}
	for i := range ids {
		wantMask := int64(0)
		if i < len(want) {
			wantMask = 1
		}
		if attn[i] != wantMask {
			t.Errorf("attention_mask[%d] = %d, want %d", i, attn[i], wantMask)
		}
		if i >= len(want) && ids[i] != 0 {
			t.Errorf("ids[%d] = %d, want padding", i, ids[i])
		}
		if types[i] != 0 {
			t.Errorf("token_type_ids[%d] = %d, want 0", i, types[i])
		}
	}
}

func TestWordPieceTokenizer_Normalization(t *testing.T) {
	tok := loadTestTokenizer(t)
	tests := []struct {
		name string
		text string
		want []int64
	}{
		{"accents stripped", "Héllo wörld", []int64{101, 7592, 2088, 102, 0, 0}},
		{"unknown word", "hello qwxz", []int64{101, 7592, 100, 102, 0, 0}},
		{"control characters dropped", "hel\x00lo\tworld", []int64{101, 7592, 2088, 102, 0, 0}},
		{"empty", "", []int64{101, 102, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids, _, _ := tok.Tokenize(tt.text, 6)
			if !slices.Equal(ids, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, ids, tt.want)
			}
		})
	}
}

func TestWordPieceTokenizer_TruncatesKeepingSep(t *testing.T) {
	tok := loadTestTokenizer(t)
	ids, attn, _ := tok.Tokenize("hello world hello world", 5)
	if want := []int64{101, 7592, 2088, 7592, 102}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if want := []int64{1, 1, 1, 1, 1}; !slices.Equal(attn, want) {
		t.Errorf("attention_mask = %v, want %v", attn, want)
	}
}

func TestLoadWordPieceTokenizer_VocabTxt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.txt")
	vocab := "[PAD]\n[UNK]\n[CLS]\n[SEP]\nstage\n##s\n"
	if err := os.WriteFile(path, []byte(vocab), 0600); err != nil {
		t.Fatal(err)
	}
	tok, err := LoadWordPieceTokenizer(path)
	if err != nil {
		t.Fatal(err)
	}
	ids, _, _ := tok.Tokenize("Stages", 5)
	if want := []int64{2, 4, 5, 3, 0}; !slices.Equal(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestLoadWordPieceTokenizer_Errors(t *testing.T) {
	dir := t.TempDir()
	bpe := filepath.Join(dir, "bpe.json")
	if err := os.WriteFile(bpe, []byte(`{"model":{"type":"BPE","vocab":{"a":0}}}`), 0600); err != nil {
		t.Fatal(err)
	}
	noSep := filepath.Join(dir, "nosep.txt")
	if err := os.WriteFile(noSep, []byte("[UNK]\n[CLS]\nword\n"), 0600); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{filepath.Join(dir, "missing.json"), bpe, noSep} {
		if _, err := LoadWordPieceTokenizer(path); err == nil {
			t.Errorf("LoadWordPieceTokenizer(%s): expected error", filepath.Base(path))
		}
	}
}
