package vector

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

const (
	memoryMagic   = "TNYV"
	memoryVersion = uint32(1)
)

// MemoryIndex is an in-memory vector index using brute-force inner product search.
// When opened with a path it rewrites the file after every Add, so contents survive restarts.
type MemoryIndex struct {
	dimensions int
	modelID    string
	namespace  string
	path       string
	entries    []Entry
	mu         sync.RWMutex
}

var _ VectorIndex = (*MemoryIndex)(nil)

// NewMemoryIndex creates an empty, unpersisted index.
func NewMemoryIndex(dimensions int, modelID, namespace string) (*MemoryIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	return &MemoryIndex{
		dimensions: dimensions,
		modelID:    modelID,
		namespace:  namespace,
		entries:    make([]Entry, 0),
	}, nil
}

// OpenMemoryIndex loads <dir>/<namespace>.idx if it exists and persists to it afterwards.
// A file written with another model tag or dimension is rejected.
func OpenMemoryIndex(dir string, dimensions int, modelID, namespace string) (*MemoryIndex, error) {
	if namespace == "" {
		namespace = "default"
	}
	m, err := NewMemoryIndex(dimensions, modelID, namespace)
	if err != nil {
		return nil, err
	}
	m.path = filepath.Join(dir, namespace+".idx")
	if err := m.Load(m.path); err != nil {
		return nil, err
	}
	return m, nil
}

// Add appends entries. If persisting fails the entries are dropped again and the error is returned.
func (m *MemoryIndex) Add(ctx context.Context, entries []Entry) error {
	for _, e := range entries {
		if len(e.Vector) != m.dimensions {
			return fmt.Errorf("%w: got %d, expected %d", ErrDimensionMismatch, len(e.Vector), m.dimensions)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.entries)
	for _, e := range entries {
		vec := make([]float32, m.dimensions)
		copy(vec, e.Vector)
		e.Vector = vec
		m.entries = append(m.entries, e)
	}
	if m.path != "" {
		if err := m.saveLocked(m.path); err != nil {
			m.entries = m.entries[:before]
			return err
		}
	}
	return nil
}

// Search returns the top-k entries by inner product (cosine similarity for normalized vectors).
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int, filter *Filter) ([]*Result, error) {
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("%w: query has %d, expected %d", ErrDimensionMismatch, len(query), m.dimensions)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if k <= 0 || len(m.entries) == 0 {
		return []*Result{}, nil
	}
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, 0, len(m.entries))
	for i := range m.entries {
		if !filter.matches(m.entries[i].Metadata) {
			continue
		}
		scores = append(scores, scored{idx: i, score: InnerProduct(query, m.entries[i].Vector)})
	}
	// Stable keeps insertion order among equal scores.
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	results := make([]*Result, k)
	for i := 0; i < k; i++ {
		e := m.entries[scores[i].idx]
		results[i] = &Result{ID: e.ID, Text: e.Text, Score: scores[i].score, Metadata: e.Metadata}
	}
	return results, nil
}

// Save writes the index to path through a temporary file.
func (m *MemoryIndex) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveLocked(path)
}

// Format: magic, version, dimensions, model tag, namespace, count, then per entry
// id, text, metadata JSON and the vector. Strings are uint32 length-prefixed.
func (m *MemoryIndex) saveLocked(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := m.encode(w); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace index file: %w", err)
	}
	return nil
}

func (m *MemoryIndex) encode(w io.Writer) error {
	if _, err := io.WriteString(w, memoryMagic); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	header := []uint32{memoryVersion, uint32(m.dimensions)}
	if err := binary.Write(w, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := writeString(w, m.modelID); err != nil {
		return fmt.Errorf("write model tag: %w", err)
	}
	if err := writeString(w, m.namespace); err != nil {
		return fmt.Errorf("write namespace: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.entries))); err != nil {
		return fmt.Errorf("write count: %w", err)
	}
	for _, e := range m.entries {
		meta, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		for _, s := range []string{e.ID, e.Text, string(meta)} {
			if err := writeString(w, s); err != nil {
				return fmt.Errorf("write entry: %w", err)
			}
		}
		if _, err := w.Write(float32SliceToBytes(e.Vector)); err != nil {
			return fmt.Errorf("write vector: %w", err)
		}
	}
	return nil
}

// Load replaces the in-memory contents with the file at path.
// A missing file leaves the index unchanged and is not an error.
func (m *MemoryIndex) Load(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	r := bufio.NewReader(f)

	magic := make([]byte, len(memoryMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != memoryMagic {
		return fmt.Errorf("not a vector index file: %s", path)
	}
	var header [2]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	if header[0] != memoryVersion {
		return fmt.Errorf("unsupported index version %d", header[0])
	}
	if int(header[1]) != m.dimensions {
		return fmt.Errorf("%w: file has %d, index expects %d", ErrDimensionMismatch, header[1], m.dimensions)
	}
	modelID, err := readString(r)
	if err != nil {
		return fmt.Errorf("read model tag: %w", err)
	}
	if m.modelID != "" && modelID != "" && modelID != m.modelID {
		return fmt.Errorf("%w: index %s was built with %q, configured embedder is %q",
			ErrModelMismatch, path, modelID, m.modelID)
	}
	if _, err := readString(r); err != nil {
		return fmt.Errorf("read namespace: %w", err)
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read count: %w", err)
	}

	entries := make([]Entry, 0, n)
	buf := make([]byte, m.dimensions*4)
	for i := uint32(0); i < n; i++ {
		var fields [3]string
		for j := range fields {
			if fields[j], err = readString(r); err != nil {
				return fmt.Errorf("read entry %d: %w", i, err)
			}
		}
		var meta Metadata
		if err := json.Unmarshal([]byte(fields[2]), &meta); err != nil {
			return fmt.Errorf("read entry %d metadata: %w", i, err)
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("read vector %d: %w", i, err)
		}
		entries = append(entries, Entry{ID: fields[0], Text: fields[1], Vector: bytesToFloat32Slice(buf), Metadata: meta})
	}

	m.mu.Lock()
	m.entries = entries
	if m.modelID == "" {
		m.modelID = modelID
	}
	m.mu.Unlock()
	return nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func float32SliceToBytes(s []float32) []byte {
	const size = 4
	out := make([]byte, len(s)*size)
	for i, v := range s {
		binary.LittleEndian.PutUint32(out[i*size:(i+1)*size], math.Float32bits(v))
	}
	return out
}

func bytesToFloat32Slice(b []byte) []float32 {
	const size = 4
	out := make([]float32, len(b)/size)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*size : (i+1)*size]))
	}
	return out
}

// Size returns the number of entries.
func (m *MemoryIndex) Size(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}

// Dimensions returns the vector length.
func (m *MemoryIndex) Dimensions() int { return m.dimensions }

// ModelID returns the embedding model tag.
func (m *MemoryIndex) ModelID() string { return m.modelID }

// Namespace returns the collection name.
func (m *MemoryIndex) Namespace() string { return m.namespace }

// Close flushes a persisted index to disk.
func (m *MemoryIndex) Close() error {
	if m.path == "" {
		return nil
	}
	return m.Save(m.path)
}
