package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/tanya/internal/models"
)

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteAnswer(t *testing.T) {
	ans := &models.Answer{Query: "what is stage II?", Context: "line one\nline two " + strings.Repeat("x", 300), Answer: "Stage II is ..."}

	var buf bytes.Buffer
	if err := WriteAnswer(&buf, ans, OutputText, 50); err != nil {
		t.Fatalf("WriteAnswer(text): %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Query: what is stage II?", "Context: line one line two", "...", "Stage II is ..."} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 100)) {
		t.Error("context was not truncated")
	}

	buf.Reset()
	if err := WriteAnswer(&buf, ans, OutputJSON, 50); err != nil {
		t.Fatalf("WriteAnswer(json): %v", err)
	}
	var decoded models.Answer
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded != *ans {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestWriteHistory(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHistory(&buf, nil, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No chat history.") {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := WriteHistory(&buf, nil, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty JSON history = %q, want []", buf.String())
	}

	msgs := []*models.Message{
		{ID: 2, UserID: 1, Question: "second?", Answer: "B", CreatedAt: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)},
		{ID: 1, UserID: 1, Question: "first?", Answer: "A", CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
	}
	buf.Reset()
	if err := WriteHistory(&buf, msgs, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Index(out, "Q: second?") > strings.Index(out, "Q: first?") {
		t.Errorf("history not in given order:\n%s", out)
	}

	buf.Reset()
	if err := WriteHistory(&buf, msgs, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 || decoded[0]["user_question"] != "second?" || decoded[0]["bot_reply"] != "B" {
		t.Errorf("decoded %v", decoded)
	}
}

func TestWriteIngestResult(t *testing.T) {
	var buf bytes.Buffer
	res := &models.IngestResult{FileID: 3, ChunkCount: 4, IndexSize: 8, AlreadyIngested: true}
	if err := WriteIngestResult(&buf, "guide.pdf", res, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Ingested guide.pdf: 4 chunks (index size 8)") ||
		!strings.Contains(buf.String(), "duplicate") {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteStatus(t *testing.T) {
	disk := int64(3 * 1024 * 1024)
	st := &models.Status{
		Users: 2, Files: 3, IngestedFiles: 1, Messages: 5, VectorIndexSize: 42, DiskUsageBytes: &disk,
		Config: &models.StatusConfig{VectorIndexType: "memory", Namespace: "tanya", EmbeddingProvider: "onnx",
			EmbeddingModel: "onnx:all-MiniLM-L6-v2", GenerationProvider: "google", GenerationModel: "gemini-1.5-flash",
			ChunkSize: 1000, ChunkOverlap: 100, TopK: 6, Scope: "shared"},
	}
	var buf bytes.Buffer
	if err := WriteStatus(&buf, st, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Files:             3 (1 ingested)", "Vector index size: 42", "3.0 MiB", "top 6, scope shared"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteUser(t *testing.T) {
	u := &models.User{ID: 4, Username: "ada", RoleName: "viewer", PasswordHash: "secret-hash"}

	var buf bytes.Buffer
	if err := WriteUser(&buf, u, OutputText); err != nil {
		t.Fatalf("WriteUser: %v", err)
	}
	if got := buf.String(); got != "Created user ada (id 4, role viewer)\n" {
		t.Errorf("text output = %q", got)
	}

	buf.Reset()
	if err := WriteUser(&buf, u, OutputJSON); err != nil {
		t.Fatalf("WriteUser json: %v", err)
	}
	if strings.Contains(buf.String(), "secret-hash") {
		t.Error("json output leaks the password hash")
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{0: "0 B", 1023: "1023 B", 1024: "1.0 KiB", 1536: "1.5 KiB", 5 << 30: "5.0 GiB"}
	for in, want := range tests {
		if got := FormatBytes(in); got != want {
			t.Errorf("FormatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
