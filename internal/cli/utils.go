// Package cli formats answers, history, ingestion results and status for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/tanya/internal/models"
	"github.com/hyperjump/tanya/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text", "json" or "" (text).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (use text or json)", s)
	}
}

const rule = "─────────────────────────────────────────────────────────"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnswer writes a query answer. contextLen limits how much retrieved context is shown in text mode.
func WriteAnswer(w io.Writer, ans *models.Answer, format OutputFormat, contextLen int) error {
	if format == OutputJSON {
		return writeJSON(w, ans)
	}
	fmt.Fprintf(w, "Query: %s\n%s\n", ans.Query, rule)
	fmt.Fprintf(w, "Context: %s\n%s\n", utils.Truncate(utils.SingleLine(ans.Context), contextLen), rule)
	fmt.Fprintf(w, "%s\n", ans.Answer)
	return nil
}

// WriteHistory writes a user's chat history, newest first.
func WriteHistory(w io.Writer, messages []*models.Message, format OutputFormat) error {
	if format == OutputJSON {
		if messages == nil {
			messages = []*models.Message{}
		}
		return writeJSON(w, messages)
	}
	if len(messages) == 0 {
		fmt.Fprintln(w, "No chat history.")
		return nil
	}
	for _, m := range messages {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "[%s] #%d\n", m.CreatedAt.Local().Format("2006-01-02 15:04:05"), m.ID)
		fmt.Fprintf(w, "Q: %s\n", m.Question)
		fmt.Fprintf(w, "A: %s\n", utils.Truncate(m.Answer, 500))
	}
	return nil
}

// WriteIngestResult writes the outcome of one ingestion run.
func WriteIngestResult(w io.Writer, name string, res *models.IngestResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	fmt.Fprintf(w, "Ingested %s: %d chunks (index size %d)\n", name, res.ChunkCount, res.IndexSize)
	if res.AlreadyIngested {
		fmt.Fprintln(w, "Note: file was ingested before; the index now holds duplicate entries.")
	}
	return nil
}

// WriteStatus writes counts and configuration.
func WriteStatus(w io.Writer, st *models.Status, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Users:             %d\n", st.Users)
	fmt.Fprintf(w, "Files:             %d (%d ingested)\n", st.Files, st.IngestedFiles)
	fmt.Fprintf(w, "Messages:          %d\n", st.Messages)
	fmt.Fprintf(w, "Vector index size: %d\n", st.VectorIndexSize)
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "Disk usage:        %s\n", FormatBytes(*st.DiskUsageBytes))
	}
	if c := st.Config; c != nil {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Vector index:      %s (namespace %s)\n", c.VectorIndexType, c.Namespace)
		fmt.Fprintf(w, "Embedding:         %s / %s\n", c.EmbeddingProvider, c.EmbeddingModel)
		fmt.Fprintf(w, "Generation:        %s / %s\n", c.GenerationProvider, c.GenerationModel)
		fmt.Fprintf(w, "Chunking:          %d chars, %d overlap\n", c.ChunkSize, c.ChunkOverlap)
		fmt.Fprintf(w, "Retrieval:         top %d, scope %s\n", c.TopK, c.Scope)
	}
	return nil
}

// WriteUser writes a newly registered user.
func WriteUser(w io.Writer, u *models.User, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, u)
	}
	fmt.Fprintf(w, "Created user %s (id %d, role %s)\n", u.Username, u.ID, u.RoleName)
	return nil
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
