package retrieval

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Row is one knowledge-base row as stored: the embedding stays serialized
// until query time so a bad vector can be skipped without failing the load.
type Row struct {
	FileName     string
	Page         int
	Text         string
	RawEmbedding string
}

// Loader supplies the full knowledge table. The table is produced by an
// offline ingestion path and is read-only here.
type Loader interface {
	Load(ctx context.Context) ([]Row, error)
}

// WorkbookLoader reads the knowledge table from an XLSX workbook. The
// workbook bytes come from an injected fetch (object storage or local file).
type WorkbookLoader struct {
	fetch func(ctx context.Context) (io.Reader, error)
}

func NewWorkbookLoader(fetch func(ctx context.Context) (io.Reader, error)) *WorkbookLoader {
	return &WorkbookLoader{fetch: fetch}
}

// Load opens the first sheet and auto-detects columns by header heuristics.
func (l *WorkbookLoader) Load(ctx context.Context) ([]Row, error) {
	r, err := l.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch knowledge table: %w", err)
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) <= 1 {
		return nil, fmt.Errorf("no data rows")
	}

	header := rows[0]
	fileIdx, pageIdx, textIdx, embIdx := -1, -1, -1, -1
	for i, h := range header {
		n := strings.ToLower(strings.TrimSpace(h))
		switch {
		case embIdx == -1 && strings.Contains(n, "embed"):
			embIdx = i
		case fileIdx == -1 && (strings.Contains(n, "file") || strings.Contains(n, "source")):
			fileIdx = i
		case pageIdx == -1 && strings.Contains(n, "page"):
			pageIdx = i
		case textIdx == -1 && (strings.Contains(n, "text") || strings.Contains(n, "chunk") || strings.Contains(n, "content")):
			textIdx = i
		}
	}
	if textIdx == -1 || embIdx == -1 {
		return nil, fmt.Errorf("workbook missing text/embedding columns")
	}

	var out []Row
	for i, r := range rows {
		if i == 0 {
			continue
		}
		row := Row{}
		if fileIdx >= 0 && fileIdx < len(r) {
			row.FileName = r[fileIdx]
		}
		if pageIdx >= 0 && pageIdx < len(r) {
			row.Page, _ = strconv.Atoi(strings.TrimSpace(r[pageIdx]))
		}
		if textIdx < len(r) {
			row.Text = strings.TrimSpace(r[textIdx])
		}
		if embIdx < len(r) {
			row.RawEmbedding = r[embIdx]
		}
		if row.Text == "" {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}
