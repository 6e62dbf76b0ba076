// Package dur reads DUR (drug utilisation review) safety lists published as
// CSV files, one category per file.
package dur

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure File implements the interface.
var _ driven.SafetySource = (*File)(nil)

// Supported encodings.
const (
	EncodingCP949 = "cp949"
	EncodingUTF8  = "utf-8"
)

// Column aliases in priority order. The first non-empty aliased cell wins.
var columnAliases = map[string][]string{
	"drug_a":      {"성분명A", "성분명"},
	"drug_b":      {"성분명B"},
	"product_a":   {"제품명A", "제품명"},
	"product_b":   {"제품명B"},
	"restriction": {"금기연령", "제한연령", "금기구분", "등급"},
	"detail":      {"상세정보", "주의내용", "금기내용"},
	"notice_date": {"고시일자", "공고일자"},
}

// File is one CSV safety source.
type File struct {
	Path     string
	Cat      domain.SafetyCategory
	Encoding string
	// Limit caps the number of rows read; zero reads all.
	Limit int
}

// NewFile creates a source for a CSV file. An empty encoding means cp949.
func NewFile(path string, category domain.SafetyCategory, encoding string, limit int) (*File, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("%w: unknown safety category %q", domain.ErrInvalidInput, category)
	}
	enc, err := normalizeEncoding(encoding)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, fmt.Errorf("%w: negative row limit %d", domain.ErrInvalidInput, limit)
	}
	return &File{Path: path, Cat: category, Encoding: enc, Limit: limit}, nil
}

func normalizeEncoding(encoding string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "cp949", "euc-kr", "euckr", "ms949":
		return EncodingCP949, nil
	case "utf-8", "utf8":
		return EncodingUTF8, nil
	default:
		return "", fmt.Errorf("%w: unsupported encoding %q", domain.ErrInvalidInput, encoding)
	}
}

// Category returns the category every row of this file belongs to.
func (f *File) Category() domain.SafetyCategory {
	return f.Cat
}

// Name returns the file's base name.
func (f *File) Name() string {
	return filepath.Base(f.Path)
}

// Rows reads the file. Blank rows and rows the CSV parser rejects are
// skipped and counted. A file without a recognisable drug column is
// domain.ErrMalformedInput.
func (f *File) Rows(ctx context.Context) ([]domain.RawSafetyRow, int, error) {
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	defer fh.Close()

	return ParseRows(ctx, fh, f.Encoding, f.Limit)
}

// ParseRows decodes CSV from r. A UTF-8 byte-order mark overrides the
// declared encoding.
func ParseRows(ctx context.Context, r io.Reader, encoding string, limit int) ([]domain.RawSafetyRow, int, error) {
	enc, err := normalizeEncoding(encoding)
	if err != nil {
		return nil, 0, err
	}

	var decoder transform.Transformer = unicode.UTF8.NewDecoder()
	if enc == EncodingCP949 {
		decoder = korean.EUCKR.NewDecoder()
	}
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(decoder)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.RawSafetyRow{}, 0, nil
		}
		return nil, 0, fmt.Errorf("%w: read header: %w", domain.ErrMalformedInput, err)
	}
	columns := mapColumns(header)
	if len(columns["drug_a"]) == 0 && len(columns["product_a"]) == 0 {
		return nil, 0, fmt.Errorf("%w: no drug or product column in header %v", domain.ErrMalformedInput, header)
	}

	rows := []domain.RawSafetyRow{}
	skipped := 0
	for limit == 0 || len(rows) < limit {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			logger.Debug("skipping CSV line %d: %v", parseErr.Line, parseErr.Err)
			skipped++
			continue
		}
		if err != nil {
			return nil, skipped, fmt.Errorf("read csv: %w", err)
		}

		row := domain.RawSafetyRow{
			DrugA:       pick(record, columns["drug_a"]),
			DrugB:       pick(record, columns["drug_b"]),
			ProductA:    pick(record, columns["product_a"]),
			ProductB:    pick(record, columns["product_b"]),
			Restriction: pick(record, columns["restriction"]),
			Detail:      pick(record, columns["detail"]),
			NoticeDate:  pick(record, columns["notice_date"]),
		}
		if row == (domain.RawSafetyRow{}) {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	return rows, skipped, nil
}

// mapColumns resolves each logical field to header indexes in alias order.
func mapColumns(header []string) map[string][]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	columns := make(map[string][]int, len(columnAliases))
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				columns[field] = append(columns[field], i)
			}
		}
	}
	return columns
}

func pick(record []string, indexes []int) string {
	for _, i := range indexes {
		if i < len(record) {
			if v := strings.TrimSpace(record[i]); v != "" {
				return v
			}
		}
	}
	return ""
}
