// Package aihub reads the AI Hub pill image dataset as reference records.
//
// The dataset is a directory of JSON files, each with an "images" array of
// pill descriptions. Only the descriptive fields are read; image annotations
// are ignored.
package aihub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/ports/driven"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// Ensure Reader implements the interface.
var _ driven.ReferenceSource = (*Reader)(nil)

// Reader loads every *.json file in a directory.
type Reader struct {
	dir string
}

// NewReader creates a reader for dir.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// Location returns the dataset directory.
func (r *Reader) Location() string {
	return r.dir
}

// file is the root object of one dataset file. Entries stay raw so a bad
// entry costs only itself.
type file struct {
	Images []json.RawMessage `json:"images"`
}

// image is one pill entry. item_seq appears both as a string and a number.
type image struct {
	ItemSeq     flexString `json:"item_seq"`
	Name        string     `json:"dl_name"`
	NameEn      string     `json:"dl_name_en"`
	Company     string     `json:"dl_company"`
	CompanyEn   string     `json:"dl_company_en"`
	Material    string     `json:"dl_material"`
	Shape       string     `json:"drug_shape"`
	Color       string     `json:"color_class1"`
	PrintFront  string     `json:"print_front"`
	PrintBack   string     `json:"print_back"`
	ImageKey    string     `json:"img_key"`
	FileName    string     `json:"file_name"`
	ImageLegacy string     `json:"image"`
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item_seq: %w", err)
	}
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexString(n.String())
	return nil
}

// Read parses every file. A missing or unreadable directory is
// domain.ErrDataUnavailable; bad files and records are skipped and counted.
func (r *Reader) Read(ctx context.Context) (*domain.SourceBatch, error) {
	info, err := os.Stat(r.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: reference directory %s: %w", domain.ErrDataUnavailable, r.dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrDataUnavailable, r.dir)
	}

	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDataUnavailable, err)
	}
	sort.Strings(paths)

	batch := &domain.SourceBatch{Records: []domain.ReferenceRecord{}}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		images, err := readFile(path)
		if err != nil {
			logger.Warn("skipping %s: %v", filepath.Base(path), err)
			batch.SkippedFiles++
			continue
		}
		batch.Files++

		for i, raw := range images {
			var img image
			if err := json.Unmarshal(raw, &img); err != nil {
				logger.Debug("%s: skipping record %d: %v", filepath.Base(path), i, err)
				batch.SkippedRecords++
				continue
			}
			record := toRecord(&img)
			if err := record.Validate(); err != nil {
				logger.Debug("%s: skipping record %d: %v", filepath.Base(path), i, err)
				batch.SkippedRecords++
				continue
			}
			batch.Records = append(batch.Records, record)
		}
	}

	logger.Debug("aihub: %d records from %d files (%d files, %d records skipped)",
		len(batch.Records), batch.Files, batch.SkippedFiles, batch.SkippedRecords)
	return batch, nil
}

func readFile(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	if _, ok := root["images"]; !ok {
		return nil, fmt.Errorf("%w: no images array", domain.ErrMalformedInput)
	}
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	return f.Images, nil
}

func toRecord(img *image) domain.ReferenceRecord {
	ref := img.ImageKey
	if ref == "" {
		ref = img.FileName
	}
	if ref == "" {
		ref = img.ImageLegacy
	}

	return domain.ReferenceRecord{
		ID:           clean(string(img.ItemSeq)),
		Name:         clean(img.Name),
		NameEn:       clean(img.NameEn),
		Company:      clean(img.Company),
		CompanyEn:    clean(img.CompanyEn),
		Ingredients:  domain.ParseIngredients(norm.NFC.String(img.Material)),
		Shape:        clean(img.Shape),
		Color:        clean(img.Color),
		ImprintFront: clean(img.PrintFront),
		ImprintBack:  clean(img.PrintBack),
		ImageRef:     strings.TrimSpace(ref),
	}
}

// clean normalises decomposed Hangul to NFC and trims.
func clean(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
