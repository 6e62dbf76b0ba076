package aihub

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
)

const tylenolFile = `{
  "images": [
    {
      "item_seq": 200808876,
      "dl_name": "타이레놀정500밀리그람(아세트아미노펜)",
      "dl_name_en": "Tylenol Tab. 500mg",
      "dl_company": "한국존슨앤드존슨판매(유)",
      "dl_company_en": "Johnson & Johnson",
      "dl_material": "아세트아미노펜",
      "drug_shape": "장방형",
      "color_class1": "하양",
      "print_front": "TYLENOL",
      "print_back": "500",
      "img_key": "http://example.test/img/200808876.png"
    },
    {
      "item_seq": "201900001",
      "dl_name": "복합제정",
      "dl_material": "성분가|성분나 | ",
      "print_front": "AB",
      "print_back": "없음",
      "file_name": "K-001.png"
    }
  ],
  "annotations": []
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestReader_Read(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", tylenolFile)

	batch, err := NewReader(dir).Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, batch.Files)
	require.Len(t, batch.Records, 2)

	first := batch.Records[0]
	assert.Equal(t, "200808876", first.ID)
	assert.Equal(t, "Tylenol Tab. 500mg", first.NameEn)
	assert.Equal(t, []string{"아세트아미노펜"}, first.Ingredients)
	assert.Equal(t, "TYLENOL", first.ImprintFront)
	assert.Equal(t, "http://example.test/img/200808876.png", first.ImageRef)

	second := batch.Records[1]
	assert.Equal(t, "201900001", second.ID)
	assert.Equal(t, []string{"성분가", "성분나"}, second.Ingredients)
	assert.Equal(t, "없음", second.ImprintBack)
	assert.Equal(t, "K-001.png", second.ImageRef)
}

func TestReader_Read_SkipsMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", tylenolFile)
	writeFile(t, dir, "broken.json", `{"images": [`)
	writeFile(t, dir, "noimages.json", `{"annotations": []}`)
	writeFile(t, dir, "partial.json", `{"images": [{"item_seq": "1"}, {"dl_name": "이름만"}, {"item_seq": "2", "dl_name": "정상정"}]}`)
	writeFile(t, dir, "notes.txt", "ignored")

	batch, err := NewReader(dir).Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, batch.Files)
	assert.Equal(t, 2, batch.SkippedFiles)
	assert.Equal(t, 2, batch.SkippedRecords)
	assert.Len(t, batch.Records, 3)
}

func TestReader_Read_SkipsMistypedRecordOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mixed.json", `{"images": [
		{"item_seq": "10", "dl_name": "정상정"},
		{"item_seq": "11", "dl_name": 123},
		{"item_seq": ["12"], "dl_name": "배열번호정"},
		"not an object"
	]}`)

	batch, err := NewReader(dir).Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, batch.Files)
	assert.Equal(t, 0, batch.SkippedFiles)
	assert.Equal(t, 3, batch.SkippedRecords)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "10", batch.Records[0].ID)
}

func TestReader_Read_ImagesNotAnArray(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "odd.json", `{"images": {"item_seq": "1"}}`)

	batch, err := NewReader(dir).Read(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, batch.SkippedFiles)
	assert.Empty(t, batch.Records)
}

func TestReader_Read_NormalisesDecomposedHangul(t *testing.T) {
	dir := t.TempDir()
	decomposed := norm.NFD.String("게보린정")
	require.NotEqual(t, "게보린정", decomposed)
	writeFile(t, dir, "nfd.json", `{"images": [{"item_seq": "9", "dl_name": "`+decomposed+`"}]}`)

	batch, err := NewReader(dir).Read(context.Background())

	require.NoError(t, err)
	require.Len(t, batch.Records, 1)
	assert.Equal(t, "게보린정", batch.Records[0].Name)
}

func TestReader_Read_MissingDirectory(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "missing")).Read(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDataUnavailable))
}

func TestReader_Read_EmptyDirectory(t *testing.T) {
	batch, err := NewReader(t.TempDir()).Read(context.Background())

	require.NoError(t, err)
	assert.Empty(t, batch.Records)
	assert.Equal(t, 0, batch.Files)
}

func TestReader_Read_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", tylenolFile)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader(dir).Read(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_Location(t *testing.T) {
	assert.Equal(t, "/data/aihub", NewReader("/data/aihub").Location())
}
