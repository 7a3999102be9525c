package services

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// writeTestDOCX dựng một file .docx tối thiểu: zip chứa word/document.xml
func writeTestDOCX(t *testing.T, paragraphs ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "essay.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)

	xml := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	for _, p := range paragraphs {
		xml += `<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`
	}
	xml += `</w:body></w:document>`

	_, err = doc.Write([]byte(xml))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return path
}

func TestReadSubmissionFile(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		assert.Empty(t, ReadSubmissionFile(""))
	})

	t.Run("missing file gets a placeholder", func(t *testing.T) {
		got := ReadSubmissionFile(filepath.Join(t.TempDir(), "gone.txt"))
		assert.Contains(t, got, "could not be found")
	})

	t.Run("plain text", func(t *testing.T) {
		path := writeTempFile(t, "essay.txt", []byte("Quê hương tôi có con sông xanh biếc"))
		assert.Equal(t, "Quê hương tôi có con sông xanh biếc", ReadSubmissionFile(path))
	})

	t.Run("latin-1 fallback for invalid UTF-8", func(t *testing.T) {
		// "café" mã hoá ISO-8859-1, byte 0xE9 không phải UTF-8 hợp lệ
		path := writeTempFile(t, "old.txt", []byte{'c', 'a', 'f', 0xE9})
		assert.Equal(t, "café", ReadSubmissionFile(path))
	})

	t.Run("docx extraction", func(t *testing.T) {
		path := writeTestDOCX(t, "First paragraph.", "Second paragraph.")
		got := ReadSubmissionFile(path)
		assert.Contains(t, got, "First paragraph.")
		assert.Contains(t, got, "Second paragraph.")
	})

	t.Run("corrupt docx gets a placeholder", func(t *testing.T) {
		path := writeTempFile(t, "broken.docx", []byte("not a zip"))
		assert.Contains(t, ReadSubmissionFile(path), "could not be parsed")
	})

	t.Run("corrupt pdf gets a placeholder", func(t *testing.T) {
		path := writeTempFile(t, "broken.pdf", []byte("not a pdf"))
		assert.Contains(t, ReadSubmissionFile(path), "could not be parsed")
	})

	t.Run("binary attachment is named but not decoded", func(t *testing.T) {
		path := writeTempFile(t, "photo.png", []byte{0x89, 'P', 'N', 'G'})
		got := ReadSubmissionFile(path)
		assert.Contains(t, got, "photo.png")
		assert.Contains(t, got, "binary attachment")
	})
}

func TestExtractUploadedText(t *testing.T) {
	t.Run("txt", func(t *testing.T) {
		path := writeTempFile(t, "rubric.txt", []byte("Clarity: 40%\nEvidence: 60%"))
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		info, err := f.Stat()
		require.NoError(t, err)

		got, err := ExtractUploadedText(f, info.Size(), InputTXT)
		require.NoError(t, err)
		assert.Equal(t, "Clarity: 40%\nEvidence: 60%", got)
	})

	t.Run("docx", func(t *testing.T) {
		path := writeTestDOCX(t, "Grading criteria.")
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()
		info, err := f.Stat()
		require.NoError(t, err)

		got, err := ExtractUploadedText(f, info.Size(), InputDOCX)
		require.NoError(t, err)
		assert.Contains(t, got, "Grading criteria.")
	})

	t.Run("unsupported type", func(t *testing.T) {
		path := writeTempFile(t, "x.txt", []byte("x"))
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		_, err = ExtractUploadedText(f, 1, InputType("mp3"))
		assert.Error(t, err)
	})
}
