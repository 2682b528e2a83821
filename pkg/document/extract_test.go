package document

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTXT(t *testing.T) {
	data := []byte("  First line.\nSecond line.  \n")
	doc, err := Extract(bytes.NewReader(data), int64(len(data)), ".txt")
	require.NoError(t, err)

	assert.Equal(t, "First line.\nSecond line.", doc.Text)
	assert.Equal(t, "txt", doc.Format)
}

func TestExtractDOCX(t *testing.T) {
	xml := `<?xml version="1.0"?><w:document><w:body>` +
		`<w:p><w:r><w:t>Opening</w:t></w:r><w:r><w:t xml:space="preserve"> statement.</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second paragraph.</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(xml))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	doc, err := Extract(bytes.NewReader(buf.Bytes()), int64(buf.Len()), ".docx")
	require.NoError(t, err)

	assert.Equal(t, "Opening statement.\nSecond paragraph.", doc.Text)
	assert.Equal(t, "docx", doc.Format)
}

func TestExtractDOCXMissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<w:styles/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = Extract(bytes.NewReader(buf.Bytes()), int64(buf.Len()), ".docx")
	assert.Error(t, err)
}

func TestExtractUnsupportedType(t *testing.T) {
	_, err := Extract(bytes.NewReader(nil), 0, ".mp3")
	assert.ErrorContains(t, err, "unsupported file type")
}

func TestExtractFileByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello from disk"), 0o644))

	doc, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello from disk", doc.Text)
	assert.Equal(t, "txt", doc.Format)
}
