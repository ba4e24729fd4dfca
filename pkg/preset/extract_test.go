package preset

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func TestExtractZipRejectsTraversal(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("../../escape.json")
	w.Write([]byte(`{}`))
	zw.Close()

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if r == nil {
		t.Fatal(err)
	}
	err = extractZip(r, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "illegal path") {
		t.Errorf("err = %v, want illegal path", err)
	}
}
