package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"
)

func buildDOCX(t *testing.T, paragraphs []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create document.xml: %v", err)
	}
	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)
	if _, err := f.Write([]byte(doc.String())); err != nil {
		t.Fatalf("write document.xml: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestTextFromBytesDOCX(t *testing.T) {
	data := buildDOCX(t, []string{"Self-Healing Polymer Coating", "We developed a coating that repairs microcracks."})

	text, err := TextFromBytes(context.Background(), data, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", "idf.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(text, "Self-Healing Polymer Coating") {
		t.Fatalf("missing first paragraph: %q", text)
	}
	if !strings.Contains(text, "repairs microcracks") {
		t.Fatalf("missing second paragraph: %q", text)
	}
}

func TestTextFromBytesDetectsDOCXByExtension(t *testing.T) {
	data := buildDOCX(t, []string{"hello"})
	text, err := TextFromBytes(context.Background(), data, "application/octet-stream", "upload.docx")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "hello" {
		t.Fatalf("got %q", text)
	}
}

func TestTextFromBytesUnsupported(t *testing.T) {
	if _, err := TextFromBytes(context.Background(), []byte("plain"), "text/plain", "notes.txt"); err == nil {
		t.Fatalf("expected unsupported mime type error")
	}
}

func TestTitle(t *testing.T) {
	text := "Adaptive Battery Thermal Controller\n\nBACKGROUND: ..."
	if got := Title(text, "upload.pdf"); got != "Adaptive Battery Thermal Controller" {
		t.Fatalf("got %q", got)
	}

	long := strings.Repeat("x", 300) + "\nrest"
	if got := Title(long, "fallback-name.pdf"); got != "fallback-name" {
		t.Fatalf("got %q", got)
	}

	if got := Title("", "only-name.docx"); got != "only-name" {
		t.Fatalf("got %q", got)
	}
}
