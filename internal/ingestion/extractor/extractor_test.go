package extractor

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func zipWith(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func TestExtractPagesPlainText(t *testing.T) {
	pages, err := ExtractPages("notes.txt", "text/plain", []byte("cells  divide\nby mitosis"))
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if pages[0] != "cells divide by mitosis" {
		t.Fatalf("page = %q", pages[0])
	}
}

func TestExtractPagesHTML(t *testing.T) {
	html := `<!DOCTYPE html><html><body><h1>Osmosis</h1><p>water&nbsp;moves</p></body></html>`
	pages, err := ExtractPages("saved.html", "text/html", []byte(html))
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if !strings.Contains(pages[0], "Osmosis") || !strings.Contains(pages[0], "water moves") {
		t.Fatalf("page = %q", pages[0])
	}
	if strings.Contains(pages[0], "<") {
		t.Fatalf("page still has tags: %q", pages[0])
	}
}

func TestExtractPagesDOCX(t *testing.T) {
	doc := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t>world</w:t></w:r></w:p></w:body></w:document>`
	data := zipWith(t, map[string]string{"word/document.xml": doc})

	pages, err := ExtractPages("notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", data)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("pages = %d, want 1", len(pages))
	}
	if pages[0] != "Hello world" {
		t.Fatalf("page = %q", pages[0])
	}
}

func TestExtractPagesPPTXPerSlide(t *testing.T) {
	slide := func(text string) string {
		return `<?xml version="1.0"?><p:sld xmlns:p="pns" xmlns:a="ans"><a:t>` + text + `</a:t></p:sld>`
	}
	// slide10 after slide2 checks numeric ordering
	data := zipWith(t, map[string]string{
		"ppt/slides/slide1.xml":  slide("first"),
		"ppt/slides/slide2.xml":  slide("second"),
		"ppt/slides/slide10.xml": slide("tenth"),
	})

	pages, err := ExtractPages("deck.pptx", "", data)
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("pages = %d, want 3", len(pages))
	}
	if pages[0] != "first" || pages[1] != "second" || pages[2] != "tenth" {
		t.Fatalf("pages = %q", pages)
	}
}

func TestExtractPagesRejectsFakePDF(t *testing.T) {
	// binary junk that claims to be a pdf; printable bytes would fall through
	// to the plain-text path instead
	if _, err := ExtractPages("fake.pdf", "application/pdf", []byte{0x00, 0x01, 'n', 'o', 't', 0x00}); err == nil {
		t.Fatalf("ExtractPages: want error for fake pdf, got nil")
	}
}

func TestExtractPagesRejectsEmpty(t *testing.T) {
	if _, err := ExtractPages("empty.txt", "text/plain", nil); err == nil {
		t.Fatalf("ExtractPages: want error for empty file, got nil")
	}
}

func TestExtractPagesRejectsUnknownBinary(t *testing.T) {
	if _, err := ExtractPages("blob.bin", "application/octet-stream", []byte{0x00, 0x01, 0x02, 0xff}); err == nil {
		t.Fatalf("ExtractPages: want error for unknown binary, got nil")
	}
}
