package services

import "testing"

func TestCheckUploadAllowed(t *testing.T) {
	ok := []struct{ filename, mime string }{
		{"notes.pdf", "application/pdf"},
		{"Notes.PDF", ""},
		{"slides.docx", "application/octet-stream"},
		{"deck.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation"},
		{"readme.txt", "text/plain"},
		{"outline.md", "text/markdown"},
	}
	for _, tc := range ok {
		if err := checkUploadAllowed(tc.filename, tc.mime); err != nil {
			t.Fatalf("checkUploadAllowed(%q, %q) = %v, want nil", tc.filename, tc.mime, err)
		}
	}

	bad := []struct{ filename, mime string }{
		{"malware.exe", ""},
		{"archive.zip", "application/zip"},
		{"noextension", ""},
		{"notes.pdf", "image/png"},
	}
	for _, tc := range bad {
		if err := checkUploadAllowed(tc.filename, tc.mime); err == nil {
			t.Fatalf("checkUploadAllowed(%q, %q) = nil, want error", tc.filename, tc.mime)
		}
	}
}
