// Package testutil provides shared helpers for package tests.
package testutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"testing"
)

// MakePDF builds a minimal but structurally valid PDF with the given number
// of pages. Offsets in the xref table are computed from the actual object
// positions, so the result survives strict parsers.
func MakePDF(t *testing.T, pages int) []byte {
	t.Helper()
	if pages < 1 {
		t.Fatalf("MakePDF: pages must be >= 1, got %d", pages)
	}

	var buf bytes.Buffer
	offsets := make([]int, 0, pages+3)

	write := func(s string) { buf.WriteString(s) }
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		write(body)
	}

	write("%PDF-1.4\n")

	kids := ""
	for i := 0; i < pages; i++ {
		if i > 0 {
			kids += " "
		}
		kids += fmt.Sprintf("%d 0 R", 3+i)
	}

	object("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	object(fmt.Sprintf("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages))
	for i := 0; i < pages; i++ {
		object(fmt.Sprintf(
			"%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n",
			3+i,
		))
	}

	xrefOffset := buf.Len()
	write(fmt.Sprintf("xref\n0 %d\n", len(offsets)+1))
	write("0000000000 65535 f \n")
	for _, off := range offsets {
		write(fmt.Sprintf("%010d 00000 n \n", off))
	}
	write(fmt.Sprintf(
		"trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefOffset,
	))

	return buf.Bytes()
}

// MakePDFBase64 returns a minimal PDF encoded the way the pipeline embeds
// artifacts in status payloads.
func MakePDFBase64(t *testing.T, pages int) string {
	t.Helper()
	return base64.StdEncoding.EncodeToString(MakePDF(t, pages))
}
