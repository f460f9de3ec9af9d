package report

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const (
	BinarySampleSize   = 8192 // Bytes to sample for text/binary detection
	BinaryThresholdPct = 10   // Max % non-printable chars for text files
)

// DetectFileType determines if content is likely text.
//
// Detection heuristic (in order):
//  1. Null bytes present → binary
//  2. Invalid UTF-8 → binary
//  3. >10% non-printable control chars → binary
func DetectFileType(data []byte) bool {
	if len(data) == 0 {
		return true
	}

	if bytes.IndexByte(data, 0) != -1 {
		return false
	}

	sample := data[:min(len(data), BinarySampleSize)]
	if !utf8.Valid(sample) {
		return false
	}

	nonPrintable := 0
	for _, b := range sample {
		// Allow tab, newline and carriage return
		if b < 32 && b != 9 && b != 10 && b != 13 {
			nonPrintable++
		}
		if b == 127 {
			nonPrintable++
		}
	}

	threshold := len(sample) * BinaryThresholdPct / 100
	return nonPrintable <= threshold
}

// CompareFiles reports whether two contents are identical
func CompareFiles(a, b []byte) bool {
	return sha256.Sum256(a) == sha256.Sum256(b)
}

// GenerateUnifiedDiff returns a unified diff from before to after for path,
// or an empty string when they are identical. The whole file forms a single
// hunk.
func GenerateUnifiedDiff(path string, before, after []byte) string {
	if CompareFiles(before, after) {
		return ""
	}

	if !DetectFileType(before) || !DetectFileType(after) {
		return fmt.Sprintf("Binary file %s has changed\n", path)
	}

	var body strings.Builder
	oldLines, newLines := 0, 0
	for _, d := range lineDiffs(before, after) {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		}

		for _, line := range splitLines(d.Text) {
			body.WriteString(prefix)
			body.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				body.WriteString("\n\\ No newline at end of file\n")
			}
			if d.Type != diffmatchpatch.DiffInsert {
				oldLines++
			}
			if d.Type != diffmatchpatch.DiffDelete {
				newLines++
			}
		}
	}

	var result strings.Builder
	fmt.Fprintf(&result, "--- a%s\n", path)
	fmt.Fprintf(&result, "+++ b%s\n", path)
	fmt.Fprintf(&result, "@@ -%s +%s @@\n", hunkRange(oldLines), hunkRange(newLines))
	result.WriteString(body.String())

	return result.String()
}

func hunkRange(lines int) string {
	if lines == 0 {
		return "0,0"
	}
	return fmt.Sprintf("1,%d", lines)
}

// lineDiffs runs a line-mode diff, which is faster and more readable for text.
func lineDiffs(before, after []byte) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(string(before), string(after))
	diffs := dmp.DiffMain(a, b, false)
	return dmp.DiffCharsToLines(diffs, lineArray)
}

// splitLines splits text after each newline, keeping the newlines.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Summary counts inserted and deleted lines between before and after.
func Summary(before, after []byte) (inserted, deleted int) {
	for _, d := range lineDiffs(before, after) {
		lines := len(splitLines(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += lines
		case diffmatchpatch.DiffDelete:
			deleted += lines
		}
	}
	return inserted, deleted
}
