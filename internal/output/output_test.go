package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriter_Status(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Status("🔍", "searching")
	w.Status("", "indented detail")

	assert.Contains(t, buf.String(), "🔍 searching\n")
	assert.Contains(t, buf.String(), "   indented detail\n")
}

func TestWriter_SuccessAndError(t *testing.T) {
	var buf bytes.Buffer
	w := New(&buf)

	w.Successf("indexed %d documents", 42)
	w.Errorf("failed after %d batches", 3)

	assert.Contains(t, buf.String(), "✅ indexed 42 documents")
	assert.Contains(t, buf.String(), "❌ failed after 3 batches")
}
