package pipeline

import (
	"fmt"
	"testing"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

func TestBuffer_CapacityInvariant(t *testing.T) {
	buf := NewBuffer(200)

	for i := 0; i < 201; i++ {
		buf.Append(domain.LogEntry{Event: "progress", Message: fmt.Sprintf("line %d", i)})
	}

	if buf.Len() != 200 {
		t.Fatalf("Len = %d, want 200", buf.Len())
	}

	entries := buf.Entries()
	// The 201st append evicts exactly the oldest entry
	if entries[0].Message != "line 1" {
		t.Errorf("oldest entry = %q, want %q", entries[0].Message, "line 1")
	}
	if entries[199].Message != "line 200" {
		t.Errorf("newest entry = %q, want %q", entries[199].Message, "line 200")
	}
}

func TestBuffer_InsertionOrder(t *testing.T) {
	buf := NewBuffer(5)
	for i := 0; i < 3; i++ {
		buf.Append(domain.LogEntry{Message: fmt.Sprintf("%d", i)})
	}

	entries := buf.Entries()
	for i, e := range entries {
		if e.Message != fmt.Sprintf("%d", i) {
			t.Errorf("entries[%d] = %q, want %q", i, e.Message, fmt.Sprintf("%d", i))
		}
	}
}

func TestBuffer_DefaultCapacity(t *testing.T) {
	buf := NewBuffer(0)
	for i := 0; i < DefaultBufferCapacity+10; i++ {
		buf.Append(domain.LogEntry{})
	}
	if buf.Len() != DefaultBufferCapacity {
		t.Errorf("Len = %d, want %d", buf.Len(), DefaultBufferCapacity)
	}
}

func TestBuffer_EntriesIsACopy(t *testing.T) {
	buf := NewBuffer(5)
	buf.Append(domain.LogEntry{Message: "a"})

	entries := buf.Entries()
	entries[0].Message = "mutated"

	if got := buf.Entries()[0].Message; got != "a" {
		t.Errorf("buffer entry = %q, want %q", got, "a")
	}
}
