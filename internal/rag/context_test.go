package rag

import (
	"strings"
	"testing"
)

func Test_AssembleContext_EmptyReturnsSentinel(t *testing.T) {
	t.Parallel()
	if got := AssembleContext(nil); got != NoContext {
		t.Errorf("AssembleContext(nil) = %q, want sentinel", got)
	}
	if got := AssembleContext([]Chunk{}); got != NoContext {
		t.Errorf("AssembleContext(empty) = %q, want sentinel", got)
	}
}

func Test_AssembleContext_Format(t *testing.T) {
	t.Parallel()
	chunks := []Chunk{
		{Text: "first chunk"},
		{Text: "second chunk"},
	}
	want := "[Context 1]: first chunk\n\n[Context 2]: second chunk"
	if got := AssembleContext(chunks); got != want {
		t.Errorf("AssembleContext = %q, want %q", got, want)
	}
}

func Test_AssembleContext_PreservesRankOrder(t *testing.T) {
	t.Parallel()
	chunks := []Chunk{{Text: "zulu"}, {Text: "alpha"}, {Text: "mike"}}
	got := AssembleContext(chunks)
	if strings.Index(got, "zulu") > strings.Index(got, "alpha") {
		t.Error("chunk order was not preserved")
	}
	if !strings.HasPrefix(got, "[Context 1]: zulu") {
		t.Errorf("first block wrong: %q", got)
	}
}

func Test_IsNoContext_DistinguishesRealContext(t *testing.T) {
	t.Parallel()
	if !IsNoContext(NoContext) {
		t.Error("sentinel not recognised")
	}
	assembled := AssembleContext([]Chunk{{Text: "Dr. Alice - Cardiology"}})
	if IsNoContext(assembled) {
		t.Error("real context mistaken for sentinel")
	}
	if IsNoContext("") {
		t.Error("empty string mistaken for sentinel")
	}
}
