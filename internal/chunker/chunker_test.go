package chunker

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func Test_Split_EmptyAndWhitespaceInput(t *testing.T) {
	t.Parallel()
	for _, text := range []string{"", "   ", "\n\n\t \n"} {
		if got := Split(text, 100, 20); got != nil {
			t.Errorf("Split(%q) = %v, want nil", text, got)
		}
	}
}

func Test_Split_Deterministic(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("The clinic opens at nine. Appointments run hourly.\n\n", 40)
	a := Split(text, 120, 30)
	b := Split(text, 120, 30)
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated calls with identical input produced different chunks")
	}
}

func Test_Split_ChunksNeverExceedSize(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("Visit the front desk for assistance with any billing question. ", 50)
	for _, size := range []int{30, 100, 500} {
		for _, chunk := range Split(text, size, size/5) {
			if n := len([]rune(chunk.Text)); n > size {
				t.Errorf("size=%d: chunk %d has %d chars", size, chunk.Index, n)
			}
		}
	}
}

func Test_Split_HardCutWithoutBoundaries(t *testing.T) {
	t.Parallel()
	chunks := Split(strings.Repeat("a", 250), 100, 20)
	wantLens := []int{100, 100, 50}
	if len(chunks) != len(wantLens) {
		t.Fatalf("want %d chunks, got %d", len(wantLens), len(chunks))
	}
	for i, want := range wantLens {
		if got := len(chunks[i].Text); got != want {
			t.Errorf("chunk %d: len = %d, want %d", i, got, want)
		}
	}
}

func Test_Split_PrefersParagraphBoundary(t *testing.T) {
	t.Parallel()
	paraA := "The cardiology department is open weekdays from nine to five"
	paraB := "The dermatology department requires an advance referral note"
	chunks := Split(paraA+"\n\n"+paraB, 80, 0)
	if len(chunks) != 2 {
		t.Fatalf("want 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0].Text != paraA {
		t.Errorf("chunk 0 = %q, want %q", chunks[0].Text, paraA)
	}
	if chunks[1].Text != paraB {
		t.Errorf("chunk 1 = %q, want %q", chunks[1].Text, paraB)
	}
}

func Test_Split_PrefersSentenceBoundary(t *testing.T) {
	t.Parallel()
	s1 := "First sentence is right here."
	s2 := "Second sentence follows it now."
	chunks := Split(s1+" "+s2, 40, 0)
	if len(chunks) != 2 {
		t.Fatalf("want 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0].Text != s1 {
		t.Errorf("chunk 0 = %q, want %q", chunks[0].Text, s1)
	}
	if chunks[1].Text != s2 {
		t.Errorf("chunk 1 = %q, want %q", chunks[1].Text, s2)
	}
}

func Test_Split_ConsecutiveChunksOverlap(t *testing.T) {
	t.Parallel()
	// Unique numbered words so a shared word proves genuinely shared context.
	words := make([]string, 200)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	chunks := Split(strings.Join(words, " "), 100, 20)
	if len(chunks) < 3 {
		t.Fatalf("want several chunks, got %d", len(chunks))
	}
	for i := 0; i < len(chunks)-1; i++ {
		first := strings.Fields(chunks[i+1].Text)[0]
		if !strings.Contains(chunks[i].Text, first) {
			t.Errorf("chunk %d does not share overlap word %q with chunk %d", i, first, i+1)
		}
	}
}

func Test_Split_IndicesAreSourceOrdered(t *testing.T) {
	t.Parallel()
	chunks := Split(strings.Repeat("alpha beta gamma delta. ", 30), 60, 10)
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d has index %d", i, chunk.Index)
		}
	}
}

func Test_Split_DoctorRecordScenario(t *testing.T) {
	t.Parallel()
	text := "Dr. Alice - Cardiology, Fee: $150\n\nDr. Bob - Dermatology, Fee: $120"
	chunks := Split(text, 30, 5)

	if len(chunks) < 2 {
		t.Fatalf("want at least 2 chunks, got %d", len(chunks))
	}
	for _, chunk := range chunks {
		if n := len([]rune(chunk.Text)); n > 30 {
			t.Errorf("chunk %d exceeds size: %d chars (%q)", chunk.Index, n, chunk.Text)
		}
	}

	joined := ""
	for _, c := range chunks {
		joined += c.Text + "\n"
	}
	for _, marker := range []string{"Alice", "Cardiology", "Bob", "Dermatology", "$120"} {
		if !strings.Contains(joined, marker) {
			t.Errorf("marker %q lost during chunking", marker)
		}
	}

	// Alice and her specialty must land in the same chunk for retrieval.
	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, "Alice") && strings.Contains(c.Text, "Cardiology") {
			found = true
		}
	}
	if !found {
		t.Error("no chunk contains both Alice and Cardiology")
	}
}

func Test_Split_DefaultsAppliedForInvalidParams(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("steady text flows onward here. ", 100)
	chunks := Split(text, 0, -5)
	if len(chunks) == 0 {
		t.Fatal("expected chunks with default parameters")
	}
	for _, chunk := range chunks {
		if n := len([]rune(chunk.Text)); n > DefaultSize {
			t.Errorf("chunk exceeds default size: %d", n)
		}
	}
}
