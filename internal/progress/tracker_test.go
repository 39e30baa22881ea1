package progress

import (
	"fmt"
	"sync"
	"testing"
)

func TestTracker_SetGet(t *testing.T) {
	tr := NewTracker()

	if _, ok := tr.Get("missing"); ok {
		t.Error("expected no entry for unknown token")
	}

	tr.Set("job-1", Status{Status: "transcribing", Progress: 30})
	tr.Set("job-1", Status{Status: "complete", Progress: 100})

	st, ok := tr.Get("job-1")
	if !ok {
		t.Fatal("expected entry for job-1")
	}
	if st.Status != "complete" || st.Progress != 100 {
		t.Errorf("status = %+v", st)
	}
}

func TestTracker_TokensAreIsolated(t *testing.T) {
	tr := NewTracker()
	tr.Set("a", Status{Status: "mapping_contexts", Progress: 20})
	tr.Set("b", Status{Status: "error", Progress: 0, Error: "boom"})

	a, _ := tr.Get("a")
	b, _ := tr.Get("b")
	if a.Status != "mapping_contexts" || b.Status != "error" {
		t.Errorf("entries bled across tokens: a=%+v b=%+v", a, b)
	}
}

func TestTracker_ConcurrentWriters(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			token := fmt.Sprintf("job-%d", n)
			for p := 0; p <= 100; p += 10 {
				tr.Set(token, Status{Status: "working", Progress: p})
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 16; i++ {
		st, ok := tr.Get(fmt.Sprintf("job-%d", i))
		if !ok || st.Progress != 100 {
			t.Errorf("job-%d final status = %+v ok=%v", i, st, ok)
		}
	}
}
