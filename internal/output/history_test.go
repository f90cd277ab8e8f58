package output

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/torosent/arraycompare/internal/metrics"
)

func TestAppendHistoryWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	for i := 0; i < 2; i++ {
		if err := AppendHistory(path, sampleReport()); err != nil {
			t.Fatalf("AppendHistory: %v", err)
		}
	}

	lines := readLines(t, path)
	if len(lines) != 2 {
		t.Fatalf("expected 2 history lines, got %d", len(lines))
	}
	var entry metrics.Report
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("history line is not JSON: %v", err)
	}
	if entry.RunID != sampleReport().RunID || len(entry.Strategies) != 3 {
		t.Errorf("unexpected history entry %+v", entry)
	}
}

func TestAppendHistoryConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := AppendHistory(path, sampleReport()); err != nil {
				t.Errorf("AppendHistory: %v", err)
			}
		}()
	}
	wg.Wait()

	lines := readLines(t, path)
	if len(lines) != 8 {
		t.Fatalf("expected 8 history lines, got %d", len(lines))
	}
	for i, line := range lines {
		if !json.Valid([]byte(line)) {
			t.Errorf("line %d is not valid JSON: %q", i, line)
		}
	}
}

func TestAppendHistoryBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "history.jsonl")
	if err := AppendHistory(path, sampleReport()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("scan history: %v", err)
	}
	return lines
}
