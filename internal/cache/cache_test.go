package cache

import (
	"reflect"
	"sync"
	"testing"

	"github.com/logvault/backend/internal/models"
)

func rec(filename, receivedAt, blobID string) models.LogRecord {
	return models.LogRecord{
		Filename:   filename,
		ReceivedAt: receivedAt,
		BlobID:     blobID,
		Duration:   1.0,
		Size:       100,
	}
}

func TestReplaceAllKeepsListsInLockstep(t *testing.T) {
	p := New()
	p.AppendOne(rec("old.txt", "2024-01-01 00:00:00", "stale"))

	records := []models.LogRecord{
		rec("a.txt", "2025-01-01 10:00:00", "blob-1"),
		rec("b.txt", "2025-01-01 11:00:00", "blob-2"),
	}
	p.ReplaceAll(records)

	if p.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", p.Len())
	}
	got := p.Query("", "")
	if !reflect.DeepEqual(got, records) {
		t.Errorf("unexpected records: %+v", got)
	}
	if stats := p.StatsByMinute(); len(stats) != 2 {
		t.Errorf("summaries out of lockstep: %+v", stats)
	}
}

func TestQueryFilters(t *testing.T) {
	p := New()
	p.ReplaceAll([]models.LogRecord{
		rec("app.log", "2025-01-01 10:00:00", "blob-1"),
		rec("app.log", "2025-01-02 10:00:00", "blob-2"),
		rec("worker.log", "2025-01-01 12:00:00", "blob-3"),
	})

	tests := []struct {
		name     string
		filename string
		date     string
		wantIDs  []string
	}{
		{"no filters", "", "", []string{"blob-1", "blob-2", "blob-3"}},
		{"filename substring", "app", "", []string{"blob-1", "blob-2"}},
		{"date prefix", "", "2025-01-01", []string{"blob-1", "blob-3"}},
		{"both filters", "app", "2025-01-01", []string{"blob-1"}},
		{"no match", "nope", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Query(tt.filename, tt.date)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.BlobID)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Errorf("got %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestFindByKey(t *testing.T) {
	p := New()
	p.ReplaceAll([]models.LogRecord{
		rec("a.txt", "2025-01-01 10:00:00", "blob-1"),
		rec("a.txt", "2025-01-01 10:00:00", "blob-dup"),
		rec("b.txt", "2025-01-01 11:00:00", "blob-2"),
	})

	got, ok := p.FindByKey("a.txt", "2025-01-01 10:00:00")
	if !ok {
		t.Fatal("expected a match")
	}
	// Duplicates are possible; first match wins.
	if got.BlobID != "blob-1" {
		t.Errorf("got %q, want blob-1", got.BlobID)
	}

	if _, ok := p.FindByKey("a.txt", "2025-01-01 99:99:99"); ok {
		t.Error("expected no match for wrong timestamp")
	}
}

func TestStatsGrouping(t *testing.T) {
	p := New()
	p.ReplaceAll([]models.LogRecord{
		rec("a.txt", "2025-01-01 10:00:00", "blob-1"),
		rec("b.txt", "2025-01-01 10:00:30", "blob-2"),
		rec("c.txt", "2025-01-01 11:00:00", "blob-3"),
	})

	wantMinute := map[string]int{
		"2025-01-01 10:00": 2,
		"2025-01-01 11:00": 1,
	}
	if got := p.StatsByMinute(); !reflect.DeepEqual(got, wantMinute) {
		t.Errorf("StatsByMinute: got %v, want %v", got, wantMinute)
	}

	wantDay := map[string]int{"2025-01-01": 3}
	if got := p.HistogramByDay(); !reflect.DeepEqual(got, wantDay) {
		t.Errorf("HistogramByDay: got %v, want %v", got, wantDay)
	}
}

func TestSummary(t *testing.T) {
	p := New()
	p.ReplaceAll([]models.LogRecord{
		{Filename: "a", ReceivedAt: "2025-01-01 10:00:00", Duration: 1.5, Size: 10},
		{Filename: "b", ReceivedAt: "2025-01-01 10:01:00", Duration: 2.5, Size: 20},
	})

	got := p.Summary()
	want := models.UsageSummary{TotalRecords: 2, TotalDurationSeconds: 4.0, TotalSizeBytes: 30}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestRemoveByBlobID(t *testing.T) {
	p := New()
	p.ReplaceAll([]models.LogRecord{
		rec("a.txt", "2025-01-01 10:00:00", "blob-1"),
		rec("b.txt", "2025-01-01 11:00:00", "blob-2"),
	})

	p.RemoveByBlobID("blob-1")

	if p.Len() != 1 {
		t.Fatalf("expected 1 record, got %d", p.Len())
	}
	if _, ok := p.FindByKey("a.txt", "2025-01-01 10:00:00"); ok {
		t.Error("removed record still findable")
	}
	if stats := p.HistogramByDay(); stats["2025-01-01"] != 1 {
		t.Errorf("summaries out of lockstep after remove: %v", stats)
	}

	// Removing a missing ID is a no-op.
	p.RemoveByBlobID("blob-1")
	if p.Len() != 1 {
		t.Errorf("second remove changed the cache")
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.AppendOne(rec("a.txt", "2025-01-01 10:00:00", "blob"))
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				p.Query("a", "2025")
				p.StatsByMinute()
				p.Summary()
			}
		}()
	}
	wg.Wait()

	if p.Len() != 800 {
		t.Errorf("expected 800 records, got %d", p.Len())
	}
}
