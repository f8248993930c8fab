// Package cache holds the process-local mirror of the index document:
// full records plus their listing summaries, kept in positional
// lockstep behind a single mutex. The cache is never persisted; it is
// rebuilt from the index at startup and patched after each committed
// create or delete.
package cache

import (
	"strings"
	"sync"

	"github.com/logvault/backend/internal/models"
)

// Projection is safe for concurrent use. The lock covers every read
// and write in full; callers must never invoke a store or index
// operation while holding it — remote I/O happens first, the local
// mutation after.
type Projection struct {
	mu        sync.Mutex
	records   []models.LogRecord
	summaries []models.RecordSummary
}

func New() *Projection {
	return &Projection{}
}

// ReplaceAll swaps in a freshly loaded record set. Called once by the
// startup reconciler.
func (p *Projection) ReplaceAll(records []models.LogRecord) {
	summaries := make([]models.RecordSummary, len(records))
	for i, rec := range records {
		summaries[i] = rec.Summary()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = records
	p.summaries = summaries
}

// AppendOne records a newly created entry after its blob upload and
// index append have both succeeded.
func (p *Projection) AppendOne(rec models.LogRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, rec)
	p.summaries = append(p.summaries, rec.Summary())
}

// RemoveByBlobID drops every entry carrying the given blob ID from
// both lists.
func (p *Projection) RemoveByBlobID(blobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	records := p.records[:0]
	summaries := p.summaries[:0]
	for i, rec := range p.records {
		if rec.BlobID != blobID {
			records = append(records, rec)
			summaries = append(summaries, p.summaries[i])
		}
	}
	p.records = records
	p.summaries = summaries
}

// Query returns records whose filename contains filenameSubstring and
// whose received_at starts with datePrefix. Either filter may be
// empty; both compose. Order is insertion order and the result is a
// copy the caller may keep.
func (p *Projection) Query(filenameSubstring, datePrefix string) []models.LogRecord {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.LogRecord, 0, len(p.records))
	for _, rec := range p.records {
		if filenameSubstring != "" && !strings.Contains(rec.Filename, filenameSubstring) {
			continue
		}
		if datePrefix != "" && !strings.HasPrefix(rec.ReceivedAt, datePrefix) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FindByKey returns the first record matching both filename and
// received_at exactly. Duplicates are possible; first match wins.
func (p *Projection) FindByKey(filename, receivedAt string) (models.LogRecord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, rec := range p.records {
		if rec.Filename == filename && rec.ReceivedAt == receivedAt {
			return rec, true
		}
	}
	return models.LogRecord{}, false
}

// StatsByMinute groups records by the minute prefix of received_at
// ("YYYY-MM-DD HH:MM").
func (p *Projection) StatsByMinute() map[string]int {
	return p.groupByPrefix(16)
}

// HistogramByDay groups records by the day prefix of received_at
// ("YYYY-MM-DD").
func (p *Projection) HistogramByDay() map[string]int {
	return p.groupByPrefix(10)
}

func (p *Projection) groupByPrefix(width int) map[string]int {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make(map[string]int)
	for _, s := range p.summaries {
		key := s.ReceivedAt
		if len(key) > width {
			key = key[:width]
		}
		out[key]++
	}
	return out
}

// Summary aggregates the full record set.
func (p *Projection) Summary() models.UsageSummary {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sum models.UsageSummary
	sum.TotalRecords = len(p.records)
	for _, rec := range p.records {
		sum.TotalDurationSeconds += rec.Duration
		sum.TotalSizeBytes += rec.Size
	}
	return sum
}

// Len reports the current record count.
func (p *Projection) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.records)
}
