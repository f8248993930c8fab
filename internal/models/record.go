package models

// ReceivedAtLayout is the timestamp format carried by every record,
// e.g. "2025-01-01 10:00:00". It is treated as an opaque sortable
// string everywhere except blob naming, where it is sanitized.
const ReceivedAtLayout = "2006-01-02 15:04:05"

// LogRecord is one logged event. BlobID is empty until the record's
// blob has been durably written to the store; a record never enters
// the index without it.
type LogRecord struct {
	Filename    string            `json:"filename"`
	Duration    float64           `json:"duration"`
	Size        int64             `json:"size"`
	ReceivedAt  string            `json:"received_at"`
	QueueTime   float64           `json:"queue_time"`
	ProcessTime float64           `json:"process_time"`
	Text        string            `json:"text"`
	BlobID      string            `json:"blob_id,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// RecordSummary is the listing projection of a record kept alongside
// the full record in the cache.
type RecordSummary struct {
	ReceivedAt string `json:"received_at"`
	Filename   string `json:"filename"`
	BlobID     string `json:"blob_id"`
}

// Summary returns the record's listing projection.
func (r LogRecord) Summary() RecordSummary {
	return RecordSummary{
		ReceivedAt: r.ReceivedAt,
		Filename:   r.Filename,
		BlobID:     r.BlobID,
	}
}

// UsageSummary aggregates the full record set.
type UsageSummary struct {
	TotalRecords         int     `json:"total_files"`
	TotalDurationSeconds float64 `json:"total_duration"`
	TotalSizeBytes       int64   `json:"total_size"`
}
