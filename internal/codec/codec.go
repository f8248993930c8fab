// Package codec serializes log records to and from their blob wire
// form: one "key: value" line per field, plain text, human-readable
// straight off the store.
package codec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/logvault/backend/internal/models"
)

// BlobExtension is appended to every record blob name.
const BlobExtension = ".txt"

var sanitizer = strings.NewReplacer(":", "-", " ", "_")

// SanitizeTimestamp rewrites a "YYYY-MM-DD HH:MM:SS" timestamp into a
// form legal in blob names (colons and spaces break the day-folder
// download path).
func SanitizeTimestamp(ts string) string {
	return sanitizer.Replace(ts)
}

// BlobName builds the store name for a record's blob.
func BlobName(rec models.LogRecord) string {
	return rec.Filename + "_" + SanitizeTimestamp(rec.ReceivedAt) + BlobExtension
}

// Encode renders a record into its blob name and body. Field order is
// fixed; extra keys follow in insertion-independent sorted order so
// encoding is deterministic.
func Encode(rec models.LogRecord) (string, []byte) {
	var b strings.Builder
	writeLine(&b, "filename", rec.Filename)
	writeLine(&b, "duration", formatFloat(rec.Duration))
	writeLine(&b, "size", strconv.FormatInt(rec.Size, 10))
	writeLine(&b, "received_at", rec.ReceivedAt)
	writeLine(&b, "queue_time", formatFloat(rec.QueueTime))
	writeLine(&b, "process_time", formatFloat(rec.ProcessTime))
	writeLine(&b, "text", rec.Text)
	for _, k := range sortedKeys(rec.Extra) {
		writeLine(&b, k, rec.Extra[k])
	}
	return BlobName(rec), []byte(b.String())
}

// Decode parses a record blob body. Each line splits on the first
// colon; unknown keys are retained in Extra; numeric keys coerce to
// zero on parse failure rather than rejecting the record.
func Decode(data []byte) (models.LogRecord, error) {
	var rec models.LogRecord

	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			return rec, fmt.Errorf("malformed record line %q", line)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimPrefix(value, " ")

		switch key {
		case "filename":
			rec.Filename = value
		case "duration":
			rec.Duration = models.CoerceFloatString(value)
		case "size":
			rec.Size = models.CoerceIntString(value)
		case "received_at":
			rec.ReceivedAt = value
		case "queue_time":
			rec.QueueTime = models.CoerceFloatString(value)
		case "process_time":
			rec.ProcessTime = models.CoerceFloatString(value)
		case "text":
			rec.Text = value
		case "blob_id":
			rec.BlobID = value
		default:
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[key] = value
		}
	}
	return rec, nil
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// formatFloat produces the canonical textual form: no trailing zeros,
// so 41.50 round-trips as 41.5.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
