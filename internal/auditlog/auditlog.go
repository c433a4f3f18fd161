// Package auditlog keeps a CSV trail of operator matching actions so a
// reconciliation run can be reviewed after the fact.
package auditlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is one row in the audit log.
type Entry struct {
	Timestamp time.Time
	Action    string // manual-match, manual-unmatch, category-match, category-unmatch, apply, rewrite-categories
	LedgerKey string // "txn:<index>" or a category label
	GroupID   string
	Detail    string
}

// Header is the CSV header for qifsync-audit.csv.
const Header = "timestamp,action,ledger_key,group_id,detail"

const logFile = "qifsync-audit.csv"

var numFields = len(strings.Split(Header, ","))

// MarshalEntry converts an Entry to a CSV row in Header column order.
func MarshalEntry(e Entry) []string {
	return []string{
		e.Timestamp.Format(time.RFC3339),
		e.Action,
		e.LedgerKey,
		e.GroupID,
		e.Detail,
	}
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[0], err)
	}
	return Entry{
		Timestamp: ts,
		Action:    record[1],
		LedgerKey: record[2],
		GroupID:   record[3],
		Detail:    record[4],
	}, nil
}

// Append writes entries to <dir>/qifsync-audit.csv, creating the file and
// header on first write.
func Append(dir string, entries []Entry) error {
	path := filepath.Join(dir, logFile)
	_, statErr := os.Stat(path)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if os.IsNotExist(statErr) {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing audit header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing audit entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/qifsync-audit.csv, oldest first.
// A missing file is not an error; it reads as an empty log.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(dir, logFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	var entries []Entry
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading audit log: %w", err)
		}
		if row == 1 {
			continue // header
		}
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		entries = append(entries, e)
	}
}
