package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/filepanel/backend/internal/models"
)

func newTestLog(t *testing.T, retention int) *Log {
	t.Helper()
	log, err := NewLog(filepath.Join(t.TempDir(), "activity.duckdb"), retention)
	if err != nil {
		t.Fatalf("NewLog: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log
}

func TestLog_RecordAndRecent(t *testing.T) {
	log := newTestLog(t, 0)
	ctx := context.Background()

	ops := []string{models.OpUpload, models.OpRename, models.OpDelete}
	for i, op := range ops {
		if err := log.Record(ctx, op, fmt.Sprintf("id-%d", i), fmt.Sprintf("f%d.txt", i), ""); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := log.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Newest first
	if entries[0].Operation != models.OpDelete {
		t.Errorf("expected newest entry first, got %s", entries[0].Operation)
	}
	if entries[2].Operation != models.OpUpload {
		t.Errorf("expected oldest entry last, got %s", entries[2].Operation)
	}
	if entries[0].FileID != "id-2" || entries[0].FileName != "f2.txt" {
		t.Errorf("unexpected entry fields: %+v", entries[0])
	}
}

func TestLog_RecentLimit(t *testing.T) {
	log := newTestLog(t, 0)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		log.Record(ctx, models.OpUpload, fmt.Sprintf("id-%d", i), "f.txt", "")
	}

	entries, err := log.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 entries, got %d", len(entries))
	}
}

func TestLog_Prune(t *testing.T) {
	log := newTestLog(t, 4)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		log.Record(ctx, models.OpUpload, fmt.Sprintf("id-%d", i), "f.txt", "")
	}

	if err := log.Prune(ctx); err != nil {
		t.Fatalf("Prune: %v", err)
	}

	entries, _ := log.Recent(ctx, 100)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries after prune, got %d", len(entries))
	}
	// The survivors are the newest rows
	if entries[0].FileID != "id-9" || entries[3].FileID != "id-6" {
		t.Errorf("prune kept wrong rows: first=%s last=%s", entries[0].FileID, entries[3].FileID)
	}
}

func TestEncodeMsgpack_RoundTrip(t *testing.T) {
	entries := []models.ActivityEntry{
		{ID: 1, Operation: models.OpConvert, FileID: "a", FileName: "a.pdf", Detail: "csv-to-pdf"},
		{ID: 2, Operation: models.OpDelete, FileID: "b", FileName: "b.txt"},
	}

	data, err := EncodeMsgpack(entries)
	if err != nil {
		t.Fatalf("EncodeMsgpack: %v", err)
	}

	var decoded []models.ActivityEntry
	if err := msgpack.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decoding msgpack: %v", err)
	}
	if len(decoded) != 2 || decoded[0].Operation != models.OpConvert || decoded[1].FileID != "b" {
		t.Errorf("round trip mismatch: %+v", decoded)
	}
}

func TestEncodeCSV(t *testing.T) {
	entries := []models.ActivityEntry{
		{ID: 7, Operation: models.OpRename, FileID: "x", FileName: "new.txt", Detail: "old.txt -> new.txt"},
	}

	data, err := EncodeCSV(entries)
	if err != nil {
		t.Fatalf("EncodeCSV: %v", err)
	}

	out := string(data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,operation,file_id,file_name,detail") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "rename") || !strings.Contains(lines[1], "new.txt") {
		t.Errorf("unexpected row: %s", lines[1])
	}
}
