package observability

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var baseTime = time.Date(2024, 7, 10, 9, 0, 0, 0, time.UTC)

func newTestLog(t *testing.T) EventLog {
	t.Helper()
	log, err := NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	t.Cleanup(func() { _ = log.Close() })
	return log
}

func writeEvents(t *testing.T, log EventLog, events ...Event) {
	t.Helper()
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}
}

func TestEventLog_WriteAndRead(t *testing.T) {
	log := newTestLog(t)

	writeEvents(t, log,
		Event{Time: baseTime, Level: "INFO", Type: "task.created", Message: "task created", Data: map[string]any{"task_id": "1"}},
		Event{Time: baseTime.Add(time.Second), Level: "WARN", Type: "task.deleted", Message: "task deleted", Data: map[string]any{"task_id": "1"}},
	)

	result, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 events, got %d", len(result))
	}
	if result[0].Type != "task.created" || result[0].Message != "task created" {
		t.Errorf("unexpected first event: %+v", result[0])
	}
	if result[1].Level != "WARN" {
		t.Errorf("expected level WARN, got %s", result[1].Level)
	}
	if result[1].TaskID() != "1" {
		t.Errorf("TaskID() = %q, want 1", result[1].TaskID())
	}
}

func TestEventLog_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}

func TestEventLog_Filters(t *testing.T) {
	log := newTestLog(t)
	writeEvents(t, log,
		Event{Time: baseTime, Type: "task.created", Data: map[string]any{"task_id": "a"}},
		Event{Time: baseTime.Add(time.Hour), Type: "task.updated", Data: map[string]any{"task_id": "a"}},
		Event{Time: baseTime.Add(2 * time.Hour), Type: "task.created", Data: map[string]any{"task_id": "b"}},
		Event{Time: baseTime.Add(3 * time.Hour), Type: "task.deleted", Data: map[string]any{"task_id": "b"}},
	)

	since := baseTime.Add(30 * time.Minute)
	until := baseTime.Add(150 * time.Minute)

	tests := []struct {
		name   string
		filter EventFilter
		want   int
	}{
		{"none", EventFilter{}, 4},
		{"type", EventFilter{Type: "task.created"}, 2},
		{"task", EventFilter{TaskID: "b"}, 2},
		{"since", EventFilter{Since: &since}, 3},
		{"range", EventFilter{Since: &since, Until: &until}, 2},
		{"combined", EventFilter{Since: &since, TaskID: "a"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := log.Read(tt.filter)
			if err != nil {
				t.Fatalf("reading events: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, len(got))
			}
		})
	}
}

func TestEventLog_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"time":"2024-07-10T09:00:00Z","level":"INFO","type":"task.created","msg":"task created"}
not json at all

{"time":"2024-07-10T10:00:00Z","level":"INFO","type":"task.updated","msg":"task updated"}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("creating event log: %v", err)
	}
	defer log.Close()

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 valid events, got %d", len(got))
	}
}

func TestEventLog_EmptyLog(t *testing.T) {
	log := newTestLog(t)

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no events, got %d", len(got))
	}
}

func TestEventLog_ConcurrentWrites(t *testing.T) {
	log := newTestLog(t)

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = log.Write(Event{Time: baseTime, Level: "INFO", Type: "task.updated"})
			}
		}()
	}
	wg.Wait()

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != writers*perWriter {
		t.Fatalf("expected %d events, got %d", writers*perWriter, len(got))
	}
}

func TestRecorder_LogEvent(t *testing.T) {
	log := newTestLog(t)
	rec := NewRecorder(log, func() time.Time { return baseTime })

	if err := rec.LogEvent("task.completed", map[string]any{"task_id": "3"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := rec.LogEvent("task.deleted", map[string]any{"task_id": "3"}); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}
	if err := rec.LogEvent("task.archived", nil); err != nil {
		t.Fatalf("LogEvent: %v", err)
	}

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d", len(got))
	}
	if got[0].Message != "task completed" || got[0].Level != "INFO" || !got[0].Time.Equal(baseTime) {
		t.Errorf("unexpected completed event: %+v", got[0])
	}
	if got[1].Level != "WARN" {
		t.Errorf("expected deletes at WARN, got %s", got[1].Level)
	}
	if got[2].Message != "task.archived" {
		t.Errorf("unknown types use the type as message, got %q", got[2].Message)
	}
}
