package rulestore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bitbound/bitbound-core/internal/event"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewSQLiteRepository(db)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return repo
}

func thresholdRecord(id, deviceID string) RuleRecord {
	return RuleRecord{
		ID:         event.RuleID(id),
		Kind:       event.KindThreshold,
		DeviceID:   deviceID,
		Expression: "temperature > 25°C",
		Debounce:   500 * time.Millisecond,
	}
}

func TestSaveAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := thresholdRecord("rule-1", "sensor-1")
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, "rule-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Kind != event.KindThreshold {
		t.Errorf("Kind = %s, want %s", got.Kind, event.KindThreshold)
	}
	if got.DeviceID != "sensor-1" {
		t.Errorf("DeviceID = %q, want sensor-1", got.DeviceID)
	}
	if got.Expression != "temperature > 25°C" {
		t.Errorf("Expression = %q", got.Expression)
	}
	if got.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v, want 500ms", got.Debounce)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestSaveDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	record := thresholdRecord("rule-1", "sensor-1")
	if err := repo.Save(ctx, record); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, record); !errors.Is(err, ErrExists) {
		t.Errorf("duplicate Save: got %v, want ErrExists", err)
	}
}

func TestSaveInvalidRecord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		record RuleRecord
	}{
		{
			name:   "empty id",
			record: RuleRecord{Kind: event.KindInterval, DeviceID: "sensor-1", Period: time.Second},
		},
		{
			name:   "empty device",
			record: RuleRecord{ID: "rule-1", Kind: event.KindInterval, Period: time.Second},
		},
		{
			name:   "threshold without expression",
			record: RuleRecord{ID: "rule-1", Kind: event.KindThreshold, DeviceID: "sensor-1"},
		},
		{
			name:   "change without property",
			record: RuleRecord{ID: "rule-1", Kind: event.KindChange, DeviceID: "sensor-1"},
		},
		{
			name:   "interval without period",
			record: RuleRecord{ID: "rule-1", Kind: event.KindInterval, DeviceID: "sensor-1"},
		},
		{
			name:   "unknown kind",
			record: RuleRecord{ID: "rule-1", Kind: "cron", DeviceID: "sensor-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := repo.Save(ctx, tt.record); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Save = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestGetNotFound(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.Get(context.Background(), "no-such-rule"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
}

func TestListByDevice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	records := []RuleRecord{
		thresholdRecord("rule-1", "sensor-1"),
		{ID: "rule-2", Kind: event.KindChange, DeviceID: "sensor-1", Property: "humidity"},
		{ID: "rule-3", Kind: event.KindInterval, DeviceID: "sensor-2", Period: time.Second},
	}
	for _, record := range records {
		if err := repo.Save(ctx, record); err != nil {
			t.Fatalf("Save(%s) failed: %v", record.ID, err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("List returned %d records, want 3", len(all))
	}

	forSensor1, err := repo.ListByDevice(ctx, "sensor-1")
	if err != nil {
		t.Fatalf("ListByDevice failed: %v", err)
	}
	if len(forSensor1) != 2 {
		t.Errorf("ListByDevice returned %d records, want 2", len(forSensor1))
	}

	change := forSensor1[1]
	if change.Kind != event.KindChange || change.Property != "humidity" {
		t.Errorf("second record = %+v, want change rule on humidity", change)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, thresholdRecord("rule-1", "sensor-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := repo.Delete(ctx, "rule-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, "rule-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, "rule-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteByDevice(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Save(ctx, thresholdRecord("rule-1", "sensor-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, thresholdRecord("rule-2", "sensor-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, thresholdRecord("rule-3", "sensor-2")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	n, err := repo.DeleteByDevice(ctx, "sensor-1")
	if err != nil {
		t.Fatalf("DeleteByDevice failed: %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteByDevice removed %d records, want 2", n)
	}

	remaining, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "rule-3" {
		t.Errorf("remaining = %+v, want only rule-3", remaining)
	}
}
