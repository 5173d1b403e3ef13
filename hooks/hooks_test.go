package hooks

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/prepress/cmyk2srgb/core"
)

func testLogger(buf *bytes.Buffer) *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestLoggingHook(t *testing.T) {
	var buf bytes.Buffer
	hook := NewLoggingHook(testLogger(&buf))

	hook.BeforeStage(context.Background(), core.StageTransform, "in.tif")
	hook.AfterStage(context.Background(), core.StageTransform, "in.tif", 12*time.Millisecond, nil)

	out := buf.String()
	if !strings.Contains(out, "convert.stage.start") {
		t.Error("start event not logged")
	}
	if !strings.Contains(out, "convert.stage.done") {
		t.Error("done event not logged")
	}
	if !strings.Contains(out, core.StageTransform) {
		t.Error("stage name missing from log output")
	}
}

func TestLoggingHook_Error(t *testing.T) {
	var buf bytes.Buffer
	hook := NewLoggingHook(testLogger(&buf))

	hook.AfterStage(context.Background(), core.StageEncode, "in.tif", time.Millisecond, errors.New("encode blew up"))

	out := buf.String()
	if !strings.Contains(out, "convert.stage.error") {
		t.Error("error event not logged")
	}
	if !strings.Contains(out, "encode blew up") {
		t.Error("error message missing from log output")
	}
}

func TestInMemoryMetrics_Snapshot(t *testing.T) {
	m := NewInMemoryMetrics()
	m.RecordStageTime(core.StageOpen, 5*time.Millisecond)
	m.RecordStageTime(core.StageOpen, 7*time.Millisecond)
	m.RecordStageTime(core.StageEncode, 3*time.Millisecond)
	m.RecordOutcome(core.StatusEmbeddedICC)
	m.RecordOutcome(core.StatusEmbeddedICC)
	m.RecordOutcome(core.StatusNotCMYK)
	m.RecordError(core.StageTransform)
	m.RecordThroughput(1024)
	m.RecordThroughput(2048)

	snap := m.Snapshot()
	if snap.StageCalls[core.StageOpen] != 2 {
		t.Errorf("open calls: got %d, want 2", snap.StageCalls[core.StageOpen])
	}
	if snap.StageDurationsMs[core.StageOpen] != 12 {
		t.Errorf("open duration: got %d ms, want 12", snap.StageDurationsMs[core.StageOpen])
	}
	if snap.Outcomes[core.StatusEmbeddedICC] != 2 {
		t.Errorf("embedded outcomes: got %d, want 2", snap.Outcomes[core.StatusEmbeddedICC])
	}
	if snap.StageErrors[core.StageTransform] != 1 {
		t.Errorf("transform errors: got %d, want 1", snap.StageErrors[core.StageTransform])
	}
	if snap.TotalThroughputB != 3072 {
		t.Errorf("throughput: got %d, want 3072", snap.TotalThroughputB)
	}

	// The snapshot must be detached from the live store.
	m.RecordOutcome(core.StatusNotCMYK)
	if snap.Outcomes[core.StatusNotCMYK] != 1 {
		t.Error("snapshot shares state with the live store")
	}
}

func TestInMemoryMetrics_ConcurrentAccess(t *testing.T) {
	m := NewInMemoryMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordStageTime(core.StageWrite, time.Millisecond)
				m.RecordOutcome(core.StatusNoEmbeddedICC)
				m.RecordThroughput(1)
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.StageCalls[core.StageWrite] != 800 {
		t.Errorf("write calls: got %d, want 800", snap.StageCalls[core.StageWrite])
	}
	if snap.Outcomes[core.StatusNoEmbeddedICC] != 800 {
		t.Errorf("outcomes: got %d, want 800", snap.Outcomes[core.StatusNoEmbeddedICC])
	}
	if snap.TotalThroughputB != 800 {
		t.Errorf("throughput: got %d, want 800", snap.TotalThroughputB)
	}
}

type countingCollector struct {
	mu     sync.Mutex
	times  int
	errors int
}

func (c *countingCollector) RecordStageTime(string, time.Duration) {
	c.mu.Lock()
	c.times++
	c.mu.Unlock()
}
func (c *countingCollector) RecordOutcome(core.StatusCode) {}
func (c *countingCollector) RecordThroughput(int64)        {}
func (c *countingCollector) RecordError(string) {
	c.mu.Lock()
	c.errors++
	c.mu.Unlock()
}

func TestMetricsHook(t *testing.T) {
	collector := &countingCollector{}
	hook := NewMetricsHook(collector)

	hook.AfterStage(context.Background(), core.StageOpen, "in.tif", time.Millisecond, nil)
	hook.AfterStage(context.Background(), core.StageOpen, "in.tif", time.Millisecond, errors.New("boom"))

	if collector.times != 2 {
		t.Errorf("stage times recorded: got %d, want 2", collector.times)
	}
	if collector.errors != 1 {
		t.Errorf("errors recorded: got %d, want 1", collector.errors)
	}
}
