package usage

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAddAndHistoryOrder(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	base := time.Now().UTC()

	for i, tool := range []string{"idea_forge", "pitch_perfect", "prd_generator"} {
		rec := Record{
			Timestamp:    base.Add(time.Duration(i) * time.Minute),
			Provider:     "ollama",
			Model:        "llama3.1",
			Tool:         tool,
			InputTokens:  10,
			OutputTokens: 20,
			Success:      true,
		}
		if err := ledger.Add(ctx, rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	records, err := ledger.History(ctx, 10, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	// Most recent first.
	if records[0].Tool != "prd_generator" || records[2].Tool != "idea_forge" {
		t.Errorf("history not in reverse chronological order: %v, %v, %v",
			records[0].Tool, records[1].Tool, records[2].Tool)
	}
	if records[0].TotalTokens() != 30 {
		t.Errorf("TotalTokens = %d, want 30", records[0].TotalTokens())
	}
}

func TestHistoryLimitAndOffset(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec := Record{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			Provider:  "openai",
			Model:     "gpt-4",
			Success:   true,
		}
		if err := ledger.Add(ctx, rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	page, err := ledger.History(ctx, 2, 1)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page))
	}
	// Skipping the newest, the page starts at the second-newest.
	if !page[0].Timestamp.Equal(base.Add(3 * time.Second).Truncate(time.Second)) {
		t.Errorf("unexpected first record timestamp: %v", page[0].Timestamp)
	}
}

func TestStatsWindowBoundary(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	inside := Record{
		Timestamp:    now.Add(-6 * 24 * time.Hour),
		Provider:     "anthropic",
		Model:        "claude-3-sonnet-20240229",
		InputTokens:  100,
		OutputTokens: 50,
		Success:      true,
	}
	outside := Record{
		Timestamp:    now.Add(-8 * 24 * time.Hour),
		Provider:     "anthropic",
		Model:        "claude-3-sonnet-20240229",
		InputTokens:  999,
		OutputTokens: 999,
		Success:      true,
	}
	if err := ledger.Add(ctx, inside); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := ledger.Add(ctx, outside); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	stats, err := ledger.Stats(ctx, 7)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("expected only the in-window record, got %d", stats.TotalRequests)
	}
	if stats.TotalInputTokens != 100 || stats.TotalOutputTokens != 50 {
		t.Errorf("unexpected token totals: %d in, %d out",
			stats.TotalInputTokens, stats.TotalOutputTokens)
	}
	if stats.TotalTokens != 150 {
		t.Errorf("TotalTokens = %d, want 150", stats.TotalTokens)
	}
}

func TestStatsOmittedWindowAggregatesAllHistory(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	old := Record{
		Timestamp:    now.Add(-40 * 24 * time.Hour),
		Provider:     "openai",
		Model:        "gpt-4",
		Tool:         "idea_forge",
		InputTokens:  7,
		OutputTokens: 3,
		Success:      true,
	}
	recent := Record{
		Timestamp: now,
		Provider:  "ollama",
		Model:     "llama3.1",
		Success:   true,
	}
	if err := ledger.Add(ctx, old); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := ledger.Add(ctx, recent); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	stats, err := ledger.Stats(ctx, 0)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalRequests != 2 {
		t.Errorf("all-history stats missed records: got %d requests, want 2", stats.TotalRequests)
	}
	if stats.TotalTokens != 10 {
		t.Errorf("all-history token total = %d, want 10", stats.TotalTokens)
	}
	if len(stats.ByProvider) != 2 {
		t.Errorf("expected both providers in all-history grouping, got %d", len(stats.ByProvider))
	}
	if len(stats.ByTool) != 1 || stats.ByTool[0].Tool != "idea_forge" {
		t.Errorf("old record's tool missing from all-history grouping: %+v", stats.ByTool)
	}

	// A windowed query over the same data still excludes the old record.
	windowed, err := ledger.Stats(ctx, 30)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if windowed.TotalRequests != 1 {
		t.Errorf("30-day window should exclude the old record, got %d", windowed.TotalRequests)
	}
}

func TestStatsAggregates(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	records := []Record{
		{Timestamp: now, Provider: "ollama", Model: "llama3.1", Tool: "idea_forge", InputTokens: 10, OutputTokens: 10, Success: true, ResponseTimeMs: 100},
		{Timestamp: now, Provider: "ollama", Model: "llama3.1", Tool: "idea_forge", InputTokens: 20, OutputTokens: 20, Success: true, ResponseTimeMs: 300},
		{Timestamp: now, Provider: "openai", Model: "gpt-4", Tool: "pitch_perfect", Success: false, ErrorMessage: "authentication failed", ResponseTimeMs: 50},
	}
	for _, rec := range records {
		if err := ledger.Add(ctx, rec); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	stats, err := ledger.Stats(ctx, 30)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}

	if stats.TotalRequests != 3 || stats.SuccessfulRequests != 2 || stats.FailedRequests != 1 {
		t.Errorf("unexpected request counts: %+v", stats)
	}
	if stats.AvgResponseTimeMs != 150 {
		t.Errorf("AvgResponseTimeMs = %v, want 150", stats.AvgResponseTimeMs)
	}

	if len(stats.ByProvider) != 2 {
		t.Fatalf("expected 2 provider groups, got %d", len(stats.ByProvider))
	}
	ollama := stats.ByProvider[0]
	if ollama.Provider != "ollama" || ollama.Requests != 2 || ollama.InputTokens != 30 {
		t.Errorf("unexpected ollama group: %+v", ollama)
	}

	if len(stats.ByTool) != 2 {
		t.Fatalf("expected 2 tool groups, got %d", len(stats.ByTool))
	}
	if stats.ByTool[0].Tool != "idea_forge" || stats.ByTool[0].Requests != 2 {
		t.Errorf("unexpected tool group: %+v", stats.ByTool[0])
	}
}

func TestFailedRecordsKeepZeroTokens(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	rec := Record{
		Provider:     "gemini",
		Model:        "gemini-pro",
		Success:      false,
		ErrorMessage: "request timed out",
	}
	if err := ledger.Add(ctx, rec); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	records, err := ledger.History(ctx, 1, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	got := records[0]
	if got.Success {
		t.Error("record should be marked failed")
	}
	if got.InputTokens != 0 || got.OutputTokens != 0 {
		t.Errorf("failed record should carry zero tokens: %+v", got)
	}
	if got.ErrorMessage != "request timed out" {
		t.Errorf("error message lost: %q", got.ErrorMessage)
	}
	if got.Timestamp.IsZero() {
		t.Error("zero timestamp should be replaced with now")
	}
}

func TestClear(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		if err := ledger.Add(ctx, Record{Provider: "ollama", Model: "llama3.1", Success: true}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	n, err := ledger.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 4 {
		t.Errorf("Clear removed %d records, want 4", n)
	}

	records, err := ledger.History(ctx, 10, 0)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty history after clear, got %d", len(records))
	}
}

func TestSnapshot(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	if err := ledger.Add(ctx, Record{Provider: "ollama", Model: "llama3.1", InputTokens: 5, OutputTokens: 7, Success: true}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	old := Record{
		Timestamp: time.Now().UTC().Add(-90 * 24 * time.Hour),
		Provider:  "openai",
		Model:     "gpt-4",
		Success:   true,
	}
	if err := ledger.Add(ctx, old); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	snapshot, err := ledger.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if snapshot.ExportID == "" || snapshot.ExportDate == "" {
		t.Error("snapshot missing identity fields")
	}
	if len(snapshot.Records) != 2 {
		t.Errorf("expected 2 records, got %d", len(snapshot.Records))
	}
	// Snapshot statistics cover all history, not a trailing window.
	if snapshot.Statistics.TotalRequests != 2 {
		t.Errorf("snapshot statistics must include old records: %+v", snapshot.Statistics)
	}
}

func TestConcurrentAddAndStats(t *testing.T) {
	ledger, err := OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open ledger: %v", err)
	}
	defer ledger.Close()

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ledger.Add(ctx, Record{Provider: "ollama", Model: "llama3.1", Success: true})
		}()
		go func() {
			defer wg.Done()
			_, _ = ledger.Stats(ctx, 30)
		}()
	}
	wg.Wait()

	stats, err := ledger.Stats(ctx, 30)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalRequests != 10 {
		t.Errorf("expected 10 records after concurrent writes, got %d", stats.TotalRequests)
	}
}
