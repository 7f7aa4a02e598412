package fraud

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/scamwatch/sentinel/internal/models"
)

// Batch item error values.
const (
	ItemErrInvalidChannel = "invalid channel"
	ItemErrFailed         = "analysis_failed"
)

// scoreItem is a seam for fault-injection tests
var scoreItem = (*Engine).score

// AnalyzeBatch scores each item independently. The output has one entry per
// item in input order; a failing item yields an error entry and never
// aborts its siblings.
func (e *Engine) AnalyzeBatch(items []models.BatchItem) []models.BatchEntry {
	entries := make([]models.BatchEntry, len(items))
	e.fanOut(len(items), func(i int) {
		entries[i] = e.analyzeItem(i, items[i])
	})
	return entries
}

// AnalyzeRawBatch decodes and scores each raw JSON item. Only an item that is
// not a JSON object fails to decode; it is reported as a failed analysis
// without an id.
func (e *Engine) AnalyzeRawBatch(raw []json.RawMessage) []models.BatchEntry {
	entries := make([]models.BatchEntry, len(raw))
	e.fanOut(len(raw), func(i int) {
		var item models.BatchItem
		if err := json.Unmarshal(raw[i], &item); err != nil {
			log.Error().Err(err).Int("index", i).Msg("Batch item decode failed")
			entries[i] = models.BatchEntry{Error: ItemErrFailed}
			return
		}
		entries[i] = e.analyzeItem(i, item)
	})
	return entries
}

// fanOut runs fn for every index with bounded parallelism.
func (e *Engine) fanOut(n int, fn func(i int)) {
	if n == 0 {
		return
	}
	if e.opts.Workers == 1 || n == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.opts.Workers)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			fn(idx)
		}(i)
	}
	wg.Wait()
}

func (e *Engine) analyzeItem(idx int, item models.BatchItem) (entry models.BatchEntry) {
	entry.ID = item.ID
	if !item.Channel.Valid() {
		entry.Error = ItemErrInvalidChannel
		return entry
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("id", string(item.ID)).
				Int("index", idx).
				Str("panic", fmt.Sprint(r)).
				Msg("Batch item analysis panicked")
			entry = models.BatchEntry{ID: item.ID, Error: ItemErrFailed}
		}
	}()

	if item.Content == "" {
		log.Warn().Err(ErrEmptyContent).Str("id", string(item.ID)).Int("index", idx).Msg("Batch item rejected")
		entry.Error = ItemErrFailed
		return entry
	}

	result := scoreItem(e, item.Channel, item.Content, item.Metadata)
	entry.AnalysisResult = &result
	return entry
}
