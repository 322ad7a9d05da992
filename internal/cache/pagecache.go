// Package cache persists fetched block trees between builds so a run can
// skip re-fetching records whose edit timestamp has not moved.
//
// Layout on disk:
//
//	<dir>/pages.json        index mapping record ID -> {last_edited_time, fetched_at}
//	<dir>/blocks/<id>.json  block tree snapshot for that record
//
// Corruption or absence of any file is a total cache miss, never an error.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"permessi/internal/notion"
)

// IndexEntry records when a page was last fetched and the remote edit
// timestamp it was fetched at. An entry is valid only on exact timestamp
// match.
type IndexEntry struct {
	LastEditedTime string    `json:"last_edited_time"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// PageCache is the two-level content-change cache. Not safe for concurrent
// use; the pipeline is single-threaded by design.
type PageCache struct {
	dir    string
	index  map[string]IndexEntry
	logger *slog.Logger
}

// New opens the cache rooted at dir, loading the page index. A missing or
// unreadable index starts empty.
func New(dir string, logger *slog.Logger) *PageCache {
	c := &PageCache{
		dir:    dir,
		index:  map[string]IndexEntry{},
		logger: logger,
	}

	data, err := os.ReadFile(c.indexPath())
	if err != nil {
		return c
	}
	if err := json.Unmarshal(data, &c.index); err != nil {
		logger.Warn("page index unreadable, starting with empty cache", "path", c.indexPath(), "error", err)
		c.index = map[string]IndexEntry{}
	}
	return c
}

func (c *PageCache) indexPath() string {
	return filepath.Join(c.dir, "pages.json")
}

func (c *PageCache) blocksPath(pageID string) string {
	return filepath.Join(c.dir, "blocks", notion.NormalizeID(pageID)+".json")
}

// Get returns the cached block tree for a record. A hit requires the
// stored edit timestamp to exactly equal lastEdited. The boolean carries
// the hit, not the slice: a zero-block snapshot is still a valid hit.
func (c *PageCache) Get(pageID, lastEdited string) ([]notion.Block, bool) {
	entry, ok := c.index[notion.NormalizeID(pageID)]
	if !ok || entry.LastEditedTime != lastEdited {
		return nil, false
	}

	data, err := os.ReadFile(c.blocksPath(pageID))
	if err != nil {
		return nil, false
	}

	var blocks []notion.Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		c.logger.Warn("block snapshot unreadable, treating as miss", "page_id", pageID, "error", err)
		return nil, false
	}
	return blocks, true
}

// Put stores a freshly fetched block tree and refreshes the index entry.
// Writes are whole-file, so an interrupted run loses at most the latest
// entry, never corrupts one.
func (c *PageCache) Put(pageID string, blocks []notion.Block, lastEdited string) error {
	id := notion.NormalizeID(pageID)

	if err := os.MkdirAll(filepath.Join(c.dir, "blocks"), 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(blocks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal block snapshot: %w", err)
	}
	if err := os.WriteFile(c.blocksPath(id), data, 0644); err != nil {
		return fmt.Errorf("write block snapshot: %w", err)
	}

	c.index[id] = IndexEntry{
		LastEditedTime: lastEdited,
		FetchedAt:      time.Now().UTC(),
	}
	return c.saveIndex()
}

func (c *PageCache) saveIndex() error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal page index: %w", err)
	}
	if err := os.WriteFile(c.indexPath(), data, 0644); err != nil {
		return fmt.Errorf("write page index: %w", err)
	}
	return nil
}

// Len returns the number of indexed records.
func (c *PageCache) Len() int {
	return len(c.index)
}

// Clear deletes the entire cache directory.
func (c *PageCache) Clear() error {
	c.index = map[string]IndexEntry{}
	if err := os.RemoveAll(c.dir); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
