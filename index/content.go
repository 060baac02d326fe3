package index

import (
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// ContentIndex provides full-text search over raw file contents using an
// in-memory bleve index. It complements the symbol index: symbols answer
// "where is X defined", content answers "where does X appear".
type ContentIndex struct {
	mu       sync.RWMutex
	index    bleve.Index
	contents map[string]string // relative path → raw content, for line extraction
}

// contentDocument is the shape stored in bleve. Content itself is not stored
// in bleve — the contents map keeps it for line-level result extraction.
type contentDocument struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	Language string `json:"language"`
}

// NewContentIndex creates an empty in-memory content index.
func NewContentIndex() (*ContentIndex, error) {
	bleveIndex, err := bleve.NewMemOnly(contentMapping())
	if err != nil {
		return nil, fmt.Errorf("creating content index: %w", err)
	}
	return &ContentIndex{
		index:    bleveIndex,
		contents: make(map[string]string),
	}, nil
}

func contentMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = false
	contentField.IncludeInAll = true
	docMapping.AddFieldMappingsAt("content", contentField)

	pathField := bleve.NewTextFieldMapping()
	pathField.Store = true
	pathField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("path", pathField)

	langField := bleve.NewKeywordFieldMapping()
	langField.Store = true
	langField.IncludeInAll = false
	docMapping.AddFieldMappingsAt("language", langField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Upsert adds or replaces a file's content in the index.
func (ci *ContentIndex) Upsert(relPath string, content string, language string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	ci.contents[relPath] = content
	doc := contentDocument{Content: content, Path: relPath, Language: language}
	if err := ci.index.Index(relPath, doc); err != nil {
		return fmt.Errorf("indexing content of %s: %w", relPath, err)
	}
	return nil
}

// Delete removes a file from the index. Unknown paths are a no-op.
func (ci *ContentIndex) Delete(relPath string) error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	delete(ci.contents, relPath)
	if err := ci.index.Delete(relPath); err != nil {
		return fmt.Errorf("deleting content of %s: %w", relPath, err)
	}
	return nil
}

// Content returns the raw content of an indexed file.
func (ci *ContentIndex) Content(relPath string) (string, bool) {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	content, ok := ci.contents[relPath]
	return content, ok
}

// DocumentCount returns the number of indexed documents.
func (ci *ContentIndex) DocumentCount() uint64 {
	ci.mu.RLock()
	defer ci.mu.RUnlock()
	count, _ := ci.index.DocCount()
	return count
}

// Clear drops all documents and recreates the backing bleve index.
func (ci *ContentIndex) Clear() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()

	if err := ci.index.Close(); err != nil {
		return fmt.Errorf("closing content index: %w", err)
	}
	fresh, err := bleve.NewMemOnly(contentMapping())
	if err != nil {
		return fmt.Errorf("recreating content index: %w", err)
	}
	ci.index = fresh
	ci.contents = make(map[string]string)
	return nil
}

// Close closes the backing bleve index.
func (ci *ContentIndex) Close() error {
	ci.mu.Lock()
	defer ci.mu.Unlock()
	return ci.index.Close()
}
