// SPDX-License-Identifier: MPL-2.0

package inlining

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/wxsinline/wxsinline/internal/discovery"
)

// Index remembers which documents referenced which files in their last run,
// so watch mode can re-inline the documents affected by an edit to a
// referenced file. It is safe for concurrent use.
type Index struct {
	mu   sync.Mutex
	docs map[string]discovery.Document
	// refs maps a referenced file to the documents that referenced it.
	refs map[string]map[string]struct{}
}

// NewIndex returns an empty Index.
func NewIndex() *Index {
	return &Index{
		docs: make(map[string]discovery.Document),
		refs: make(map[string]map[string]struct{}),
	}
}

// Update records the documents of report, replacing what was known about
// each of them.
func (x *Index) Update(report *Report) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, d := range report.Documents {
		key := filepath.Clean(d.Path)
		for _, docs := range x.refs {
			delete(docs, key)
		}
		x.docs[key] = d.Document

		for _, ref := range d.References {
			if ref.Path == "" {
				continue
			}
			refKey := filepath.Clean(ref.Path)
			if x.refs[refKey] == nil {
				x.refs[refKey] = make(map[string]struct{})
			}
			x.refs[refKey][key] = struct{}{}
		}
	}
}

// Forget drops a document, e.g. after it was deleted.
func (x *Index) Forget(path string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	key := filepath.Clean(path)
	delete(x.docs, key)
	for _, docs := range x.refs {
		delete(docs, key)
	}
}

// Known reports whether path is an indexed document.
func (x *Index) Known(path string) (discovery.Document, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	doc, ok := x.docs[filepath.Clean(path)]
	return doc, ok
}

// Dependents returns the indexed documents that referenced path, sorted by path.
func (x *Index) Dependents(path string) []discovery.Document {
	x.mu.Lock()
	defer x.mu.Unlock()

	var out []discovery.Document
	for key := range x.refs[filepath.Clean(path)] {
		if doc, ok := x.docs[key]; ok {
			out = append(out, doc)
		}
	}
	slices.SortFunc(out, func(a, b discovery.Document) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})
	return out
}
