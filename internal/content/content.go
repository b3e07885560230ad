// Package content loads the portal's markdown-backed content collections.
//
// A collection binds a glob pattern under a base directory to a name. Each matching
// file becomes an Entry: optional YAML front matter decoded into Data, the raw
// markdown Body, and the Body rendered to HTML.
package content

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned for an unknown collection or entry.
var ErrNotFound = errors.New("content not found")

// Collection declares where a collection's files live.
type Collection struct {
	Name    string
	Base    string
	Pattern string
}

// Entry is one loaded document.
type Entry struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	FilePath   string         `json:"filePath"`
	Data       map[string]any `json:"data"`
	Body       string         `json:"body"`
	HTML       string         `json:"html"`
}

// DefaultCollections returns the portal's collections rooted at dir.
func DefaultCollections(dir string) []Collection {
	return []Collection{
		{Name: "departments", Base: path.Join(dir, "departments"), Pattern: "**/*.md"},
		{Name: "teams", Base: path.Join(dir, "teams"), Pattern: "**/*.md"},
	}
}

// Registry holds loaded collections. It is read-only after Load.
type Registry struct {
	entries map[string][]Entry
	index   map[string]map[string]int
}

// Load reads every collection from disk. A missing base directory yields an empty collection.
func Load(collections []Collection) (*Registry, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	r := &Registry{
		entries: make(map[string][]Entry, len(collections)),
		index:   make(map[string]map[string]int, len(collections)),
	}
	for _, col := range collections {
		if _, dup := r.entries[col.Name]; dup {
			return nil, fmt.Errorf("duplicate collection %q", col.Name)
		}
		entries, err := loadCollection(md, col)
		if err != nil {
			return nil, fmt.Errorf("load collection %q: %w", col.Name, err)
		}
		r.entries[col.Name] = entries
		idx := make(map[string]int, len(entries))
		for i, e := range entries {
			idx[e.ID] = i
		}
		r.index[col.Name] = idx
	}
	return r, nil
}

// Names lists the registered collections in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns every entry of a collection, sorted by id.
func (r *Registry) List(collection string) ([]Entry, error) {
	entries, ok := r.entries[collection]
	if !ok {
		return nil, ErrNotFound
	}
	return entries, nil
}

// Get returns a single entry.
func (r *Registry) Get(collection, id string) (Entry, error) {
	idx, ok := r.index[collection]
	if !ok {
		return Entry{}, ErrNotFound
	}
	i, ok := idx[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return r.entries[collection][i], nil
}

func loadCollection(md goldmark.Markdown, col Collection) ([]Entry, error) {
	if _, err := os.Stat(col.Base); errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}

	fsys := os.DirFS(col.Base)
	matches, err := doublestar.Glob(fsys, col.Pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	entries := make([]Entry, 0, len(matches))
	for _, name := range matches {
		raw, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		data, body, err := splitFrontMatter(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		var html bytes.Buffer
		if err := md.Convert(body, &html); err != nil {
			return nil, fmt.Errorf("%s: render: %w", name, err)
		}

		entries = append(entries, Entry{
			ID:         strings.TrimSuffix(name, path.Ext(name)),
			Collection: col.Name,
			FilePath:   path.Join(col.Base, name),
			Data:       data,
			Body:       string(body),
			HTML:       html.String(),
		})
	}
	return entries, nil
}

// splitFrontMatter separates a leading "---" YAML block from the markdown body.
func splitFrontMatter(raw []byte) (map[string]any, []byte, error) {
	data := map[string]any{}

	text := bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	text = bytes.ReplaceAll(text, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(text, []byte("---\n")) {
		return data, text, nil
	}

	rest := text[len("---"):]
	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return nil, nil, errors.New("unterminated front matter")
	}
	header := rest[:end]
	body := rest[end+len("\n---"):]
	// Drop the rest of the closing fence line.
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		body = nil
	}

	if err := yaml.Unmarshal(header, &data); err != nil {
		return nil, nil, fmt.Errorf("front matter: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, body, nil
}
