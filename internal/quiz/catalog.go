package quiz

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
)

// Catalog is an immutable set of quizzes keyed by title.
type Catalog struct {
	quizzes map[string]Definition
	names   []string
}

func NewCatalog(defs ...Definition) *Catalog {
	c := &Catalog{quizzes: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if _, ok := c.quizzes[d.Title]; ok {
			continue
		}
		c.quizzes[d.Title] = d
		c.names = append(c.names, d.Title)
	}
	sort.Strings(c.names)
	return c
}

// Names returns quiz titles in sorted order.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.names...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.names)
}

// Lookup returns a deep copy of the named quiz.
func (c *Catalog) Lookup(name string) (Definition, error) {
	if c == nil {
		return Definition{}, fmt.Errorf("%w: %q", ErrInvalidQuiz, name)
	}
	d, ok := c.quizzes[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrInvalidQuiz, name)
	}
	out := Definition{Title: d.Title, Questions: make([]Question, len(d.Questions))}
	for i, q := range d.Questions {
		q.Distractors = append([]string(nil), q.Distractors...)
		out.Questions[i] = q
	}
	return out, nil
}

// Loader builds a fresh catalog. Diagnostics describe skipped or suspicious
// entries; the error is reserved for failures that prevent loading anything.
type Loader interface {
	Load(ctx context.Context) (*Catalog, []Diagnostic, error)
}

// Library holds the process-wide catalog and swaps it atomically on reload.
type Library struct {
	loader  Loader
	current atomic.Pointer[Catalog]
}

func NewLibrary(loader Loader) *Library {
	l := &Library{loader: loader}
	l.current.Store(NewCatalog())
	return l
}

func (l *Library) Catalog() *Catalog { return l.current.Load() }

// Reload builds a complete replacement catalog before publishing it. On error
// the previous catalog stays in place.
func (l *Library) Reload(ctx context.Context) ([]Diagnostic, error) {
	c, diags, err := l.loader.Load(ctx)
	if err != nil {
		return diags, err
	}
	l.current.Store(c)
	return diags, nil
}
