package quiz

import (
	"context"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// FSLoader reads quiz definitions from *.yml and *.yaml files at the root of FS.
type FSLoader struct {
	FS fs.FS
}

func NewDirLoader(dir string) *FSLoader { return &FSLoader{FS: os.DirFS(dir)} }

func (l *FSLoader) Load(ctx context.Context) (*Catalog, []Diagnostic, error) {
	var files []string
	for _, pat := range []string{"*.yml", "*.yaml"} {
		m, err := fs.Glob(l.FS, pat)
		if err != nil {
			return nil, nil, err
		}
		files = append(files, m...)
	}
	sort.Strings(files)

	var (
		defs  []Definition
		diags []Diagnostic
		seen  = map[string]string{}
	)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, diags, err
		}
		b, err := fs.ReadFile(l.FS, name)
		if err != nil {
			diags = append(diags, Diagnostic{Kind: MalformedQuiz, Source: name, Message: err.Error()})
			continue
		}
		def, ds, ok := ParseDefinition(b)
		for i := range ds {
			ds[i].Source = name
		}
		diags = append(diags, ds...)
		if !ok {
			continue
		}
		if prev, dup := seen[def.Title]; dup {
			diags = append(diags, Diagnostic{
				Kind: MalformedQuiz, Source: name, Quiz: def.Title,
				Message: "title already defined in " + prev,
			})
			continue
		}
		seen[def.Title] = name
		defs = append(defs, def)
	}
	return NewCatalog(defs...), diags, nil
}

// ParseDefinition decodes and normalizes one quiz document.
func ParseDefinition(b []byte) (Definition, []Diagnostic, bool) {
	var raw RawQuiz
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return Definition{}, []Diagnostic{{Kind: MalformedQuiz, Message: err.Error()}}, false
	}
	title := strings.TrimSpace(raw.Title)
	if title == "" {
		return Definition{}, []Diagnostic{{Kind: MalformedQuiz, Message: "missing title"}}, false
	}

	var diags []Diagnostic
	def := Definition{Title: title, Questions: make([]Question, 0, len(raw.Questions))}
	for _, rq := range raw.Questions {
		q, ds, ok := Normalize(rq)
		for i := range ds {
			ds[i].Quiz = title
		}
		diags = append(diags, ds...)
		if ok {
			def.Questions = append(def.Questions, q)
		}
	}
	if len(def.Questions) == 0 {
		diags = append(diags, Diagnostic{Kind: MalformedQuiz, Quiz: title, Message: "no usable questions"})
		return Definition{}, diags, false
	}
	return def, diags, true
}
