package bind

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/ardnew/haiku/pkg"
)

// Catalog is a document of templates and conditional maps, written in YAML
// or JSON:
//
//	templates:
//	  row: li.row{$name;}
//	  empty: li.empty{none}
//	conditionals:
//	  by-kind:
//	    field: kind
//	    values: {a: row}
//	    default: empty
type Catalog struct {
	Templates    map[string]string         `json:"templates,omitempty"    yaml:"templates,omitempty"`
	Conditionals map[string]ConditionalMap `json:"conditionals,omitempty" yaml:"conditionals,omitempty"`
}

// catalogExt lists the file extensions [LoadCatalog] reads from a directory.
var catalogExt = []string{".yaml", ".yml", ".json"}

// ParseCatalog decodes a catalog document from r. Unknown keys are errors.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	var c Catalog

	dec := yaml.NewDecoder(r, yaml.DisallowUnknownField())
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return &c, nil
		}

		return nil, ErrCatalog.Wrap(err)
	}

	return &c, nil
}

// LoadCatalog reads the catalog at name in fs. When name is a directory,
// every catalog file directly inside it is read in name order and merged;
// a template id defined by two files is an error.
func LoadCatalog(fs billy.Filesystem, name string) (*Catalog, error) {
	info, err := fs.Stat(name)
	if err != nil {
		return nil, ErrCatalog.Wrap(err).With(slog.String("path", name))
	}

	if !info.IsDir() {
		return loadCatalogFile(fs, name)
	}

	entries, err := fs.ReadDir(name)
	if err != nil {
		return nil, ErrCatalog.Wrap(err).With(slog.String("path", name))
	}

	merged := &Catalog{}

	for _, e := range entries {
		if e.IsDir() || !slices.Contains(catalogExt, strings.ToLower(path.Ext(e.Name()))) {
			continue
		}

		file := fs.Join(name, e.Name())

		c, err := loadCatalogFile(fs, file)
		if err != nil {
			return nil, err
		}

		if err := merged.merge(c); err != nil {
			return nil, err.With(slog.String("path", file))
		}
	}

	return merged, nil
}

func loadCatalogFile(fs billy.Filesystem, name string) (*Catalog, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, ErrCatalog.Wrap(err).With(slog.String("path", name))
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	c, err := ParseCatalog(ra)
	if err != nil {
		return nil, pkg.WrapError(err).With(slog.String("path", name))
	}

	return c, nil
}

// merge adds the entries of other to c.
func (c *Catalog) merge(other *Catalog) *pkg.Error {
	if c.Templates == nil {
		c.Templates = make(map[string]string)
	}

	if c.Conditionals == nil {
		c.Conditionals = make(map[string]ConditionalMap)
	}

	for id, body := range other.Templates {
		if _, ok := c.Templates[id]; ok {
			return ErrDuplicateTemplate.With(slog.String("id", id))
		}

		c.Templates[id] = body
	}

	for id, m := range other.Conditionals {
		if _, ok := c.Conditionals[id]; !ok {
			c.Conditionals[id] = m
		}
	}

	return nil
}

// Register adds every template and conditional map of c to reg, in id
// order, and stops at the first error.
func (c *Catalog) Register(reg *Registry) error {
	for _, id := range slices.Sorted(maps.Keys(c.Templates)) {
		if err := reg.AddTemplate(id, c.Templates[id]); err != nil {
			return err
		}
	}

	for _, id := range slices.Sorted(maps.Keys(c.Conditionals)) {
		if _, err := reg.AddConditionalsMap(id, c.Conditionals[id]); err != nil {
			return err
		}
	}

	return nil
}
