package experience

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported experience file format")
	ErrInvalidSlug       = errors.New("invalid experience slug")
	ErrDuplicateSlug     = errors.New("duplicate experience slug")
)

// Format is the encoding of an experience file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// SlugOf derives the experience slug from its file name.
func SlugOf(path string) (string, error) {
	base := filepath.Base(path)
	slug := strings.TrimSuffix(base, filepath.Ext(base))
	if !slugPattern.MatchString(slug) {
		return "", fmt.Errorf("%q: %w", slug, ErrInvalidSlug)
	}
	return slug, nil
}

// Decode reads a definition. Unknown keys are rejected so typos surface
// at load time instead of silently falling back to defaults.
func Decode(r io.Reader, format Format) (*Definition, error) {
	var d Definition
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	return &d, nil
}

// ReadFile decodes the definition at path without validating it.
func ReadFile(path string) (*Definition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Load reads, validates and builds the experience at path.
func Load(path string) (*Experience, error) {
	slug, err := SlugOf(path)
	if err != nil {
		return nil, err
	}
	d, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := d.Build(slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}

// Catalog is the set of experiences served by one process.
type Catalog struct {
	bySlug map[string]*Experience
	slugs  []string
}

func NewCatalog(exps ...*Experience) (*Catalog, error) {
	c := &Catalog{bySlug: make(map[string]*Experience, len(exps))}
	for _, e := range exps {
		if _, ok := c.bySlug[e.Slug]; ok {
			return nil, fmt.Errorf("%q: %w", e.Slug, ErrDuplicateSlug)
		}
		c.bySlug[e.Slug] = e
		c.slugs = append(c.slugs, e.Slug)
	}
	sort.Strings(c.slugs)
	return c, nil
}

// LoadDir loads every experience file in dir. Files with other
// extensions are skipped; any invalid experience fails the whole load.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading experience dir: %w", err)
	}
	var (
		exps []*Experience
		errs []error
	)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := FormatOf(path); err != nil {
			continue
		}
		e, err := Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		exps = append(exps, e)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return NewCatalog(exps...)
}

func (c *Catalog) Get(slug string) (*Experience, bool) {
	e, ok := c.bySlug[slug]
	return e, ok
}

// List returns the experiences ordered by slug.
func (c *Catalog) List() []*Experience {
	out := make([]*Experience, 0, len(c.slugs))
	for _, s := range c.slugs {
		out = append(out, c.bySlug[s])
	}
	return out
}

// Slugs returns the loaded slugs in order.
func (c *Catalog) Slugs() []string { return slices.Clone(c.slugs) }

func (c *Catalog) Len() int { return len(c.slugs) }
