// Package config parses the declarative .versio.yaml blob into a validated
// ConfigFile: the set of projects, their owned paths, their dependency
// edges, and the global commit-kind-to-size table.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/size"
)

// DefaultPrevTag is used when a config blob omits prev_tag.
const DefaultPrevTag = "versio-prev"

// MarkLocator names the file and format-specific path expression a version
// scanner should use to find a project's version mark.
type MarkLocator struct {
	File   string
	Format string
	Path   string
}

// Project is one logically independent unit within the monorepo.
type Project struct {
	ID        int
	Name      string
	Covers    []string
	Excludes  []string
	TagPrefix string
	Depends   []int
	Mark      *MarkLocator
	Restrict  semver.Range
	Sizes     map[string]size.Size
}

// DoesCover reports whether path is owned by this project: matched by at
// least one covers glob and by no excludes glob. Matching is forward-slash
// only, independent of host path separators.
func (p Project) DoesCover(path string) bool {
	path = toSlash(path)

	matched := false
	for _, glob := range p.Covers {
		if ok, _ := doublestar.Match(glob, path); ok {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for _, glob := range p.Excludes {
		if ok, _ := doublestar.Match(glob, path); ok {
			return false
		}
	}
	return true
}

// SizeFor looks up kind in this project's size table, falling back to the
// global table when the project has no override for that kind.
func (p Project) SizeFor(kind string, global map[string]size.Size) size.Size {
	if p.Sizes != nil {
		if s, ok := p.Sizes[kind]; ok {
			return s
		}
	}
	return size.FromKind(global, kind)
}

func toSlash(path string) string {
	return strings.ReplaceAll(path, "\\", "/")
}

// ConfigFile is the fully parsed and validated contents of a .versio.yaml
// blob, at some point in the repository's history.
type ConfigFile struct {
	Projects []Project
	Sizes    map[string]size.Size
	PrevTag  string
	Branches []string
}

// Find returns the project with the given id.
func (c *ConfigFile) Find(id int) (*Project, error) {
	for i := range c.Projects {
		if c.Projects[i].ID == id {
			return &c.Projects[i], nil
		}
	}
	return nil, errs.Wrap(errs.ErrUnknownProject, fmt.Errorf("no project with id %d", id))
}

// FindUnique returns the project matching name, case-sensitively. Names are
// validated unique at load time so this never matches more than one entry,
// but the ambiguous-match path is kept for robustness against config state
// assembled outside of Parse (tests, tools).
func (c *ConfigFile) FindUnique(name string) (*Project, error) {
	var found *Project
	for i := range c.Projects {
		if c.Projects[i].Name == name {
			if found != nil {
				return nil, errs.Wrap(errs.ErrAmbiguousName, fmt.Errorf("more than one project named %q", name))
			}
			found = &c.Projects[i]
		}
	}
	if found == nil {
		return nil, errs.Wrap(errs.ErrUnknownProject, fmt.Errorf("no project named %q", name))
	}
	return found, nil
}

// wireProject is the YAML shape of a single project entry.
type wireProject struct {
	ID        int               `yaml:"id"`
	Name      string            `yaml:"name"`
	Covers    []string          `yaml:"covers"`
	Excludes  []string          `yaml:"excludes,omitempty"`
	Depends   []int             `yaml:"depends,omitempty"`
	TagPrefix string            `yaml:"tag_prefix,omitempty"`
	Restrict  string            `yaml:"restrict,omitempty"`
	Sizes     map[string]string `yaml:"sizes,omitempty"`
	Version   *wireMark         `yaml:"version,omitempty"`
}

type wireMark struct {
	File    string `yaml:"file"`
	JSON    string `yaml:"json,omitempty"`
	YAML    string `yaml:"yaml,omitempty"`
	TOML    string `yaml:"toml,omitempty"`
	XML     string `yaml:"xml,omitempty"`
	Pattern string `yaml:"pattern,omitempty"`
}

func (m wireMark) locator() (*MarkLocator, error) {
	for format, path := range map[string]string{
		"json": m.JSON, "yaml": m.YAML, "toml": m.TOML, "xml": m.XML, "pattern": m.Pattern,
	} {
		if path != "" {
			return &MarkLocator{File: m.File, Format: format, Path: path}, nil
		}
	}
	return nil, fmt.Errorf("version locator for %q names no format (json/yaml/toml/xml/pattern)", m.File)
}

// wireConfig is the YAML shape of the whole .versio.yaml document.
type wireConfig struct {
	Projects []wireProject     `yaml:"projects"`
	Sizes    map[string]string `yaml:"sizes,omitempty"`
	PrevTag  string            `yaml:"prev_tag,omitempty"`
	Branches []string          `yaml:"branches,omitempty"`
}

// Parse decodes and validates a .versio.yaml blob, returning
// errs.ErrConfigParse, errs.ErrDuplicateProject, or errs.ErrCyclicDependency
// on failure.
func Parse(data []byte) (*ConfigFile, error) {
	var wire wireConfig
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, errs.Wrap(errs.ErrConfigParse, fmt.Errorf("unable to parse config: %w", err))
	}

	globalSizes, err := parseSizeTable(wire.Sizes)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfigParse, err)
	}
	if globalSizes == nil {
		globalSizes = size.DefaultSizes()
	}

	cfg := &ConfigFile{
		Sizes:    globalSizes,
		PrevTag:  wire.PrevTag,
		Branches: wire.Branches,
	}
	if cfg.PrevTag == "" {
		cfg.PrevTag = DefaultPrevTag
	}

	for _, wp := range wire.Projects {
		p := Project{
			ID:        wp.ID,
			Name:      wp.Name,
			Covers:    wp.Covers,
			Excludes:  wp.Excludes,
			Depends:   wp.Depends,
			TagPrefix: wp.TagPrefix,
		}

		if wp.Version != nil {
			locator, err := wp.Version.locator()
			if err != nil {
				return nil, errs.Wrap(errs.ErrConfigParse, fmt.Errorf("project %q: %w", wp.Name, err))
			}
			p.Mark = locator
		}

		if wp.Restrict != "" {
			rng, err := semver.ParseRange(wp.Restrict)
			if err != nil {
				return nil, errs.Wrap(errs.ErrConfigParse, fmt.Errorf("project %q: invalid restrict range %q: %w", wp.Name, wp.Restrict, err))
			}
			p.Restrict = rng
		}

		if len(wp.Sizes) > 0 {
			sizes, err := parseSizeTable(wp.Sizes)
			if err != nil {
				return nil, errs.Wrap(errs.ErrConfigParse, fmt.Errorf("project %q: %w", wp.Name, err))
			}
			p.Sizes = sizes
		}

		cfg.Projects = append(cfg.Projects, p)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseSizeTable(wire map[string]string) (map[string]size.Size, error) {
	if len(wire) == 0 {
		return nil, nil
	}
	out := make(map[string]size.Size, len(wire))
	for kind, name := range wire {
		s, err := size.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("size table entry %q: %w", kind, err)
		}
		out[kind] = s
	}
	return out, nil
}

func (c *ConfigFile) validate() error {
	seenIDs := map[int]bool{}
	seenNames := map[string]bool{}
	seenPrefixes := map[string]bool{}

	for _, p := range c.Projects {
		if seenIDs[p.ID] {
			return errs.Wrap(errs.ErrDuplicateProject, fmt.Errorf("duplicate project id %d", p.ID))
		}
		seenIDs[p.ID] = true

		if seenNames[p.Name] {
			return errs.Wrap(errs.ErrDuplicateProject, fmt.Errorf("duplicate project name %q", p.Name))
		}
		seenNames[p.Name] = true

		if p.TagPrefix != "" {
			if seenPrefixes[p.TagPrefix] {
				return errs.Wrap(errs.ErrDuplicateProject, fmt.Errorf("duplicate tag prefix %q", p.TagPrefix))
			}
			seenPrefixes[p.TagPrefix] = true
		}
	}

	for _, p := range c.Projects {
		for _, dep := range p.Depends {
			if !seenIDs[dep] {
				return errs.Wrap(errs.ErrConfigParse, fmt.Errorf("project %q depends on unknown id %d", p.Name, dep))
			}
		}
	}

	return c.checkAcyclic()
}

func (c *ConfigFile) checkAcyclic() error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := map[int]int{}
	byID := map[int]Project{}
	for _, p := range c.Projects {
		byID[p.ID] = p
	}

	var visit func(id int, path []int) error
	visit = func(id int, path []int) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return errs.Wrap(errs.ErrCyclicDependency, fmt.Errorf("dependency cycle through project id %d (path: %v)", id, append(path, id)))
		}
		state[id] = visiting
		for _, dep := range byID[id].Depends {
			if err := visit(dep, append(path, id)); err != nil {
				return err
			}
		}
		state[id] = done
		return nil
	}

	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}
