package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Table is an immutable, ordered list of groups.
type Table struct {
	groups []Group
}

type tableFile struct {
	Groups []Group `yaml:"groups"`
}

func NewTable(groups ...Group) Table {
	t := Table{groups: make([]Group, 0, len(groups))}
	for _, g := range groups {
		t.groups = append(t.groups, g.clone())
	}
	return t
}

func (t Table) Len() int {
	return len(t.groups)
}

// Groups returns a copy of every group in declaration order.
func (t Table) Groups() []Group {
	out := make([]Group, 0, len(t.groups))
	for _, g := range t.groups {
		out = append(out, g.clone())
	}
	return out
}

// ForBranch returns the groups published for branch, in declaration order.
func (t Table) ForBranch(branch string) []Group {
	out := []Group{}
	for _, g := range t.groups {
		if g.AppliesTo(branch) {
			out = append(out, g.clone())
		}
	}
	return out
}

func (t Table) Lookup(name string) (Group, bool) {
	for _, g := range t.groups {
		if g.Name == name {
			return g.clone(), true
		}
	}
	return Group{}, false
}

// Validate reports every malformed group at once.
func (t Table) Validate() error {
	var err error
	seen := make(map[string]int, len(t.groups))
	for i, g := range t.groups {
		switch {
		case g.Name == "":
			err = multierr.Append(err, fmt.Errorf("group %d: empty name", i))
		case strings.ContainsAny(g.Name, `/\`):
			err = multierr.Append(err, fmt.Errorf("group %q: name must not contain a path separator", g.Name))
		}
		if prev, ok := seen[g.Name]; ok && g.Name != "" {
			err = multierr.Append(err, fmt.Errorf("group %q: duplicate name (first declared at %d)", g.Name, prev))
		} else {
			seen[g.Name] = i
		}
		if len(g.Files) == 0 {
			err = multierr.Append(err, fmt.Errorf("group %q: no source files", g.Name))
		}
		for _, f := range g.Files {
			if strings.TrimSpace(f) == "" {
				err = multierr.Append(err, fmt.Errorf("group %q: empty source path", g.Name))
			}
		}
		if len(g.Branches) == 0 {
			err = multierr.Append(err, fmt.Errorf("group %q: no branches", g.Name))
		}
	}
	return err
}

// LoadTable reads a YAML table of the form
//
//	groups:
//	  - name: AppManager
//	    branches: [main]
//	    files: [./out/AppManager.sol/AppManager.json]
func LoadTable(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	return DecodeTable(f)
}

func DecodeTable(r io.Reader) (Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var tf tableFile
	if err := dec.Decode(&tf); err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, errors.New("decode table: empty document")
		}
		return Table{}, fmt.Errorf("decode table: %w", err)
	}

	t := NewTable(tf.Groups...)
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// Encode writes t in the format LoadTable reads.
func (t Table) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(tableFile{Groups: t.Groups()}); err != nil {
		return err
	}
	return enc.Close()
}
