package artifact

import (
	"slices"
)

// Group maps one output artifact to the build outputs it is assembled from.
//
// Name is the base name of the published file and the key the Admin UI looks
// it up by, so it must not change without a matching frontend change.
type Group struct {
	Name     string   `yaml:"name"`
	Branches []string `yaml:"branches"`
	Files    []string `yaml:"files"`
}

// AppliesTo reports whether the group is published for branch.
func (g Group) AppliesTo(branch string) bool {
	return slices.Contains(g.Branches, branch)
}

func (g Group) clone() Group {
	return Group{
		Name:     g.Name,
		Branches: slices.Clone(g.Branches),
		Files:    slices.Clone(g.Files),
	}
}
