package slug

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed redirects.yaml
var redirectData []byte

// Redirect is one alias page: a historical slug pointing at the canonical
// permit page.
type Redirect struct {
	FromSlug   string `json:"fromSlug"`
	ToSlug     string `json:"toSlug"`
	TargetFile string `json:"targetFile"`
}

// Mappings returns the historical -> canonical slug table.
func Mappings() (map[string]string, error) {
	var mappings map[string]string
	if err := yaml.Unmarshal(redirectData, &mappings); err != nil {
		return nil, fmt.Errorf("parse redirect table: %w", err)
	}
	return mappings, nil
}

// Redirects expands the table into alias-page entries, sorted by source
// slug so generated output is stable across runs.
func Redirects() ([]Redirect, error) {
	mappings, err := Mappings()
	if err != nil {
		return nil, err
	}

	redirects := make([]Redirect, 0, len(mappings))
	for from, to := range mappings {
		redirects = append(redirects, Redirect{
			FromSlug:   from,
			ToSlug:     to,
			TargetFile: fmt.Sprintf("permesso-%s.html", to),
		})
	}
	sort.Slice(redirects, func(i, j int) bool {
		return redirects[i].FromSlug < redirects[j].FromSlug
	})
	return redirects, nil
}
