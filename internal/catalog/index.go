package catalog

import (
	"fmt"
	"os"

	"github.com/varoOP/seasonshare/internal/domain"
	"gopkg.in/yaml.v3"
)

// LoadIndex reads the available-seasons index, a mapping of year to ordered
// season labels. YAML and JSON files are both accepted.
func LoadIndex(path string) (domain.SeasonIndex, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", path, err)
	}

	raw := map[string][]string{}
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index %s: %w", path, err)
	}

	idx := domain.SeasonIndex{}
	for year, seasons := range raw {
		list := make([]domain.Season, 0, len(seasons))
		for _, s := range seasons {
			list = append(list, domain.Season(s))
		}
		idx[year] = list
	}
	return idx, nil
}

// StoreIndex writes idx as YAML, newest year first
func StoreIndex(path string, idx domain.SeasonIndex) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, year := range idx.Years() {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, s := range idx[year] {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: string(s)})
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: year, Style: yaml.DoubleQuotedStyle},
			seq,
		)
	}

	b, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write index %s: %w", path, err)
	}
	return nil
}

// KeyLister lists the season documents present in a data directory
type KeyLister interface {
	Keys() ([]domain.SeasonKey, error)
}

// BuildIndex derives the index from the documents a repository holds
func BuildIndex(repo KeyLister) (domain.SeasonIndex, error) {
	keys, err := repo.Keys()
	if err != nil {
		return nil, err
	}
	idx := domain.SeasonIndex{}
	for _, k := range keys {
		if !k.Season.Valid() {
			continue
		}
		idx.Add(k.Year, k.Season)
	}
	return idx, nil
}
