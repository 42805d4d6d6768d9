package trackerdata

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/trackerscope/internal/model"
)

// ErrDatasetNotFound is returned when the dataset file does not exist.
// Callers should handle this error appropriately based on whether the
// dataset path was explicitly specified by the user.
var ErrDatasetNotFound = errors.New("tracker dataset file not found")

// Rule actions for a matched tracker domain.
const (
	// ActionBlock blocks requests to the domain. This is the default
	// when a domain rule specifies no action.
	ActionBlock = "block"

	// ActionIgnore records the ownership without blocking. Used for
	// domains that belong to a tracker network but serve content sites
	// commonly break without (e.g., CDN hosts).
	ActionIgnore = "ignore"
)

// EntityDef is one entity in the dataset file.
type EntityDef struct {
	// DisplayName is the name shown in the dashboard. When empty, a
	// title-cased form of the entity key is used.
	DisplayName string `yaml:"displayName,omitempty"`

	// Prevalence is the 0.0-1.0 share of sites the entity's trackers
	// appear on.
	Prevalence float64 `yaml:"prevalence"`
}

// DomainRule maps one tracker domain to its owning entity.
type DomainRule struct {
	// Entity is the key of the owning entity in the Entities map.
	Entity string `yaml:"entity"`

	// Categories are tracking category tags (e.g., "Advertising").
	Categories []string `yaml:"categories,omitempty"`

	// Action is ActionBlock or ActionIgnore. Empty means ActionBlock.
	Action string `yaml:"action,omitempty"`
}

// Dataset is the parsed tracker dataset.
//
// Design decision: domains map to entity keys rather than embedding
// entity data per domain so that prevalence and display name live in
// exactly one place, the way the severity mapping table centralizes
// finding metadata.
type Dataset struct {
	// Entities maps entity key to its definition.
	Entities map[string]EntityDef `yaml:"entities"`

	// Domains maps a tracker domain to its rule. Lookup walks parent
	// labels, so a rule for "tracker.example" also covers
	// "cdn.tracker.example".
	Domains map[string]DomainRule `yaml:"domains"`
}

// Match is the result of a successful domain lookup.
type Match struct {
	// Entity is the owning entity, ready for embedding in an event.
	Entity *model.Entity

	// Categories are the matched rule's category tags.
	Categories []string

	// Action is the normalized rule action (ActionBlock or ActionIgnore).
	Action string
}

// titleCaser title-cases entity keys that lack an explicit display name.
var titleCaser = cases.Title(language.English)

// Load reads a dataset from a YAML file.
// Returns ErrDatasetNotFound when the file does not exist.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided dataset path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDatasetNotFound
		}
		return nil, err
	}

	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse tracker dataset: %w", err)
	}

	if ds.Entities == nil {
		ds.Entities = make(map[string]EntityDef)
	}
	if ds.Domains == nil {
		ds.Domains = make(map[string]DomainRule)
	}
	return &ds, nil
}

// FindEntity looks up the tracker rule for a resource host.
// The lookup walks the host's parent labels so that a rule for
// "t.example" also matches "a.b.t.example". Returns nil when the host
// is not in the dataset.
func (ds *Dataset) FindEntity(host string) *Match {
	host = strings.ToLower(strings.TrimSuffix(host, "."))

	for host != "" {
		if rule, ok := ds.Domains[host]; ok {
			return ds.matchFor(rule)
		}
		idx := strings.Index(host, ".")
		if idx < 0 {
			break
		}
		host = host[idx+1:]
	}
	return nil
}

// matchFor resolves a domain rule into a Match with the entity data
// filled in. A rule referencing an unknown entity degrades to an
// anonymous zero-prevalence entity rather than failing; the dashboard's
// policy is to default around missing data.
func (ds *Dataset) matchFor(rule DomainRule) *Match {
	entity := &model.Entity{Name: rule.Entity}

	if def, ok := ds.Entities[rule.Entity]; ok {
		entity.DisplayName = def.DisplayName
		entity.Prevalence = def.Prevalence
	}
	if entity.DisplayName == "" {
		entity.DisplayName = titleCaser.String(rule.Entity)
	}

	action := rule.Action
	if action == "" {
		action = ActionBlock
	}

	return &Match{
		Entity:     entity,
		Categories: rule.Categories,
		Action:     action,
	}
}
