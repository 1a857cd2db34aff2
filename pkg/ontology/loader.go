package ontology

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fixtureFile is the on-disk YAML shape for an ontology fixture (spec §3's
// namespace/class/property model, expressed the way a fixture author would
// write it rather than the in-memory pointer graph).
type fixtureFile struct {
	Namespaces []fixtureNamespace `yaml:"namespaces"`
	Classes    []fixtureClass     `yaml:"classes"`
	Properties []fixtureProperty  `yaml:"properties"`
}

type fixtureNamespace struct {
	URI    string `yaml:"uri"`
	Prefix string `yaml:"prefix"`
}

type fixtureClass struct {
	URI          string   `yaml:"uri"`
	SuperClasses []string `yaml:"super_classes"`
	Notify       bool     `yaml:"notify"`
}

type fixtureProperty struct {
	URI               string   `yaml:"uri"`
	Domain            string   `yaml:"domain"`
	Range             string   `yaml:"range"`
	SuperProperties   []string `yaml:"super_properties"`
	Weight            int      `yaml:"weight"`
	Indexed           bool     `yaml:"indexed"`
	FulltextIndexed   bool     `yaml:"fulltext_indexed"`
	MultipleValues    *bool    `yaml:"multiple_values"`
	InverseFunctional bool     `yaml:"inverse_functional"`
	SecondaryIndex    string   `yaml:"secondary_index"`
}

// LoadFixtureFile reads an ontology fixture from path and registers its
// contents into r. Loading is two-pass: every namespace, class and property
// is created first so that cross-references (domain, range, super_classes,
// super_properties, secondary_index) can be resolved by URI regardless of
// declaration order within the file.
func (r *Registry) LoadFixtureFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ontology: read fixture %s: %w", path, err)
	}
	return r.LoadFixtureBytes(data, path)
}

// LoadFixtureBytes parses and registers a fixture already read into memory.
// sourceName is used only for SourceLocation.File bookkeeping and error
// messages.
func (r *Registry) LoadFixtureBytes(data []byte, sourceName string) error {
	var f fixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("ontology: parse fixture %s: %w", sourceName, err)
	}

	for _, n := range f.Namespaces {
		r.AddNamespace(&Namespace{URI: n.URI, Prefix: n.Prefix})
	}

	for _, fc := range f.Classes {
		c := r.NewClass(fc.URI)
		c.Notify = fc.Notify
		c.SourceLocation = SourceLocation{File: sourceName}
	}

	for _, fp := range f.Properties {
		p := r.NewProperty(fp.URI)
		p.Weight = fp.Weight
		p.Indexed = fp.Indexed
		p.FulltextIndexed = fp.FulltextIndexed
		p.InverseFunctional = fp.InverseFunctional
		if fp.MultipleValues != nil {
			p.SetMultipleValues(*fp.MultipleValues)
		}
		p.SourceLocation = SourceLocation{File: sourceName}
	}

	// Second pass: resolve every cross-reference by URI now that all
	// entities from this file exist in the registry.
	for _, fc := range f.Classes {
		c, ok := r.GetClassByURI(fc.URI)
		if !ok {
			continue
		}
		for _, superURI := range fc.SuperClasses {
			super, ok := r.GetClassByURI(superURI)
			if !ok {
				return fmt.Errorf("ontology: %s: class %s references unknown super_class %s", sourceName, fc.URI, superURI)
			}
			c.SuperClasses = append(c.SuperClasses, super)
		}
	}

	for _, fp := range f.Properties {
		p, ok := r.GetPropertyByURI(fp.URI)
		if !ok {
			continue
		}
		if fp.Domain != "" {
			d, ok := r.GetClassByURI(fp.Domain)
			if !ok {
				return fmt.Errorf("ontology: %s: property %s references unknown domain %s", sourceName, fp.URI, fp.Domain)
			}
			p.SetDomain(d)
			d.DomainIndexes = append(d.DomainIndexes, p)
		}
		if fp.Range != "" {
			rng, ok := r.GetClassByURI(fp.Range)
			if !ok {
				return fmt.Errorf("ontology: %s: property %s references unknown range %s", sourceName, fp.URI, fp.Range)
			}
			p.SetRange(rng)
		}
		for _, superURI := range fp.SuperProperties {
			super, ok := r.GetPropertyByURI(superURI)
			if !ok {
				return fmt.Errorf("ontology: %s: property %s references unknown super_property %s", sourceName, fp.URI, superURI)
			}
			p.SuperProperties = append(p.SuperProperties, super)
		}
		if fp.SecondaryIndex != "" {
			sec, ok := r.GetPropertyByURI(fp.SecondaryIndex)
			if !ok {
				return fmt.Errorf("ontology: %s: property %s references unknown secondary_index %s", sourceName, fp.URI, fp.SecondaryIndex)
			}
			p.SecondaryIndex = sec
		}
	}

	r.Sort()
	return nil
}
