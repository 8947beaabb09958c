// Package load parses schema documents into schema.Schema values.
//
// Loading is a two-pass process. The first pass deserializes the YAML
// document into records and attributes. The second pass walks every
// reference attribute and backfills the ReferencedBy list of the
// record it targets, so that a record knows all of its inbound
// references by (record, attribute) pair. Validation is a separate,
// explicit step.
package load

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/recgen/recgen/schema"
)

// Parse reads a schema document from buf and resolves its references.
// The returned schema is not validated. Call Validate for that.
func Parse(buf []byte) (*schema.Schema, error) {
	s := &schema.Schema{}
	if err := yaml.Unmarshal(buf, s); err != nil {
		return nil, fmt.Errorf("load: parsing schema: %w", err)
	}
	resolve(s)
	return s, nil
}

// ParseFile reads and resolves the schema document at path.
func ParseFile(path string) (*schema.Schema, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: reading schema: %w", err)
	}
	return Parse(buf)
}

// resolve backfills the ReferencedBy lists. References to unknown
// records are left for Validate to report.
func resolve(s *schema.Schema) {
	for _, r := range s.Records {
		for _, a := range r.Attributes {
			if !a.IsReference() {
				continue
			}
			target, ok := s.Record(a.Ref)
			if !ok {
				continue
			}
			target.ReferencedBy = append(target.ReferencedBy, schema.BackReference{
				Record:    r.Name,
				Attribute: a.Name,
			})
		}
	}
	for _, r := range s.Records {
		sort.Slice(r.ReferencedBy, func(i, j int) bool {
			a, b := r.ReferencedBy[i], r.ReferencedBy[j]
			if a.Record != b.Record {
				return a.Record < b.Record
			}
			return a.Attribute < b.Attribute
		})
	}
}

// Validate checks the structural rules of a resolved schema. It
// returns the first violation found, naming the record and attribute
// at fault.
func Validate(s *schema.Schema) error {
	if len(s.Records) == 0 {
		return fmt.Errorf("load: schema has no records")
	}
	names := make(map[string]bool, len(s.Records))
	tables := make(map[string]string, len(s.Records))
	for _, r := range s.Records {
		if r.Name == "" {
			return fmt.Errorf("load: record with empty name")
		}
		if names[r.Name] {
			return fmt.Errorf("load: duplicate record %q", r.Name)
		}
		names[r.Name] = true
		table := r.TableName()
		if prev, ok := tables[table]; ok {
			return fmt.Errorf("load: records %q and %q share table %q", prev, r.Name, table)
		}
		tables[table] = r.Name
		if err := validateRecord(s, r); err != nil {
			return err
		}
	}
	return nil
}

func validateRecord(s *schema.Schema, r *schema.Record) error {
	if len(r.Attributes) == 0 {
		return fmt.Errorf("load: record %q has no attributes", r.Name)
	}
	seen := make(map[string]bool, len(r.Attributes))
	for _, a := range r.Attributes {
		switch {
		case a.Name == "":
			return fmt.Errorf("load: record %q has an attribute with empty name", r.Name)
		case a.Name == "id" || a.Name == "version":
			return fmt.Errorf("load: record %q attribute %q shadows a builtin column", r.Name, a.Name)
		case seen[a.Name]:
			return fmt.Errorf("load: record %q has duplicate attribute %q", r.Name, a.Name)
		}
		seen[a.Name] = true
		if err := validateAttribute(s, r, a); err != nil {
			return err
		}
	}
	if join, ok := JoinTargets(r); ok && join[0] == join[1] {
		return fmt.Errorf("load: record %q joins %q to itself", r.Name, join[0])
	}
	return nil
}

func validateAttribute(s *schema.Schema, r *schema.Record, a schema.Attribute) error {
	if !a.Kind.Valid() {
		return fmt.Errorf("load: record %q attribute %q has unknown type %q", r.Name, a.Name, a.Kind)
	}
	if !a.IsReference() {
		if a.Ref != "" {
			return fmt.Errorf("load: record %q attribute %q is not a reference but names target %q", r.Name, a.Name, a.Ref)
		}
		return nil
	}
	switch {
	case a.Ref == "":
		return fmt.Errorf("load: record %q attribute %q is a reference without a target", r.Name, a.Name)
	case a.Secret:
		return fmt.Errorf("load: record %q attribute %q is a reference and cannot be secret", r.Name, a.Name)
	}
	if _, ok := s.Record(a.Ref); !ok {
		return fmt.Errorf("load: record %q attribute %q references unknown record %q", r.Name, a.Name, a.Ref)
	}
	return nil
}

// JoinTargets reports whether r is a join record and, if so, the
// names of the two records it connects in attribute order. A join
// record consists of exactly two attributes, both mandatory immutable
// references.
func JoinTargets(r *schema.Record) ([2]string, bool) {
	if len(r.Attributes) != 2 {
		return [2]string{}, false
	}
	for _, a := range r.Attributes {
		if !a.IsReference() || a.Optional || a.Mutable {
			return [2]string{}, false
		}
	}
	return [2]string{r.Attributes[0].Ref, r.Attributes[1].Ref}, true
}
