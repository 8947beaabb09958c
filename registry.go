package recgen

import (
	"fmt"
	"sort"
	"sync"
)

// The type registry maps record type names to their Introspection
// implementations. It is assembled once, by the generated runtime glue
// (the runtime.go file each generated package carries), and read by
// generic tooling afterwards.

var (
	typesMu sync.RWMutex
	types   = make(map[string]Introspection)
)

// Register makes a record type available for generic lookup. It
// follows the database/sql driver-registration convention: called from
// generated init code, it panics on a nil or duplicate registration.
func Register(in Introspection) {
	typesMu.Lock()
	defer typesMu.Unlock()
	if in == nil {
		panic("recgen: Register introspection is nil")
	}
	name := in.Name()
	if _, dup := types[name]; dup {
		panic("recgen: Register called twice for type " + name)
	}
	types[name] = in
}

// Lookup returns the Introspection registered under name.
func Lookup(name string) (Introspection, bool) {
	typesMu.RLock()
	defer typesMu.RUnlock()
	in, ok := types[name]
	return in, ok
}

// Types returns the sorted names of all registered record types.
func Types() []string {
	typesMu.RLock()
	defer typesMu.RUnlock()
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unregisterAll clears the registry. Test helper.
func unregisterAll() {
	typesMu.Lock()
	defer typesMu.Unlock()
	types = make(map[string]Introspection)
}

// Validator checks a hypothetical record value before it is persisted.
// Setters construct the post-update value and reject the mutation when
// the validator fails; create paths check the initial value the same
// way.
type Validator func(Record) error

var (
	validatorsMu sync.RWMutex
	validators   = make(map[string]Validator)
)

// RegisterValidator installs a named validator referenced by schema
// documents. Like Register, it panics on nil or duplicate entries.
func RegisterValidator(name string, v Validator) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	if v == nil {
		panic("recgen: RegisterValidator validator is nil")
	}
	if _, dup := validators[name]; dup {
		panic("recgen: RegisterValidator called twice for " + name)
	}
	validators[name] = v
}

// LookupValidator returns the validator registered under name.
func LookupValidator(name string) (Validator, bool) {
	validatorsMu.RLock()
	defer validatorsMu.RUnlock()
	v, ok := validators[name]
	return v, ok
}

// Validate runs the named validator against r. A name with no
// registered validator is a ValidationError: a schema that references
// a validator expects it to exist at runtime.
func Validate(name string, r Record) error {
	v, ok := LookupValidator(name)
	if !ok {
		return NewValidationError(r.TypeName(), fmt.Errorf("validator %q not registered", name))
	}
	if err := v(r); err != nil {
		if IsValidation(err) {
			return err
		}
		return NewValidationError(r.TypeName(), err)
	}
	return nil
}
