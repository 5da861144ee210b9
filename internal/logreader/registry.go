package logreader

import (
	"regexp"
	"sync"
)

// ParserFunc turns one matched span into a record. Returning an error (or
// panicking) drops the span; the failure is logged and counted.
type ParserFunc func(m Match) (Record, error)

type entryKind int

const (
	kindParser entryKind = iota
	kindSection
)

type entry struct {
	name    string
	pattern *regexp.Regexp
	kind    entryKind
	parse   ParserFunc
}

// registry holds parser bindings in registration order. Order matters: when two
// patterns match at the same offset the earlier one wins.
type registry struct {
	mu      sync.RWMutex
	entries []entry
}

func newRegistry() *registry {
	r := &registry{}
	r.entries = append(r.entries, builtinEntries()...)
	return r
}

func (r *registry) add(name string, pattern *regexp.Regexp, parser ParserFunc) error {
	if pattern == nil {
		return &ArgumentError{Name: "pattern", Expect: "*regexp.Regexp", Got: pattern}
	}
	if parser == nil {
		return &ArgumentError{Name: "parser", Expect: "logreader.ParserFunc", Got: parser}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{name: name, pattern: pattern, kind: kindParser, parse: parser})
	return nil
}

// snapshot returns a copy of the entries so one read cycle sees a stable list
// even if parsers are added concurrently.
func (r *registry) snapshot() []entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entry, len(r.entries))
	copy(out, r.entries)
	return out
}
