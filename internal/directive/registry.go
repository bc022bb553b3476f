// Package directive knows the canonical names of slash directives (skills
// and custom commands) understood by the agent CLI, and rejects scheduled
// commands that invoke a directive through an alias.
//
// Aliases only resolve in interactive sessions. Under non-interactive
// invocation ("claude -p /alias") they silently do nothing, so the check
// runs before a task is stored.
package directive

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrAliasNotAllowed is returned when a scheduled command uses an alias
var ErrAliasNotAllowed = errors.New("directive alias not allowed in non-interactive commands")

// AliasError names the alias found and its canonical replacement.
type AliasError struct {
	Alias     string
	Canonical string
}

func (e *AliasError) Error() string {
	return fmt.Sprintf("/%s is an alias; use the canonical name /%s", e.Alias, e.Canonical)
}

func (e *AliasError) Unwrap() error {
	return ErrAliasNotAllowed
}

// Directive is one canonical invocable name.
type Directive struct {
	Name    string
	Aliases []string
	Source  string // "skill", "command" or "config"
	Path    string
}

// Registry maps canonical names and aliases.
type Registry struct {
	canonical map[string]Directive
	aliases   map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		canonical: make(map[string]Directive),
		aliases:   make(map[string]string),
	}
}

// Add registers a directive and its aliases. Later additions with the same
// name replace earlier ones. An alias that equals a canonical name is
// ignored: canonical names always win.
func (r *Registry) Add(d Directive) {
	name := normalize(d.Name)
	if name == "" {
		return
	}
	d.Name = name
	r.canonical[name] = d
	delete(r.aliases, name)
	for _, alias := range d.Aliases {
		r.AddAlias(alias, name)
	}
}

// AddAlias maps alias to canonical.
func (r *Registry) AddAlias(alias, canonical string) {
	alias, canonical = normalize(alias), normalize(canonical)
	if alias == "" || canonical == "" || alias == canonical {
		return
	}
	if _, isCanonical := r.canonical[alias]; isCanonical {
		return
	}
	r.aliases[alias] = canonical
}

// Resolve looks name up. known is false when the name is neither canonical
// nor an alias.
func (r *Registry) Resolve(name string) (canonical string, isAlias bool, known bool) {
	name = normalize(name)
	if _, ok := r.canonical[name]; ok {
		return name, false, true
	}
	if target, ok := r.aliases[name]; ok {
		return target, true, true
	}
	return "", false, false
}

// Names returns canonical names in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.canonical))
	for name := range r.canonical {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of canonical directives.
func (r *Registry) Len() int {
	return len(r.canonical)
}

func normalize(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "/")
}
