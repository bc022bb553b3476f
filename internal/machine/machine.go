// Package machine resolves which host identity the current process runs as
// and validates designated-machine values against the known set.
package machine

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// ErrUnknownMachine is returned for a machine identity outside the known set
var ErrUnknownMachine = errors.New("unknown machine")

// Set is the closed set of machine identities plus the current one.
type Set struct {
	current string
	known   map[string]bool
}

// Options configures identity resolution.
type Options struct {
	Current  string            // explicit identity, wins over hostname lookup
	Known    []string          // closed set of identities; empty means {current}
	Hosts    map[string]string // hostname -> identity
	Hostname func() (string, error)
}

// New resolves the current identity: Options.Current, then the Hosts entry
// for the hostname (full, then short form), then the short hostname itself.
func New(opts Options) (*Set, error) {
	current := strings.TrimSpace(opts.Current)
	if current == "" {
		hostname := opts.Hostname
		if hostname == nil {
			hostname = os.Hostname
		}
		host, err := hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve hostname: %w", err)
		}
		current = identityForHost(host, opts.Hosts)
	}
	if current == "" {
		return nil, fmt.Errorf("could not determine current machine identity")
	}

	known := make(map[string]bool, len(opts.Known)+1)
	for _, k := range opts.Known {
		if k = strings.TrimSpace(k); k != "" {
			known[k] = true
		}
	}
	if len(known) > 0 && !known[current] {
		return nil, fmt.Errorf("%w: current machine %q is not in the known set %v", ErrUnknownMachine, current, sortedKeys(known))
	}
	known[current] = true

	return &Set{current: current, known: known}, nil
}

func identityForHost(host string, hosts map[string]string) string {
	host = strings.TrimSpace(host)
	short := host
	if i := strings.IndexByte(host, '.'); i > 0 {
		short = host[:i]
	}
	for _, candidate := range []string{host, short} {
		if id, ok := hosts[candidate]; ok && id != "" {
			return id
		}
		for h, id := range hosts {
			if strings.EqualFold(h, candidate) && id != "" {
				return id
			}
		}
	}
	return short
}

// Current returns the identity of this machine.
func (s *Set) Current() string {
	return s.current
}

// IsLocal reports whether a record designated to m executes here. An empty
// designation comes from single-machine registries and counts as local.
func (s *Set) IsLocal(m string) bool {
	return m == "" || m == s.current
}

// Resolve validates m against the known set; empty means the current machine.
func (s *Set) Resolve(m string) (string, error) {
	m = strings.TrimSpace(m)
	if m == "" {
		return s.current, nil
	}
	if !s.known[m] {
		return "", fmt.Errorf("%w: %q (known: %s)", ErrUnknownMachine, m, strings.Join(s.Known(), ", "))
	}
	return m, nil
}

// Known returns all identities in lexical order.
func (s *Set) Known() []string {
	return sortedKeys(s.known)
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
