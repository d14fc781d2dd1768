package extractor

import (
	"sort"
	"strings"

	"github.com/use-agent/pagelift/browser"
)

// Builder constructs a site extractor bound to a session factory.
type Builder func(f browser.Factory) *Extractor

var registry = map[string]Builder{}

// Register adds a named site extractor. Site packages call this from
// init; names are case-insensitive.
func Register(name string, b Builder) {
	registry[strings.ToLower(name)] = b
}

// Lookup returns the builder registered under name.
func Lookup(name string) (Builder, bool) {
	b, ok := registry[strings.ToLower(name)]
	return b, ok
}

// Names lists the registered site names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
