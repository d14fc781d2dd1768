package extractor

import (
	"slices"
	"testing"

	"github.com/use-agent/pagelift/browser"
)

func dummyBuilder(browser.Factory) *Extractor {
	return New(Options{})
}

func TestRegistry_LookupIsCaseInsensitive(t *testing.T) {
	Register("Test.Registry.Book", dummyBuilder)

	if _, ok := Lookup("test.registry.book"); !ok {
		t.Error("lowercase lookup failed")
	}
	if _, ok := Lookup("TEST.REGISTRY.BOOK"); !ok {
		t.Error("uppercase lookup failed")
	}
	if _, ok := Lookup("test.registry.missing"); ok {
		t.Error("lookup of unregistered name succeeded")
	}
}

func TestRegistry_NamesAreSorted(t *testing.T) {
	Register("test.names.zz", dummyBuilder)
	Register("test.names.aa", dummyBuilder)

	names := Names()
	if !slices.IsSorted(names) {
		t.Errorf("Names() not sorted: %v", names)
	}
	if !slices.Contains(names, "test.names.aa") || !slices.Contains(names, "test.names.zz") {
		t.Errorf("Names() missing registered entries: %v", names)
	}
}
