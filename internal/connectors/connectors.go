// Package connectors collects promotion listings from the card-company
// sites. Each connector owns one site's crawl strategy and emits the same
// normalized RawEvent shape.
package connectors

import (
	"context"
	"fmt"
	"sort"

	"github.com/jonathan/promo-radar/internal/browser"
	"github.com/jonathan/promo-radar/internal/types"
)

// Connector crawls one card company's event listings. A crawl swallows
// per-page and per-item failures; an empty slice is a valid result. An
// error means the listing surface was unreachable entirely.
type Connector interface {
	Company() string
	Crawl(ctx context.Context, session browser.Session) ([]types.RawEvent, error)
}

var registry = map[string]func() Connector{
	"shinhan": func() Connector { return NewShinhan() },
	"hyundai": func() Connector { return NewHyundai() },
	"kb":      func() Connector { return NewKB() },
	"samsung": func() Connector { return NewSamsung() },
}

// Names lists the registered connector slugs in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetSamsungIDRange overrides the cms_id probe window used by Samsung
// connectors constructed after this call. Meant for startup wiring.
func SetSamsungIDRange(start, end int) {
	registry["samsung"] = func() Connector {
		c := NewSamsung()
		c.SetIDRange(start, end)
		return c
	}
}

// ByName returns the connector registered under the given slug.
func ByName(name string) (Connector, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector %q (available: %v)", name, Names())
	}
	return ctor(), nil
}
