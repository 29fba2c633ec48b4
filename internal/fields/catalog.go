package fields

import "slices"

// Region partitions the field catalog.
type Region string

const (
	RegionGlobal Region = "global"
	RegionChina  Region = "china"
)

// Catalog is a read-only allow-list of field codes. The command-line tool and
// the MCP server accept slightly different sets, so each has its own named
// catalog instead of a merged one.
type Catalog struct {
	name    string
	codes   []string
	regions map[string]Region
}

func newCatalog(name string, global, china []string) *Catalog {
	c := &Catalog{
		name:    name,
		regions: make(map[string]Region, len(global)+len(china)),
	}
	add := func(codes []string, r Region) {
		for _, code := range codes {
			if _, ok := c.regions[code]; ok {
				continue
			}
			c.regions[code] = r
			c.codes = append(c.codes, code)
		}
	}
	add(global, RegionGlobal)
	add(china, RegionChina)
	return c
}

var (
	windGlobal = []string{
		"u10m", "v10m", "ws10m", "wd10m",
		"u100m", "v100m", "ws100m", "wd100m",
	}
	windChina = []string{
		"u30m", "v30m", "ws30m", "wd30m",
		"u50m", "v50m", "ws50m", "wd50m",
		"u70m", "v70m", "ws70m", "wd70m",
	}
)

// CLI is the catalog accepted by the tjweather command.
var CLI = newCatalog("cli",
	concat(windGlobal, []string{
		"t2m", "cldt", "cldl", "psz", "rh2m",
		"tp", "pres", "prer", "ssrd",
		"slp", "gust", "cape",
	}),
	windChina,
)

// MCP is the catalog accepted by the weather_query tool. It lacks gust and cape.
var MCP = newCatalog("mcp",
	concat(windGlobal, []string{
		"t2m", "cldt", "cldl", "psz", "rh2m",
		"tp", "pres", "prer", "ssrd", "slp",
	}),
	windChina,
)

// Name identifies the catalog in logs.
func (c *Catalog) Name() string {
	return c.name
}

// Codes returns every code in declaration order.
func (c *Catalog) Codes() []string {
	return slices.Clone(c.codes)
}

// CodesIn returns the codes of a single region in declaration order.
func (c *Catalog) CodesIn(r Region) []string {
	var out []string
	for _, code := range c.codes {
		if c.regions[code] == r {
			out = append(out, code)
		}
	}
	return out
}

// Contains reports whether code is in the catalog. Matching is exact and
// case-sensitive.
func (c *Catalog) Contains(code string) bool {
	_, ok := c.regions[code]
	return ok
}

// Region returns the region a code belongs to.
func (c *Catalog) Region(code string) (Region, bool) {
	r, ok := c.regions[code]
	return r, ok
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
