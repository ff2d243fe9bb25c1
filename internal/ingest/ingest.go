// Package ingest builds the reference tables from the trait markup page of
// the game's reference site.
//
// The page lists every trait as a div.set-trait block:
//
//	<div class="set-trait">
//	  <h4 class="trait-name">Ionia</h4>
//	  <a class="characters-item"><div class="character-wrapper"><img alt="Ahri"></div></a>
//	  <ul class="trait-bonus-list">
//	    <li class="trait-bonus-item"><span class="trait-bonus-count">3</span> Bonus text</li>
//	  </ul>
//	</div>
//
// and every unit as a div.set-champion block carrying h4.champion-name and
// div.champion-cost-value.
package ingest

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/traitcalc/traitcalc/internal/logging"
	"github.com/traitcalc/traitcalc/pkg/config"
)

// Parse reads a trait markup page and returns the tables it describes.
func Parse(r io.Reader) (*config.ReferenceTables, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, &config.ConfigurationError{Table: config.TableTraits, Reason: "malformed markup", Err: err}
	}

	tables := &config.ReferenceTables{Traits: config.TraitData{}, Costs: config.CostData{}}

	for _, section := range findAll(doc, "div", "set-trait") {
		name := findFirst(section, "h4", "trait-name")
		if name == nil {
			continue
		}
		id := textOf(name, nil)
		if id == "" {
			continue
		}
		if _, dup := tables.Traits[id]; dup {
			logging.Log.V(logging.DEBUG).Info("Duplicate trait section, keeping the last one", "trait", id)
		}
		tables.Traits[id] = config.TraitSpec{
			Units:       traitUnits(section),
			Activations: traitActivations(section),
		}
	}

	for _, champion := range findAll(doc, "div", "set-champion") {
		costElem := findFirst(champion, "div", "champion-cost-value")
		nameElem := findFirst(champion, "h4", "champion-name")
		if costElem == nil || nameElem == nil {
			continue
		}
		unit := textOf(nameElem, nil)
		if unit == "" {
			continue
		}
		raw := textOf(costElem, nil)
		cost, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &config.ConfigurationError{
				Table: config.TableCosts, Key: unit, Reason: fmt.Sprintf("cost %q is not an integer", raw), Err: err,
			}
		}
		if prev, dup := tables.Costs[unit]; dup && prev != cost {
			return nil, &config.ConfigurationError{
				Table: config.TableCosts, Key: unit, Reason: fmt.Sprintf("listed with costs %d and %d", prev, cost),
			}
		}
		tables.Costs[unit] = cost
	}

	logging.Log.V(logging.DEBUG).Info("Parsed trait page",
		"traits", len(tables.Traits),
		"units", len(tables.Costs))
	return tables, nil
}

// ParseFile parses the markup page at path.
func ParseFile(path string) (*config.ReferenceTables, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trait page: %w", err)
	}
	defer f.Close() //nolint:errcheck
	tables, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}

func traitUnits(section *html.Node) []string {
	units := []string{}
	for _, item := range findAll(section, "a", "characters-item") {
		wrapper := findFirst(item, "div", "character-wrapper")
		if wrapper == nil {
			continue
		}
		img := findFirst(wrapper, "img", "")
		if img == nil {
			continue
		}
		if alt, ok := attr(img, "alt"); ok {
			if alt = strings.TrimSpace(alt); alt != "" {
				units = append(units, alt)
			}
		}
	}
	return units
}

// traitActivations maps each bonus count to its description. The count
// element is excluded from the description text.
func traitActivations(section *html.Node) map[string]string {
	activations := map[string]string{}
	list := findFirst(section, "ul", "trait-bonus-list")
	if list == nil {
		return activations
	}
	for _, item := range findAll(list, "li", "trait-bonus-item") {
		count := findFirst(item, "span", "trait-bonus-count")
		if count == nil {
			continue
		}
		key := textOf(count, nil)
		if key == "" {
			continue
		}
		activations[key] = textOf(item, count)
	}
	return activations
}

// findAll returns every descendant element of n with the given tag and
// class, in document order. An empty class matches any element of tag.
func findAll(n *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag && (class == "" || hasClass(c, class)) {
				out = append(out, c)
			}
			walk(c.FirstChild)
		}
	}
	walk(n.FirstChild)
	return out
}

func findFirst(n *html.Node, tag, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag && (class == "" || hasClass(c, class)) {
			return c
		}
		if found := findFirst(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func hasClass(n *html.Node, class string) bool {
	v, ok := attr(n, "class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// textOf returns the whitespace-collapsed text of n, leaving out the
// subtree rooted at skip.
func textOf(n, skip *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c == skip {
			return
		}
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
