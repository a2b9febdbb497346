// Package goquery implements HTML extraction on top of goquery: content
// cleaning, link auditing and contact discovery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitecrawl"
)

// maxContentPasses bounds how often content rules are repeated.
const maxContentPasses = 5

// rootSelectors are tried in order to find the main content element.
var rootSelectors = []string{"main", "article", "div.content, div#content", "body"}

var _ sitecrawl.ContentCleaner = (*Cleaner)(nil)

// Cleaner strips boilerplate from HTML pages using an ordered rule list.
type Cleaner struct {
	Rules []Rule
}

// NewCleaner returns a Cleaner running DefaultRules.
func NewCleaner() *Cleaner {
	return &Cleaner{Rules: DefaultRules()}
}

// Clean implements sitecrawl.ContentCleaner. Metadata is read from the
// unstripped document; HTML is the rendered content root after cleaning.
func (c *Cleaner) Clean(html string) (*sitecrawl.CleanResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, sitecrawl.Errorf(sitecrawl.EPARSE, "failed to parse HTML: %v", err)
	}

	result := &sitecrawl.CleanResult{
		Title:       documentTitle(doc),
		Description: metaContent(doc, "description"),
		H1:          strings.TrimSpace(doc.Find("h1").First().Text()),
	}

	c.run(doc.Selection, ScopeDocument, false)

	root := contentRoot(doc)
	if root == nil {
		return result, nil
	}

	for range maxContentPasses {
		if c.run(root, ScopeContent, false) == 0 {
			break
		}
	}
	c.run(root, ScopeFinish, true)

	rendered, err := goquery.OuterHtml(root)
	if err != nil {
		return nil, sitecrawl.Errorf(sitecrawl.EINTERNAL, "failed to render content: %v", err)
	}
	result.HTML = rendered
	result.Text = Text(root)
	result.WordCount = len(strings.Fields(result.Text))
	return result, nil
}

// run applies every rule of scope in order and returns the number of changes.
func (c *Cleaner) run(base *goquery.Selection, scope Scope, includeBase bool) int {
	changed := 0
	for _, r := range c.Rules {
		if r.Scope != scope {
			continue
		}
		changed += r.Apply(base, includeBase)
	}
	return changed
}

func contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range rootSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}
