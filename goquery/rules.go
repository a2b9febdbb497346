package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Scope selects where in the document a rule runs.
type Scope int

const (
	// ScopeDocument rules run on the whole document before the content root is chosen.
	ScopeDocument Scope = iota
	// ScopeContent rules run on the descendants of the content root and are
	// repeated until none of them changes the tree.
	ScopeContent
	// ScopeFinish rules run once on the content root and its descendants.
	ScopeFinish
)

// Action is what a rule does to a matched element.
type Action int

const (
	// Remove deletes the element and its subtree.
	Remove Action = iota
	// Unwrap replaces the element with its children.
	Unwrap
	// KeepHeadings replaces the element's children with its heading descendants.
	KeepHeadings
	// ReplaceWithImage replaces the element with its first <img>, or removes it.
	ReplaceWithImage
	// StripStyle removes the inline style attribute.
	StripStyle
)

// Rule is one step of the cleaning pipeline.
type Rule struct {
	Name     string
	Scope    Scope
	Selector string
	// Match further restricts Selector matches. Nil matches everything.
	Match  func(*goquery.Selection) bool
	Action Action
}

// Apply runs the rule on matches of Selector within base and returns the
// number of elements changed. With includeBase, base itself may match.
func (r Rule) Apply(base *goquery.Selection, includeBase bool) int {
	targets := base.Find(r.Selector)
	if includeBase {
		targets = base.Filter(r.Selector).AddSelection(targets)
	}

	changed := 0
	targets.Each(func(_ int, s *goquery.Selection) {
		if r.Match != nil && !r.Match(s) {
			return
		}
		switch r.Action {
		case Remove:
			s.Remove()
		case Unwrap:
			if contents := s.Contents(); contents.Length() > 0 {
				s.ReplaceWithSelection(contents)
			} else {
				s.Remove()
			}
		case KeepHeadings:
			headings := s.Find(headingSelector).FilterFunction(func(_ int, h *goquery.Selection) bool {
				return h.ParentsUntilSelection(s).Filter(headingSelector).Length() == 0
			})
			s.Empty()
			s.AppendSelection(headings)
		case ReplaceWithImage:
			if img := s.Find("img").First(); img.Length() > 0 {
				s.ReplaceWithSelection(img)
			} else {
				s.Remove()
			}
		case StripStyle:
			if _, ok := s.Attr("style"); !ok {
				return
			}
			s.RemoveAttr("style")
		}
		changed++
	})
	return changed
}

const headingSelector = "h1, h2, h3, h4, h5, h6"

// structuralTags never carry main content.
var structuralTags = []string{
	"nav", "footer", "aside", "form", "script", "style", "noscript", "template",
	"iframe", "object", "embed", "svg", "canvas", "button", "select", "input",
	"textarea", "label", "audio", "video", "source", "track",
}

// frameworkComponents are sidebars and widgets of common documentation site generators.
var frameworkComponents = []string{
	".theme-doc-sidebar-container", ".table-of-contents", ".theme-doc-toc-mobile",
	".md-sidebar", ".md-nav", ".md-header", ".md-footer",
	".wy-nav-side", ".sphinxsidebar", ".toctree-wrapper", ".rst-footer-buttons",
	".VPNav", ".VPSidebar", ".VPLocalNav", ".VPDocAsideOutline", ".VPDocFooter",
	".sidebar-links", ".vuepress-navbar",
	".nextra-navbar", ".nextra-sidebar", ".nextra-toc", ".nextra-breadcrumb",
	"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']",
}

// frameworkMarkers identify content-adjacent chrome such as edit links and pagers.
var frameworkMarkers = []string{
	"theme-edit-this-page", "edit-this-page", "pagination-nav", "theme-doc-footer",
	"theme-doc-breadcrumbs", "theme-doc-version-badge", "md-source-file",
	"prev-next", "page-nav", "docs-feedback", "anchor-link",
}

// navMarkers are id, class, role or aria-label tokens of navigational elements.
var navMarkers = []string{
	"nav", "navbar", "navigation", "menu", "menubar", "breadcrumb", "breadcrumbs",
	"sidebar", "pagination", "pager", "skip", "skiplink",
}

// socialPlatforms mark social-media list items by class or id.
var socialPlatforms = []string{
	"facebook", "twitter", "instagram", "linkedin", "youtube", "pinterest",
	"tiktok", "reddit", "telegram", "whatsapp", "mastodon", "discord",
	"github", "social", "share",
}

// tocMarkers identify table-of-contents lists.
var tocMarkers = []string{"toc", "toctree", "table-of-contents"}

// DefaultRules returns the cleaning pipeline in execution order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "structural-tags", Scope: ScopeDocument, Selector: strings.Join(structuralTags, ", "), Action: Remove},
		{Name: "framework-components", Scope: ScopeDocument, Selector: strings.Join(frameworkComponents, ", "), Action: Remove},
		{Name: "header-without-heading", Scope: ScopeDocument, Selector: "header", Match: not(hasHeading), Action: Remove},
		{Name: "header-headings-only", Scope: ScopeDocument, Selector: "header", Match: hasNonHeadingContent, Action: KeepHeadings},

		{Name: "heading-of-divs", Scope: ScopeContent, Selector: headingSelector, Match: onlyElements(isTag("div"), true), Action: Remove},
		{Name: "picture", Scope: ScopeContent, Selector: "picture", Action: ReplaceWithImage},
		{Name: "framework-marker-div", Scope: ScopeContent, Selector: "div", Match: classOrIDContains(frameworkMarkers), Action: Remove},
		{Name: "anchor-wrapper-div", Scope: ScopeContent, Selector: "div", Match: onlyElements(isTag("a"), false), Action: Remove},
		{Name: "navigational-div", Scope: ScopeContent, Selector: "div", Match: hasMarker(navMarkers, "id", "class", "role", "aria-label"), Action: Remove},
		{Name: "navigational-link-list", Scope: ScopeContent, Selector: "ul", Match: and(hasMarker(navMarkers, "id", "class", "role", "aria-label"), linkOnlyList), Action: Remove},
		{Name: "image-link", Scope: ScopeContent, Selector: "a", Match: onlyElements(isTag("img"), false), Action: Remove},
		{Name: "social-list-item", Scope: ScopeContent, Selector: "li", Match: classOrIDContains(socialPlatforms), Action: Remove},
		{Name: "table-of-contents", Scope: ScopeContent, Selector: "ul, ol", Match: hasMarker(tocMarkers, "id", "class"), Action: Remove},
		{Name: "media-span", Scope: ScopeContent, Selector: "span", Match: soleChild(isTag("img"), isTag("a")), Action: Remove},

		{Name: "unwrap-anchors", Scope: ScopeFinish, Selector: "a", Action: Unwrap},
		{Name: "inline-style", Scope: ScopeFinish, Selector: "[style]", Action: StripStyle},
	}
}

func isTag(name string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == name }
}

func not(f func(*goquery.Selection) bool) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool { return !f(s) }
}

func and(fs ...func(*goquery.Selection) bool) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		for _, f := range fs {
			if !f(s) {
				return false
			}
		}
		return true
	}
}

func hasHeading(s *goquery.Selection) bool {
	return s.Find(headingSelector).Length() > 0
}

// hasNonHeadingContent reports whether a header holding headings has anything
// besides them as direct children.
func hasNonHeadingContent(s *goquery.Selection) bool {
	if !hasHeading(s) {
		return false
	}
	for c := s.Get(0).FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return true
			}
		case html.ElementNode:
			if !isHeading(c) {
				return true
			}
		}
	}
	return false
}

func isHeading(n *html.Node) bool {
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// onlyElements matches elements with at least one element child, every
// element child satisfying pred, and no visible direct text. With
// throughAnchors, anchor children are looked through.
func onlyElements(pred func(*html.Node) bool, throughAnchors bool) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		count := 0
		ok := walkChildren(s.Get(0), throughAnchors, func(c *html.Node) bool {
			count++
			return pred(c)
		})
		return ok && count > 0
	}
}

// walkChildren visits the element children of n, failing on visible text.
func walkChildren(n *html.Node, throughAnchors bool, visit func(*html.Node) bool) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				return false
			}
		case html.ElementNode:
			if throughAnchors && c.Data == "a" {
				if !walkChildren(c, throughAnchors, visit) {
					return false
				}
				continue
			}
			if !visit(c) {
				return false
			}
		}
	}
	return true
}

// soleChild matches elements with exactly one element child satisfying any
// of preds and no visible text.
func soleChild(preds ...func(*html.Node) bool) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		var only *html.Node
		ok := walkChildren(s.Get(0), false, func(c *html.Node) bool {
			if only != nil {
				return false
			}
			only = c
			return true
		})
		if !ok || only == nil {
			return false
		}
		for _, p := range preds {
			if p(only) {
				return true
			}
		}
		return false
	}
}

// linkOnlyList matches lists whose items contain nothing but anchors.
func linkOnlyList(s *goquery.Selection) bool {
	items := s.ChildrenFiltered("li")
	if items.Length() == 0 {
		return false
	}
	all := true
	items.EachWithBreak(func(_ int, li *goquery.Selection) bool {
		all = onlyElements(isTag("a"), false)(li)
		return all
	})
	return all
}

// classOrIDContains matches elements whose class or id contains any marker.
func classOrIDContains(markers []string) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		value := strings.ToLower(s.AttrOr("class", "") + " " + s.AttrOr("id", ""))
		for _, m := range markers {
			if strings.Contains(value, m) {
				return true
			}
		}
		return false
	}
}

// hasMarker matches elements where any of attrs contains a marker as a
// token. Attribute values are split on non-alphanumerics; markers that
// contain a dash match as substrings.
func hasMarker(markers []string, attrs ...string) func(*goquery.Selection) bool {
	return func(s *goquery.Selection) bool {
		for _, attr := range attrs {
			value, ok := s.Attr(attr)
			if !ok || value == "" {
				continue
			}
			value = strings.ToLower(value)
			tokens := strings.FieldsFunc(value, func(r rune) bool {
				return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
			})
			for _, m := range markers {
				if strings.Contains(m, "-") {
					if strings.Contains(value, m) {
						return true
					}
					continue
				}
				for _, t := range tokens {
					if t == m {
						return true
					}
				}
			}
		}
		return false
	}
}
