package sitecrawl

// CleanResult holds the main content and metadata of an HTML page.
type CleanResult struct {
	// Title, Description and H1 come from the full document, trimmed.
	Title       string
	Description string
	H1          string

	// HTML is the cleaned main-content subtree.
	HTML string

	// Text is the block-separated visible text of HTML.
	Text string

	// WordCount is the number of whitespace-separated tokens in Text.
	WordCount int
}

// ContentCleaner strips boilerplate from HTML pages.
type ContentCleaner interface {
	// Clean selects the main content of html and removes navigation,
	// widgets and other noise. Malformed input yields an empty result.
	Clean(html string) (*CleanResult, error)
}

// LinkExtractor extracts anchors and robots directives from HTML pages.
type LinkExtractor interface {
	// ExtractLinks returns one record per anchor with a non-empty href,
	// in document order.
	ExtractLinks(html, pageURL string, scope Scope) []LinkRecord

	// RobotsMeta returns the page-level policies from <meta name="robots">.
	RobotsMeta(html string) (IndexPolicy, FollowPolicy)

	// FollowableLinks returns the de-duplicated http(s) URLs linked from
	// the page, resolved and normalized.
	FollowableLinks(html, pageURL string) []string
}

// ContactExtractor finds contact pages and email addresses.
type ContactExtractor interface {
	// FindContactPages returns in-scope URLs linked from the page whose
	// URL contains any of keywords.
	FindContactPages(html, pageURL string, scope Scope, keywords []string) []string

	// ExtractEmails returns the sorted set of plausible addresses on the page.
	ExtractEmails(html string) []string

	// VisibleText returns the page text with scripts and styles removed.
	VisibleText(html string) string
}

// PhoneExtractor finds phone numbers in text.
type PhoneExtractor interface {
	// ExtractPhoneNumbers returns the sorted set of valid numbers in E.164
	// format. Numbers without a country code are parsed in region.
	// A non-nil error is an extraction warning; the result is then empty.
	ExtractPhoneNumbers(text, region string) ([]string, error)
}

// Summarize counts links by category and follow policy.
func Summarize(links []LinkRecord) SummaryRecord {
	s := SummaryRecord{TotalLinks: len(links)}
	for _, l := range links {
		if l.Category == Internal {
			s.InternalLinks++
		} else {
			s.ExternalLinks++
		}
		if l.FollowPolicy == NoFollow {
			s.NofollowLinks++
		} else {
			s.FollowLinks++
		}
	}
	return s
}
