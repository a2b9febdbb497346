package sitecrawl

import "encoding/json"

// RecordType tags each record in a result collection.
type RecordType string

// Record types.
const (
	RecordPage     RecordType = "page"
	RecordPageInfo RecordType = "page_info"
	RecordLink     RecordType = "link"
	RecordSummary  RecordType = "summary"
	RecordContact  RecordType = "contact_info"
	RecordError    RecordType = "error"
)

// Record is one entry of a crawl result collection.
type Record interface {
	RecordType() RecordType
}

// FollowPolicy is derived from an anchor's rel attribute or a robots meta tag.
type FollowPolicy string

// Follow policies.
const (
	Follow   FollowPolicy = "follow"
	NoFollow FollowPolicy = "nofollow"
)

// IndexPolicy is derived from a robots meta tag.
type IndexPolicy string

// Index policies.
const (
	Index   IndexPolicy = "index"
	NoIndex IndexPolicy = "noindex"
)

// LinkCategory classifies a link relative to the job's base domain.
type LinkCategory string

// Link categories.
const (
	Internal LinkCategory = "internal"
	External LinkCategory = "external"
)

// ContactStatus is the outcome of contact extraction for one page.
type ContactStatus string

// Contact statuses.
const (
	ContactFound    ContactStatus = "found"
	ContactNotFound ContactStatus = "not_found"
	ContactError    ContactStatus = "error"
)

// PageRecord holds the extracted content of one page in sitemap mode.
type PageRecord struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	H1              string `json:"h1"`
	ContentText     string `json:"content_text"`
	ContentHTML     string `json:"content_html,omitempty"`
	ContentMarkdown string `json:"content_markdown,omitempty"`
	ContentHash     string `json:"content_hash"`
	StatusCode      int    `json:"status_code"`
	WordCount       int    `json:"word_count"`
}

// PageInfoRecord describes the audited page in links mode.
type PageInfoRecord struct {
	URL          string       `json:"url"`
	StatusCode   int          `json:"http_status_code"`
	IndexStatus  IndexPolicy  `json:"index_status"`
	FollowStatus FollowPolicy `json:"follow_status"`
	Title        string       `json:"title"`
	Description  string       `json:"meta_description"`
}

// LinkRecord describes one anchor tag in links mode.
type LinkRecord struct {
	URL          string       `json:"url"`
	AnchorText   string       `json:"anchor_text"`
	FollowPolicy FollowPolicy `json:"link_type"`
	Category     LinkCategory `json:"link_category"`
	Target       string       `json:"target"`
}

// SummaryRecord aggregates the link records of one page.
type SummaryRecord struct {
	TotalLinks    int `json:"total_links"`
	InternalLinks int `json:"internal_links_count"`
	ExternalLinks int `json:"external_links_count"`
	FollowLinks   int `json:"follow_links"`
	NofollowLinks int `json:"nofollow_links"`
}

// ContactRecord holds the contact details found on one page.
type ContactRecord struct {
	URL           string        `json:"url"`
	SourcePageURL string        `json:"found_on_page"`
	Emails        []string      `json:"emails"`
	PhoneNumbers  []string      `json:"phone_numbers"`
	Status        ContactStatus `json:"status"`
	ErrorMessage  string        `json:"error_message,omitempty"`
}

// ErrorRecord replaces a success record when a fetch fails terminally.
type ErrorRecord struct {
	URL          string `json:"url"`
	StatusCode   int    `json:"status_code,omitempty"`
	ErrorMessage string `json:"error_message"`
}

func (PageRecord) RecordType() RecordType     { return RecordPage }
func (PageInfoRecord) RecordType() RecordType { return RecordPageInfo }
func (LinkRecord) RecordType() RecordType     { return RecordLink }
func (SummaryRecord) RecordType() RecordType  { return RecordSummary }
func (ContactRecord) RecordType() RecordType  { return RecordContact }
func (ErrorRecord) RecordType() RecordType    { return RecordError }

// MarshalJSON adds the "type" tag.
func (r PageRecord) MarshalJSON() ([]byte, error) {
	type alias PageRecord
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		alias
	}{RecordPage, alias(r)})
}

// MarshalJSON adds the "type" tag.
func (r PageInfoRecord) MarshalJSON() ([]byte, error) {
	type alias PageInfoRecord
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		alias
	}{RecordPageInfo, alias(r)})
}

// MarshalJSON adds the "type" tag.
func (r LinkRecord) MarshalJSON() ([]byte, error) {
	type alias LinkRecord
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		alias
	}{RecordLink, alias(r)})
}

// MarshalJSON adds the "type" tag.
func (r SummaryRecord) MarshalJSON() ([]byte, error) {
	type alias SummaryRecord
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		alias
	}{RecordSummary, alias(r)})
}

// MarshalJSON adds the "type" tag.
func (r ContactRecord) MarshalJSON() ([]byte, error) {
	type alias ContactRecord
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		alias
	}{RecordContact, alias(r)})
}

// MarshalJSON adds the "type" tag.
func (r ErrorRecord) MarshalJSON() ([]byte, error) {
	type alias ErrorRecord
	return json.Marshal(struct {
		Type RecordType `json:"type"`
		alias
	}{RecordError, alias(r)})
}

// UnmarshalRecord decodes a tagged record produced by one of the MarshalJSON methods.
func UnmarshalRecord(data []byte) (Record, error) {
	var tag struct {
		Type RecordType `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, err
	}

	var rec Record
	var err error
	switch tag.Type {
	case RecordPage:
		var r PageRecord
		err = json.Unmarshal(data, &r)
		rec = r
	case RecordPageInfo:
		var r PageInfoRecord
		err = json.Unmarshal(data, &r)
		rec = r
	case RecordLink:
		var r LinkRecord
		err = json.Unmarshal(data, &r)
		rec = r
	case RecordSummary:
		var r SummaryRecord
		err = json.Unmarshal(data, &r)
		rec = r
	case RecordContact:
		var r ContactRecord
		err = json.Unmarshal(data, &r)
		rec = r
	case RecordError:
		var r ErrorRecord
		err = json.Unmarshal(data, &r)
		rec = r
	default:
		return nil, Errorf(EPARSE, "unknown record type %q", tag.Type)
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}
