package sitecrawl

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input should be cleaned HTML (e.g., from a ContentCleaner).
	Convert(html string) (string, error)
}
