package pdf

// TextFragment is one text-drawing operation on a page together with the
// effective font size it was drawn at
type TextFragment struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size"`
}

// Metadata is a document information dictionary flattened to strings
type Metadata map[string]string

// Well-known document information keys
const (
	MetaTitle  = "Title"
	MetaAuthor = "Author"
)

// PageText is the plain text and the sized fragments of one page
type PageText struct {
	Text      string         `json:"text"`
	Fragments []TextFragment `json:"fragments"`
}
