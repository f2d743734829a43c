package terminal

// PartKind discriminates the variants of a multimodal message part.
type PartKind string

const (
	PartKindText  PartKind = "text"
	PartKindImage PartKind = "image"
)

// Part is one element of a multimodal message.
type Part interface {
	Kind() PartKind
}

type TextPart struct {
	Text string
}

func (TextPart) Kind() PartKind {
	return PartKindText
}

// ImagePart carries an image reference. Images are never rendered on the
// terminal; the display layer skips them.
type ImagePart struct {
	URL string
}

func (ImagePart) Kind() PartKind {
	return PartKindImage
}

// Content is a message payload: either plain text or a sequence of typed
// parts. The zero value is empty content.
type Content struct {
	parts []Part
}

func Text(s string) Content {
	return Content{parts: []Part{TextPart{Text: s}}}
}

func Parts(parts ...Part) Content {
	return Content{parts: parts}
}

// firstText extracts the first text part; non-text parts are ignored for
// display purposes.
func (c Content) firstText() string {
	for _, part := range c.parts {
		if text, ok := part.(TextPart); ok {
			return text.Text
		}
	}

	return ""
}
