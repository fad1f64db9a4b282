package adf

// Generator hands node factories to the content callbacks of Comment, so a
// callback can assemble mixed inline content without importing constructors
// one by one.
type Generator struct{}

// Text returns a text inline with optional marks.
func (Generator) Text(text string, marks ...Mark) Text {
	return Text{Text: text, Marks: marks}
}

// Link returns a link inline.
func (Generator) Link(text, href string) Link {
	return NewLink(text, href)
}

// Mark returns a formatting mark.
func (Generator) Mark(markType MarkType, attrs map[string]any) Mark {
	return Mark{Type: markType, Attrs: attrs}
}

// Heading returns a heading block.
func (Generator) Heading(level int, content ...Inline) Heading {
	return Heading{Level: level, Content: content}
}

// Paragraph returns a paragraph block.
func (Generator) Paragraph(content ...Inline) Paragraph {
	return Paragraph{Content: content}
}

// Comment accumulates top-level blocks for one tracker comment body. Every
// append returns the comment itself so calls chain. The builder performs no
// validation: an out-of-range heading level passes through unchanged.
type Comment struct {
	body Node
	gen  Generator
}

// NewComment starts a comment, optionally seeded with already-built blocks
// (used when extending a previously built document).
func NewComment(content ...Node) *Comment {
	return &Comment{
		body: Node{Type: "doc", Version: DocVersion, Content: append([]Node{}, content...)},
	}
}

// Heading appends a heading whose content is a single text node.
func (c *Comment) Heading(level int, text string) *Comment {
	return c.HeadingWith(level, func(g Generator) []Inline {
		return []Inline{g.Text(text)}
	})
}

// HeadingWith appends a heading whose content comes from fn.
func (c *Comment) HeadingWith(level int, fn func(g Generator) []Inline) *Comment {
	c.body.Content = append(c.body.Content, Heading{Level: level, Content: fn(c.gen)}.Build())
	return c
}

// Paragraph appends a paragraph whose content is a single text node.
func (c *Comment) Paragraph(text string) *Comment {
	return c.ParagraphWith(func(g Generator) []Inline {
		return []Inline{g.Text(text)}
	})
}

// ParagraphWith appends a paragraph whose content comes from fn.
func (c *Comment) ParagraphWith(fn func(g Generator) []Inline) *Comment {
	c.body.Content = append(c.body.Content, Paragraph{Content: fn(c.gen)}.Build())
	return c
}

// Build returns the document in wire form. The builder is not frozen:
// further appends remain legal and a later Build reflects them.
func (c *Comment) Build() Node {
	content := make([]Node, len(c.body.Content))
	copy(content, c.body.Content)
	return Node{Type: c.body.Type, Version: c.body.Version, Content: content}
}
