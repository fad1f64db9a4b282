// Package adf builds Jira rich-text comment bodies (Atlassian Document
// Format). Construction is one-way: nodes are assembled in memory and
// serialized once via Build; nothing in this package parses documents back
// into model types. Fetched documents are handled as raw Node trees.
package adf

// MarkType enumerates the formatting marks the tracker's document format
// accepts. The set is closed; there is no free-form mark.
type MarkType string

const (
	MarkCode      MarkType = "code"
	MarkEm        MarkType = "em"
	MarkLink      MarkType = "link"
	MarkStrike    MarkType = "strike"
	MarkStrong    MarkType = "strong"
	MarkSubSup    MarkType = "subsup"
	MarkTextColor MarkType = "textColor"
	MarkUnderline MarkType = "underline"
)

// DocVersion is the document schema version the tracker expects.
const DocVersion = 1

// Node is the wire form of a document element. The same struct covers the
// root document, blocks and inline text, which keeps scanning of fetched
// comments straightforward.
type Node struct {
	Type    string         `json:"type"`
	Version int            `json:"version,omitempty"`
	Text    string         `json:"text,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Marks   []MarkNode     `json:"marks,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

// MarkNode is the wire form of a formatting mark. Attrs must be absent
// (not an empty object) when no attributes are set; the tracker treats the
// two differently.
type MarkNode struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Mark is a formatting mark applied to a text node.
type Mark struct {
	Type  MarkType
	Attrs map[string]any
}

// Build serializes the mark, omitting attrs when none are set.
func (m Mark) Build() MarkNode {
	node := MarkNode{Type: string(m.Type)}
	if len(m.Attrs) > 0 {
		node.Attrs = m.Attrs
	}
	return node
}

// Inline is an element that can appear inside a heading or paragraph.
type Inline interface {
	Build() Node
}

// Text is an inline string with zero or more marks.
type Text struct {
	Text  string
	Marks []Mark
}

// Build serializes the text node, omitting marks when there are none.
func (t Text) Build() Node {
	node := Node{Type: "text", Text: t.Text}
	if len(t.Marks) > 0 {
		node.Marks = make([]MarkNode, 0, len(t.Marks))
		for _, m := range t.Marks {
			node.Marks = append(node.Marks, m.Build())
		}
	}
	return node
}

// Link is a text node carrying exactly one link mark. It can only be built
// through NewLink, which is what guarantees the single-mark invariant.
type Link struct {
	text string
	href string
}

// NewLink returns a link inline for the given text and href.
func NewLink(text, href string) Link {
	return Link{text: text, href: href}
}

// Build serializes the link as a text node with one link mark.
func (l Link) Build() Node {
	return Text{
		Text:  l.text,
		Marks: []Mark{{Type: MarkLink, Attrs: map[string]any{"href": l.href}}},
	}.Build()
}

// Block is a top-level document element.
type Block interface {
	Build() Node
}

// Paragraph is a block of inline content.
type Paragraph struct {
	Content []Inline
}

func (p Paragraph) Build() Node {
	return buildBlock("paragraph", p.Content)
}

// Heading is a block of inline content with a level attribute. Level must be
// 1 through 6; callers own that invariant, nothing here clamps it.
type Heading struct {
	Level   int
	Content []Inline
}

// Build composes the generic block serialization and attaches attrs.level.
func (h Heading) Build() Node {
	node := buildBlock("heading", h.Content)
	node.Attrs = map[string]any{"level": h.Level}
	return node
}

func buildBlock(blockType string, content []Inline) Node {
	node := Node{Type: blockType, Content: make([]Node, 0, len(content))}
	for _, inline := range content {
		node.Content = append(node.Content, inline.Build())
	}
	return node
}

// Document is the root container of an ordered block sequence.
type Document struct {
	Version int
	Content []Block
}

// Build serializes the document. A zero Version defaults to DocVersion.
func (d Document) Build() Node {
	version := d.Version
	if version == 0 {
		version = DocVersion
	}
	node := Node{Type: "doc", Version: version, Content: make([]Node, 0, len(d.Content))}
	for _, block := range d.Content {
		node.Content = append(node.Content, block.Build())
	}
	return node
}
