package adf

import (
	"reflect"
	"testing"
)

func TestCommentChaining(t *testing.T) {
	doc := NewComment().
		Heading(2, "Deploy status").
		Paragraph("Everything deployed.").
		Build()

	if len(doc.Content) != 2 {
		t.Fatalf("content length = %d, want 2", len(doc.Content))
	}
	if doc.Content[0].Type != "heading" {
		t.Errorf("first block = %q, want heading", doc.Content[0].Type)
	}
	if doc.Content[1].Type != "paragraph" {
		t.Errorf("second block = %q, want paragraph", doc.Content[1].Type)
	}
	if doc.Content[0].Content[0].Text != "Deploy status" {
		t.Errorf("heading text = %q", doc.Content[0].Content[0].Text)
	}
}

func TestCommentGeneratorForms(t *testing.T) {
	doc := NewComment().
		HeadingWith(2, func(g Generator) []Inline {
			return []Inline{g.Link("Preview URL", "https://preview.example.com")}
		}).
		ParagraphWith(func(g Generator) []Inline {
			return []Inline{
				g.Text("See"),
				g.Link("the build", "https://ci.example.com/42"),
				g.Text("for details", g.Mark(MarkEm, nil)),
			}
		}).
		Build()

	heading := doc.Content[0]
	if len(heading.Content) != 1 || len(heading.Content[0].Marks) != 1 {
		t.Fatalf("heading link not built: %+v", heading)
	}
	if heading.Content[0].Marks[0].Attrs["href"] != "https://preview.example.com" {
		t.Errorf("heading link href = %v", heading.Content[0].Marks[0].Attrs["href"])
	}

	paragraph := doc.Content[1]
	if len(paragraph.Content) != 3 {
		t.Fatalf("paragraph inline count = %d, want 3", len(paragraph.Content))
	}
	if paragraph.Content[2].Marks[0].Type != string(MarkEm) {
		t.Errorf("third inline mark = %q, want em", paragraph.Content[2].Marks[0].Type)
	}
}

func TestCommentBuildDoesNotFreeze(t *testing.T) {
	comment := NewComment().Paragraph("first")

	one := comment.Build()
	comment.Paragraph("second")
	two := comment.Build()

	if len(one.Content) != 1 {
		t.Errorf("first build content length = %d, want 1", len(one.Content))
	}
	if len(two.Content) != 2 {
		t.Errorf("second build content length = %d, want 2", len(two.Content))
	}
}

func TestCommentOutOfRangeLevelPassesThrough(t *testing.T) {
	doc := NewComment().Heading(9, "too deep").Build()
	if doc.Content[0].Attrs["level"] != 9 {
		t.Errorf("level = %v, want 9 (no clamping)", doc.Content[0].Attrs["level"])
	}
}

func TestCommentSeededWithExistingContent(t *testing.T) {
	base := NewComment().Heading(2, "Preview").Build()

	extended := NewComment(base.Content...).
		Paragraph("Updated the preview URL for this task.").
		Build()

	if len(extended.Content) != 2 {
		t.Fatalf("content length = %d, want 2", len(extended.Content))
	}
	if !reflect.DeepEqual(extended.Content[0], base.Content[0]) {
		t.Errorf("seeded block changed: %+v", extended.Content[0])
	}
	// The seed document must not pick up the appended paragraph.
	if len(base.Content) != 1 {
		t.Errorf("base content length = %d, want 1", len(base.Content))
	}
}
