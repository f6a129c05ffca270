package extract

import (
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// MarkdownExtractor extracts plain text from markdown via goldmark AST
// parsing. Formatting markers are dropped, table cells are joined with
// pipe separators so tabular content survives as searchable text.
type MarkdownExtractor struct {
	parser goldmark.Markdown
}

// NewMarkdownExtractor creates a markdown extractor with table support.
func NewMarkdownExtractor() *MarkdownExtractor {
	return &MarkdownExtractor{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Name identifies the extractor.
func (e *MarkdownExtractor) Name() string { return "markdown" }

// Extract parses the markdown file and returns its text as a single page.
func (e *MarkdownExtractor) Extract(path string) ([]Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown file: %w", err)
	}
	if len(content) == 0 {
		return nil, nil
	}

	reader := text.NewReader(content)
	doc := e.parser.Parser().Parse(reader)

	return []Page{{Number: 1, Text: e.renderText(doc, content)}}, nil
}

// renderText walks the AST and collects text content, inserting newlines at
// block boundaries so chunk boundaries can later fall between paragraphs.
func (e *MarkdownExtractor) renderText(doc ast.Node, content []byte) string {
	var builder strings.Builder

	ensureNewline := func() {
		if builder.Len() > 0 && !strings.HasSuffix(builder.String(), "\n") {
			builder.WriteString("\n")
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			ensureNewline()
			builder.WriteString(nodeText(node, content))
			builder.WriteString("\n")
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			builder.Write(node.Segment.Value(content))
			return ast.WalkContinue, nil

		case *ast.String:
			builder.Write(node.Value)
			return ast.WalkContinue, nil

		case *ast.CodeBlock:
			ensureNewline()
			writeLines(&builder, node, content)
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			ensureNewline()
			writeLines(&builder, node, content)
			return ast.WalkSkipChildren, nil

		case *ast.Paragraph, *ast.List, *ast.ListItem, *ast.Blockquote:
			ensureNewline()
			return ast.WalkContinue, nil

		default:
			kindName := n.Kind().String()
			if strings.Contains(kindName, "TableRow") || strings.Contains(kindName, "TableHeader") {
				ensureNewline()
				builder.WriteString(tableRowText(n, content))
				builder.WriteString("\n")
				return ast.WalkSkipChildren, nil
			}
			return ast.WalkContinue, nil
		}
	})

	return strings.TrimSpace(builder.String())
}

func writeLines(builder *strings.Builder, n ast.Node, content []byte) {
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		builder.Write(line.Value(content))
	}
}

// nodeText extracts the flattened text content of a node and its children.
func nodeText(n ast.Node, content []byte) string {
	var builder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			builder.Write(v.Segment.Value(content))
		case *ast.String:
			builder.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(builder.String())
}

// tableRowText joins a table row's cells with pipe separators.
func tableRowText(row ast.Node, content []byte) string {
	var builder strings.Builder
	cellCount := 0

	_ = ast.Walk(row, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if strings.Contains(node.Kind().String(), "TableCell") {
			if cellCount > 0 {
				builder.WriteString(" | ")
			}
			builder.WriteString(nodeText(node, content))
			cellCount++
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return builder.String()
}
