package transfer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/abhisek/smartstudy/internal/deck"
)

// MarkdownSet is the result of ReadMarkdown.
type MarkdownSet struct {
	// Name is the first level-1 heading, empty if there is none.
	Name      string
	Questions []deck.Question
}

var md = goldmark.New(goldmark.WithExtensions(extension.TaskList))

// ReadMarkdown parses a question set written as Markdown:
//
//	# Set name
//	## Subject
//	### Question prompt
//	- [ ] wrong
//	- [x] right
//	- [ ] wrong
//	- [ ] wrong
//	> Optional explanation.
//
// Questions without exactly four options and one checked box are skipped
// and reported by the line of their heading.
func ReadMarkdown(r io.Reader) (MarkdownSet, deck.LoadReport, error) {
	var (
		out    MarkdownSet
		report deck.LoadReport
	)
	src, err := io.ReadAll(r)
	if err != nil {
		return out, report, fmt.Errorf("read markdown: %w", err)
	}
	doc := md.Parser().Parse(text.NewReader(src))

	var (
		subject string
		cur     *mdQuestion
	)
	finish := func() {
		if cur == nil {
			return
		}
		q, err := cur.build(subject)
		if err != nil {
			report.Add(fmt.Sprintf("line %d", cur.line), err)
		} else {
			out.Questions = append(out.Questions, q)
		}
		cur = nil
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := inlineText(node, src)
			switch node.Level {
			case 1:
				finish()
				if out.Name == "" {
					out.Name = title
				}
			case 2:
				finish()
				subject = title
			default:
				finish()
				cur = &mdQuestion{prompt: title, line: lineOf(node, src)}
			}
		case *ast.Paragraph:
			if cur != nil && cur.options == nil {
				cur.prompt = strings.TrimSpace(cur.prompt + " " + inlineText(node, src))
			}
		case *ast.List:
			if cur != nil {
				cur.addOptions(node, src)
			}
		case *ast.Blockquote:
			if cur != nil {
				cur.explanation = strings.TrimSpace(strings.Join([]string{cur.explanation, blockText(node, src)}, " "))
			}
		}
	}
	finish()
	return out, report, nil
}

type mdQuestion struct {
	line        int
	prompt      string
	options     []string
	checked     []int
	unchecked   int
	explanation string
}

func (q *mdQuestion) addOptions(list *ast.List, src []byte) {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		block := item.FirstChild()
		if block == nil {
			continue
		}
		box, ok := block.FirstChild().(*extast.TaskCheckBox)
		if !ok {
			q.unchecked++
			continue
		}
		if box.IsChecked {
			q.checked = append(q.checked, len(q.options))
		}
		q.options = append(q.options, inlineText(block, src))
	}
}

func (q *mdQuestion) build(subject string) (deck.Question, error) {
	switch {
	case q.prompt == "":
		return deck.Question{}, errors.New("question heading is empty")
	case q.unchecked > 0:
		return deck.Question{}, fmt.Errorf("%d list item(s) without a checkbox", q.unchecked)
	case len(q.options) != deck.OptionCount:
		return deck.Question{}, fmt.Errorf("expected %d options, got %d", deck.OptionCount, len(q.options))
	case len(q.checked) != 1:
		return deck.Question{}, fmt.Errorf("expected exactly one checked option, got %d", len(q.checked))
	}
	var opts [deck.OptionCount]string
	copy(opts[:], q.options)
	out := deck.NewQuestion(deck.NewQuestionID(), q.prompt, opts, q.checked[0])
	out.Subject = subject
	out.Explanation = q.explanation
	if err := out.Validate(); err != nil {
		return deck.Question{}, err
	}
	return out, nil
}

// inlineText concatenates the text under n. Soft line breaks become spaces.
func inlineText(n ast.Node, src []byte) string {
	var b bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

// blockText joins the inline text of each block inside n.
func blockText(n ast.Node, src []byte) string {
	var parts []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if s := inlineText(c, src); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// lineOf returns the 1-based source line of a block node.
func lineOf(n ast.Node, src []byte) int {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return bytes.Count(src[:lines.At(0).Start], []byte("\n")) + 1
}

// WriteMarkdown renders a set in the format ReadMarkdown accepts. Questions
// are grouped under a subject heading when the subject changes.
func WriteMarkdown(w io.Writer, set deck.Set) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", set.Name)
	subject := ""
	for i, q := range set.Questions {
		if i == 0 || q.Subject != subject {
			subject = q.Subject
			if subject != "" {
				fmt.Fprintf(&b, "\n## %s\n", subject)
			}
		}
		fmt.Fprintf(&b, "\n### %s\n\n", oneLine(q.Prompt))
		for j, opt := range q.Options {
			mark := " "
			if j == q.CorrectIndex {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, oneLine(opt))
		}
		if q.Explanation != "" {
			fmt.Fprintf(&b, "\n> %s\n", oneLine(q.Explanation))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
