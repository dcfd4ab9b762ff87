package content

import (
	"fmt"
	"html"
	"strings"
)

// RenderItem renders a single item to HTML. Unknown types render a visible
// placeholder so the rest of the document still renders.
func RenderItem(it Item) string {
	var b strings.Builder
	renderItem(&b, it)
	return b.String()
}

func renderItem(b *strings.Builder, it Item) {
	switch it.Type {
	case KindText:
		fmt.Fprintf(b, "<p>%s</p>", html.EscapeString(it.Text))
	case KindHeading1:
		fmt.Fprintf(b, "<h1>%s</h1>", html.EscapeString(it.Text))
	case KindHeading2:
		fmt.Fprintf(b, "<h2>%s</h2>", html.EscapeString(it.Text))
	case KindHeading3:
		fmt.Fprintf(b, "<h3>%s</h3>", html.EscapeString(it.Text))
	case KindSpace:
		b.WriteString(`<div class="space"></div>`)
	case KindImage:
		fmt.Fprintf(b, `<img src="%s" alt="%s">`, html.EscapeString(it.Src), html.EscapeString(it.Alt))
	case KindHorizontalLine:
		b.WriteString("<hr>")
	case KindOrderedList:
		renderList(b, "ol", it.Items)
	case KindUnorderedList:
		renderList(b, "ul", it.Items)
	case KindQuiz:
		renderQuiz(b, it.Quiz)
	case KindTable:
		renderTable(b, it.Table)
	default:
		fmt.Fprintf(b, `<div class="unsupported">Unsupported content type: %s</div>`, html.EscapeString(string(it.Type)))
	}
}

func renderList(b *strings.Builder, tag string, entries []ListEntry) {
	fmt.Fprintf(b, "<%s>", tag)
	for _, e := range entries {
		b.WriteString("<li>")
		switch {
		case len(e.Spans) > 0:
			for _, s := range e.Spans {
				if s.Href != "" {
					fmt.Fprintf(b, `<a href="%s">%s</a>`, html.EscapeString(s.Href), html.EscapeString(s.Text))
				} else {
					b.WriteString(html.EscapeString(s.Text))
				}
			}
		default:
			b.WriteString(html.EscapeString(e.Text))
		}
		if e.Sub != nil {
			renderList(b, tag, e.Sub)
		}
		b.WriteString("</li>")
	}
	fmt.Fprintf(b, "</%s>", tag)
}

func renderQuiz(b *strings.Builder, q *QuizRef) {
	if q == nil {
		b.WriteString(`<div class="quiz"></div>`)
		return
	}
	fmt.Fprintf(b, `<div class="quiz" data-quiz-id="%s">%s</div>`, html.EscapeString(q.QuizID), html.EscapeString(q.Title))
}

func renderTable(b *strings.Builder, t *Table) {
	if t == nil {
		b.WriteString("<table></table>")
		return
	}
	per, cols := DefaultItemsPerPage, DefaultColumnCount
	if t.ItemsPerPage != nil {
		per = *t.ItemsPerPage
	}
	if t.ColumnCount != nil {
		cols = *t.ColumnCount
	}
	fmt.Fprintf(b, `<table data-items-per-page="%d" data-columns="%d">`, per, cols)
	if len(t.Header) > 0 {
		b.WriteString("<thead>")
		for _, row := range t.Header {
			renderRow(b, "th", row)
		}
		b.WriteString("</thead>")
	}
	b.WriteString("<tbody>")
	for _, row := range t.Rows {
		renderRow(b, "td", row)
	}
	b.WriteString("</tbody></table>")
}

func renderRow(b *strings.Builder, cell string, row []Cell) {
	b.WriteString("<tr>")
	for _, c := range row {
		fmt.Fprintf(b, "<%s>%s</%s>", cell, html.EscapeString(c.Text), cell)
	}
	b.WriteString("</tr>")
}

// RenderPage renders the page title, if any, followed by its items.
func RenderPage(p *Page) string {
	var b strings.Builder
	renderPage(&b, p)
	return b.String()
}

func renderPage(b *strings.Builder, p *Page) {
	b.WriteString(`<section class="page">`)
	if p.Title != "" {
		fmt.Fprintf(b, `<h2 class="page-title">%s</h2>`, html.EscapeString(p.Title))
	}
	for _, it := range p.Items {
		renderItem(b, it)
	}
	b.WriteString("</section>")
}

// RenderBook renders the book in traversal order. Each chapter, subchapter
// and sub-subchapter opens a section headed by its title.
func RenderBook(book *Book) string {
	var b strings.Builder
	b.WriteString(`<article class="book">`)
	if book == nil {
		b.WriteString("</article>")
		return b.String()
	}
	fmt.Fprintf(&b, `<h1 class="book-title">%s</h1>`, html.EscapeString(book.Title))
	for ci := range book.Chapters {
		ch := &book.Chapters[ci]
		openSection(&b, "chapter", "h2", ch.Title)
		for si := range ch.SubChapters {
			sub := &ch.SubChapters[si]
			openSection(&b, "subchapter", "h3", sub.Title)
			for ssi := range sub.SubSubChapters {
				ss := &sub.SubSubChapters[ssi]
				openSection(&b, "subsubchapter", "h4", ss.Title)
				renderPages(&b, ss.Pages)
				b.WriteString("</section>")
			}
			renderPages(&b, sub.Pages)
			b.WriteString("</section>")
		}
		renderPages(&b, ch.Pages)
		b.WriteString("</section>")
	}
	b.WriteString("</article>")
	return b.String()
}

func openSection(b *strings.Builder, class, tag, title string) {
	fmt.Fprintf(b, `<section class="%s">`, class)
	if title != "" {
		fmt.Fprintf(b, `<%s class="%s-title">%s</%s>`, tag, class, html.EscapeString(title), tag)
	}
}

func renderPages(b *strings.Builder, pages []Page) {
	for i := range pages {
		renderPage(b, &pages[i])
	}
}
