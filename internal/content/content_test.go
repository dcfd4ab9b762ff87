package content_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chwadmin/internal/content"
)

func text(s string) content.Item {
	return content.Item{Type: content.KindText, Text: s}
}

func texts(items []content.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestWalkRendersSubchaptersBeforeChapterPages(t *testing.T) {
	book := &content.Book{
		Title: "Maternal health",
		Chapters: []content.Chapter{{
			Title: "One",
			SubChapters: []content.SubChapter{{
				Title: "One.A",
				Pages: []content.Page{{Items: []content.Item{text("A")}}},
			}},
			Pages: []content.Page{{Items: []content.Item{text("B")}}},
		}},
	}

	assert.Equal(t, []string{"A", "B"}, texts(content.Flatten(book)))

	html := content.RenderBook(book)
	assert.Less(t, strings.Index(html, "<p>A</p>"), strings.Index(html, "<p>B</p>"))
}

func TestWalkOrderAcrossAllLevels(t *testing.T) {
	page := func(s string) content.Page { return content.Page{Items: []content.Item{text(s)}} }
	book := &content.Book{Chapters: []content.Chapter{
		{
			SubChapters: []content.SubChapter{
				{
					SubSubChapters: []content.SubSubChapter{{Pages: []content.Page{page("1"), page("2")}}},
					Pages:          []content.Page{page("3")},
				},
				{Pages: []content.Page{page("4")}},
			},
			Pages: []content.Page{page("5")},
		},
		{Pages: []content.Page{page("6")}},
	}}

	var paths []content.PagePath
	require.NoError(t, content.Walk(book, func(p content.PagePath, _ *content.Page) error {
		paths = append(paths, p)
		return nil
	}))

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, texts(content.Flatten(book)))
	assert.Equal(t, content.PagePath{Chapter: 0, SubChapter: 0, SubSubChapter: 0, Page: 1}, paths[1])
	assert.Equal(t, content.ChapterPage(1, 0), paths[5])
	assert.Equal(t, 6, book.PageCount())

	got, err := book.Locate(paths[2])
	require.NoError(t, err)
	assert.Equal(t, "3", got.Items[0].Text)
}

func TestWalkStopsOnSkipRest(t *testing.T) {
	book := &content.Book{Chapters: []content.Chapter{{Pages: []content.Page{{}, {}, {}}}}}
	n := 0
	err := content.Walk(book, func(content.PagePath, *content.Page) error {
		n++
		if n == 2 {
			return content.SkipRest
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLocateOutOfRange(t *testing.T) {
	book := &content.Book{Chapters: []content.Chapter{{Pages: []content.Page{{}}}}}

	_, err := book.Locate(content.ChapterPage(3, 0))
	assert.ErrorIs(t, err, content.ErrIndexOutOfRange)
	_, err = book.Locate(content.PagePath{Chapter: 0, SubChapter: 0, SubSubChapter: -1})
	assert.ErrorIs(t, err, content.ErrIndexOutOfRange)
}

func TestInsertItem(t *testing.T) {
	base := func() *content.Page {
		return &content.Page{Items: []content.Item{text("x"), text("y"), text("z")}}
	}

	p := base()
	_, err := content.InsertItem(p, 1, content.KindText, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "", "z"}, texts(p.Items))

	p = base()
	_, err = content.InsertItem(p, 1, content.KindText, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "", "y", "z"}, texts(p.Items))

	for _, after := range []bool{true, false} {
		empty := &content.Page{}
		it, err := content.InsertItem(empty, 7, content.KindText, after)
		require.NoError(t, err)
		assert.Equal(t, []content.Item{it}, empty.Items)
	}
}

func TestInsertItemRejectsBadInput(t *testing.T) {
	p := &content.Page{Items: []content.Item{text("x")}}

	_, err := content.InsertItem(p, 1, content.KindText, true)
	assert.ErrorIs(t, err, content.ErrIndexOutOfRange)
	_, err = content.InsertItem(p, -1, content.KindText, false)
	assert.ErrorIs(t, err, content.ErrIndexOutOfRange)
	_, err = content.InsertItem(p, 0, content.Kind("video"), true)
	assert.ErrorIs(t, err, content.ErrUnknownKind)
	assert.Equal(t, []string{"x"}, texts(p.Items))
}

func TestInsertAtBeginningAndMove(t *testing.T) {
	p := &content.Page{Items: []content.Item{text("a"), text("b"), text("c")}}

	_, err := content.InsertAtBeginning(p, content.KindHorizontalLine)
	require.NoError(t, err)
	assert.Equal(t, content.KindHorizontalLine, p.Items[0].Type)

	require.NoError(t, content.MoveItem(p, 0, 3))
	assert.Equal(t, []string{"a", "b", "c", ""}, texts(p.Items))

	require.NoError(t, content.MoveItem(p, 2, 0))
	assert.Equal(t, []string{"c", "a", "b", ""}, texts(p.Items))

	removed, err := content.DeleteItem(p, 1)
	require.NoError(t, err)
	assert.Equal(t, "a", removed.Text)
	assert.Equal(t, []string{"c", "b", ""}, texts(p.Items))

	require.NoError(t, content.UpdateItem(p, 2, text("d")))
	assert.Equal(t, []string{"c", "b", "d"}, texts(p.Items))

	assert.ErrorIs(t, content.MoveItem(p, 0, 5), content.ErrIndexOutOfRange)
	_, err = content.DeleteItem(p, 3)
	assert.ErrorIs(t, err, content.ErrIndexOutOfRange)
}

func TestTableDefaultsAreIdempotent(t *testing.T) {
	four := 4
	tbl := &content.Table{ColumnCount: &four}

	tbl.EnsureDefaults()
	require.NotNil(t, tbl.ItemsPerPage)
	assert.Equal(t, 5, *tbl.ItemsPerPage)
	assert.Equal(t, 4, *tbl.ColumnCount)

	tbl.EnsureDefaults()
	assert.Equal(t, 5, *tbl.ItemsPerPage)
	assert.Equal(t, 4, *tbl.ColumnCount)

	empty := &content.Table{}
	empty.EnsureDefaults()
	assert.Equal(t, 3, *empty.ColumnCount)
}

func TestTablePagination(t *testing.T) {
	two := 2
	tbl := &content.Table{ItemsPerPage: &two, Rows: [][]content.Cell{{{Text: "1"}}, {{Text: "2"}}, {{Text: "3"}}}}

	assert.Equal(t, 2, tbl.PageCount())
	assert.Len(t, tbl.RowsPage(1), 1)
	assert.Nil(t, tbl.RowsPage(2))
}

func TestRenderEveryKind(t *testing.T) {
	for _, k := range content.Kinds {
		it, err := content.Blank(k)
		require.NoError(t, err)
		out := content.RenderItem(it)
		assert.NotEmpty(t, out, k)
		assert.NotContains(t, out, "unsupported", k)
	}
}

func TestRenderUnknownKindShowsPlaceholder(t *testing.T) {
	out := content.RenderItem(content.Item{Type: "video"})
	assert.Contains(t, out, "Unsupported content type: video")
}

func TestRenderEscapesAndLinks(t *testing.T) {
	it := content.Item{Type: content.KindUnorderedList, Items: []content.ListEntry{
		{Text: "<b>"},
		{Spans: []content.Span{{Text: "see "}, {Text: "guide", Href: "https://example.org"}}},
		{Text: "parent", Sub: []content.ListEntry{{Text: "child"}}},
	}}
	out := content.RenderItem(it)
	assert.Contains(t, out, "&lt;b&gt;")
	assert.Contains(t, out, `<a href="https://example.org">guide</a>`)
	assert.Contains(t, out, "<li>parent<ul><li>child</li></ul></li>")
}

func TestJSONKeepsUnknownItems(t *testing.T) {
	raw := `{"title":"T","chapters":[{"title":"C","pages":[{"items":[` +
		`{"type":"text","text":"hi"},` +
		`{"type":"video","url":"v.mp4","items":{"weird":true}},` +
		`{"type":"ordered_list","items":["one",{"items":["nested"]}]}` +
		`]}]}]}`

	var book content.Book
	require.NoError(t, json.Unmarshal([]byte(raw), &book))

	items := book.Chapters[0].Pages[0].Items
	require.Len(t, items, 3)
	assert.Equal(t, content.Kind("video"), items[1].Type)
	assert.Equal(t, []content.ListEntry{{Text: "nested"}}, items[2].Items[1].Sub)

	out, err := json.Marshal(items[1])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"video","url":"v.mp4","items":{"weird":true}}`, string(out))

	out, err = json.Marshal(items[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ordered_list","items":["one",{"items":["nested"]}]}`, string(out))
}

func TestValidate(t *testing.T) {
	ok := &content.Book{Title: "T", Chapters: []content.Chapter{{Title: "C", Pages: []content.Page{{Items: []content.Item{
		{Type: content.KindQuiz, Quiz: &content.QuizRef{QuizID: "q1"}},
		{Type: "future"},
	}}}}}}
	assert.NoError(t, content.Validate(ok))

	bad := &content.Book{Title: "T", Chapters: []content.Chapter{{Title: "C", Pages: []content.Page{{Items: []content.Item{
		{Type: content.KindTable},
	}}}}}}
	assert.Error(t, content.Validate(bad))

	assert.Error(t, content.Validate(&content.Book{}))
}

func TestRenderBookEmitsSectionHeadings(t *testing.T) {
	book := &content.Book{
		Title: "Maternal health",
		Chapters: []content.Chapter{{
			Title: "Antenatal <care>",
			SubChapters: []content.SubChapter{{
				Title: "Visits",
				SubSubChapters: []content.SubSubChapter{{
					Title: "First visit",
					Pages: []content.Page{{Items: []content.Item{text("A")}}},
				}},
			}},
			Pages: []content.Page{{Items: []content.Item{text("B")}}},
		}},
	}

	html := content.RenderBook(book)

	chapter := strings.Index(html, `<h2 class="chapter-title">Antenatal &lt;care&gt;</h2>`)
	sub := strings.Index(html, `<h3 class="subchapter-title">Visits</h3>`)
	subsub := strings.Index(html, `<h4 class="subsubchapter-title">First visit</h4>`)
	require.NotEqual(t, -1, chapter)
	require.NotEqual(t, -1, sub)
	require.NotEqual(t, -1, subsub)
	assert.Less(t, chapter, sub)
	assert.Less(t, sub, subsub)
	assert.Less(t, subsub, strings.Index(html, "<p>A</p>"))
	assert.Less(t, strings.Index(html, "<p>A</p>"), strings.Index(html, "<p>B</p>"))
	assert.Equal(t, strings.Count(html, "<section"), strings.Count(html, "</section>"))
}

func TestPagePathDecodeDefaultsMissingLevels(t *testing.T) {
	var direct content.PagePath
	require.NoError(t, json.Unmarshal([]byte(`{"chapter":0,"page":1}`), &direct))
	assert.Equal(t, content.ChapterPage(0, 1), direct)

	var sub content.PagePath
	require.NoError(t, json.Unmarshal([]byte(`{"chapter":1,"subChapter":0,"page":2}`), &sub))
	assert.Equal(t, content.PagePath{Chapter: 1, SubChapter: 0, SubSubChapter: -1, Page: 2}, sub)

	var deep content.PagePath
	require.NoError(t, json.Unmarshal([]byte(`{"chapter":0,"subChapter":0,"subSubChapter":0,"page":0}`), &deep))
	assert.Equal(t, content.PagePath{}, deep)
}

func TestChapterPagePathLocatesDirectPage(t *testing.T) {
	book := &content.Book{Chapters: []content.Chapter{{
		Title: "One",
		SubChapters: []content.SubChapter{{
			Title:          "One.A",
			SubSubChapters: []content.SubSubChapter{{Title: "x", Pages: []content.Page{{Items: []content.Item{text("deep")}}}}},
		}},
		Pages: []content.Page{{Items: []content.Item{text("direct")}}},
	}}}

	var path content.PagePath
	require.NoError(t, json.Unmarshal([]byte(`{"chapter":0,"page":0}`), &path))
	page, err := book.Locate(path)
	require.NoError(t, err)
	assert.Equal(t, "direct", page.Items[0].Text)
}
