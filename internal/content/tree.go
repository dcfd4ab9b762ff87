package content

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when an index does not address an existing element.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrUnknownKind is returned when asked to build an item of an unsupported type.
	ErrUnknownKind = errors.New("unknown content type")
)

// Book is the root of the content tree.
type Book struct {
	Title    string    `json:"title" validate:"required"`
	Chapters []Chapter `json:"chapters" validate:"dive"`
}

// Chapter may hold subchapters and pages side by side.
type Chapter struct {
	Title       string       `json:"title" validate:"required"`
	SubChapters []SubChapter `json:"subChapters,omitempty" validate:"dive"`
	Pages       []Page       `json:"pages,omitempty" validate:"dive"`
}

type SubChapter struct {
	Title          string          `json:"title" validate:"required"`
	SubSubChapters []SubSubChapter `json:"subSubChapters,omitempty" validate:"dive"`
	Pages          []Page          `json:"pages,omitempty" validate:"dive"`
}

type SubSubChapter struct {
	Title string `json:"title" validate:"required"`
	Pages []Page `json:"pages,omitempty" validate:"dive"`
}

// Page is an ordered run of content items.
type Page struct {
	Title string `json:"title,omitempty"`
	Items []Item `json:"items" validate:"dive"`
}

// PagePath addresses a page inside a book. SubChapter and SubSubChapter are
// -1 when the page hangs off a higher level directly.
type PagePath struct {
	Chapter       int `json:"chapter" query:"chapter"`
	SubChapter    int `json:"subChapter" query:"subChapter"`
	SubSubChapter int `json:"subSubChapter" query:"subSubChapter"`
	Page          int `json:"page" query:"page"`
}

// UnmarshalJSON treats absent subChapter and subSubChapter as -1 so that
// {"chapter":0,"page":0} addresses a page directly under chapter 0.
func (p *PagePath) UnmarshalJSON(data []byte) error {
	type plain PagePath
	v := plain{SubChapter: -1, SubSubChapter: -1}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PagePath(v)
	return nil
}

// ChapterPage addresses a page directly under a chapter.
func ChapterPage(chapter, page int) PagePath {
	return PagePath{Chapter: chapter, SubChapter: -1, SubSubChapter: -1, Page: page}
}

func (p PagePath) String() string {
	return fmt.Sprintf("%d/%d/%d/%d", p.Chapter, p.SubChapter, p.SubSubChapter, p.Page)
}

func pageAt(pages []Page, i int) (*Page, error) {
	if i < 0 || i >= len(pages) {
		return nil, fmt.Errorf("page %d: %w", i, ErrIndexOutOfRange)
	}
	return &pages[i], nil
}

// Locate returns the page at path. The returned pointer aliases the book.
func (b *Book) Locate(path PagePath) (*Page, error) {
	if path.Chapter < 0 || path.Chapter >= len(b.Chapters) {
		return nil, fmt.Errorf("chapter %d: %w", path.Chapter, ErrIndexOutOfRange)
	}
	ch := &b.Chapters[path.Chapter]
	if path.SubChapter < 0 {
		return pageAt(ch.Pages, path.Page)
	}
	if path.SubChapter >= len(ch.SubChapters) {
		return nil, fmt.Errorf("subchapter %d: %w", path.SubChapter, ErrIndexOutOfRange)
	}
	sub := &ch.SubChapters[path.SubChapter]
	if path.SubSubChapter < 0 {
		return pageAt(sub.Pages, path.Page)
	}
	if path.SubSubChapter >= len(sub.SubSubChapters) {
		return nil, fmt.Errorf("sub-subchapter %d: %w", path.SubSubChapter, ErrIndexOutOfRange)
	}
	return pageAt(sub.SubSubChapters[path.SubSubChapter].Pages, path.Page)
}

// EnsureDefaults fills presentation defaults on every table in the book.
func (b *Book) EnsureDefaults() {
	_ = Walk(b, func(_ PagePath, p *Page) error {
		for i := range p.Items {
			if p.Items[i].Type == KindTable && p.Items[i].Table != nil {
				p.Items[i].Table.EnsureDefaults()
			}
		}
		return nil
	})
}

// PageCount counts every page in the book.
func (b *Book) PageCount() int {
	n := 0
	_ = Walk(b, func(PagePath, *Page) error {
		n++
		return nil
	})
	return n
}
