package content

import "errors"

// SkipRest stops a Walk early without reporting an error.
var SkipRest = errors.New("skip rest of book")

// WalkFunc is called for every page in render order.
type WalkFunc func(path PagePath, page *Page) error

// Walk visits the pages of b depth first. Within a chapter the subchapters
// come first, each fully expanded, followed by the chapter's own pages; a
// subchapter likewise yields its sub-subchapters before its own pages.
func Walk(b *Book, fn WalkFunc) error {
	if b == nil {
		return nil
	}
	err := walkBook(b, fn)
	if errors.Is(err, SkipRest) {
		return nil
	}
	return err
}

func walkBook(b *Book, fn WalkFunc) error {
	for ci := range b.Chapters {
		ch := &b.Chapters[ci]
		for si := range ch.SubChapters {
			sub := &ch.SubChapters[si]
			for ssi := range sub.SubSubChapters {
				ss := &sub.SubSubChapters[ssi]
				if err := walkPages(ss.Pages, PagePath{Chapter: ci, SubChapter: si, SubSubChapter: ssi}, fn); err != nil {
					return err
				}
			}
			if err := walkPages(sub.Pages, PagePath{Chapter: ci, SubChapter: si, SubSubChapter: -1}, fn); err != nil {
				return err
			}
		}
		if err := walkPages(ch.Pages, PagePath{Chapter: ci, SubChapter: -1, SubSubChapter: -1}, fn); err != nil {
			return err
		}
	}
	return nil
}

func walkPages(pages []Page, base PagePath, fn WalkFunc) error {
	for pi := range pages {
		path := base
		path.Page = pi
		if err := fn(path, &pages[pi]); err != nil {
			return err
		}
	}
	return nil
}

// Flatten returns every item of the book in render order.
func Flatten(b *Book) []Item {
	var out []Item
	_ = Walk(b, func(_ PagePath, p *Page) error {
		out = append(out, p.Items...)
		return nil
	})
	return out
}
