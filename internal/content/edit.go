package content

import "fmt"

func checkIndex(p *Page, i int) error {
	if i < 0 || i >= len(p.Items) {
		return fmt.Errorf("item %d of %d: %w", i, len(p.Items), ErrIndexOutOfRange)
	}
	return nil
}

// InsertItem splices a blank item of kind next to the item at ref, after it
// when after is true and before it otherwise. On an empty page the new item
// becomes the only element and ref is ignored. An out-of-range ref on a
// non-empty page is rejected and the page is left untouched.
func InsertItem(p *Page, ref int, kind Kind, after bool) (Item, error) {
	it, err := Blank(kind)
	if err != nil {
		return Item{}, err
	}
	if len(p.Items) == 0 {
		p.Items = []Item{it}
		return it, nil
	}
	if err := checkIndex(p, ref); err != nil {
		return Item{}, err
	}
	at := ref
	if after {
		at = ref + 1
	}
	p.Items = splice(p.Items, at, it)
	return it, nil
}

// InsertAtBeginning puts a blank item of kind in front of every other item.
func InsertAtBeginning(p *Page, kind Kind) (Item, error) {
	it, err := Blank(kind)
	if err != nil {
		return Item{}, err
	}
	p.Items = splice(p.Items, 0, it)
	return it, nil
}

func splice(items []Item, at int, it Item) []Item {
	out := make([]Item, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, it)
	return append(out, items[at:]...)
}

// UpdateItem replaces the item at i.
func UpdateItem(p *Page, i int, it Item) error {
	if err := checkIndex(p, i); err != nil {
		return err
	}
	if it.Type == KindTable && it.Table != nil {
		it.Table.EnsureDefaults()
	}
	p.Items[i] = it
	return nil
}

// DeleteItem removes the item at i and returns it.
func DeleteItem(p *Page, i int) (Item, error) {
	if err := checkIndex(p, i); err != nil {
		return Item{}, err
	}
	removed := p.Items[i]
	out := make([]Item, 0, len(p.Items)-1)
	out = append(out, p.Items[:i]...)
	p.Items = append(out, p.Items[i+1:]...)
	return removed, nil
}

// MoveItem moves the item at from so that it ends up at index to.
func MoveItem(p *Page, from, to int) error {
	if err := checkIndex(p, from); err != nil {
		return err
	}
	if err := checkIndex(p, to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	it := p.Items[from]
	if from < to {
		copy(p.Items[from:to], p.Items[from+1:to+1])
	} else {
		copy(p.Items[to+1:from+1], p.Items[to:from])
	}
	p.Items[to] = it
	return nil
}
