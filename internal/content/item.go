package content

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind tags the variant of an Item.
type Kind string

const (
	KindText           Kind = "text"
	KindHeading1       Kind = "heading1"
	KindHeading2       Kind = "heading2"
	KindHeading3       Kind = "heading3"
	KindSpace          Kind = "space"
	KindImage          Kind = "image"
	KindHorizontalLine Kind = "horizontal_line"
	KindOrderedList    Kind = "ordered_list"
	KindUnorderedList  Kind = "unordered_list"
	KindQuiz           Kind = "quiz"
	KindTable          Kind = "table"
)

// Kinds lists every variant this package understands, in editor menu order.
var Kinds = []Kind{
	KindText, KindHeading1, KindHeading2, KindHeading3, KindSpace, KindImage,
	KindHorizontalLine, KindOrderedList, KindUnorderedList, KindQuiz, KindTable,
}

// Known reports whether k is a supported variant.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Item is one typed unit of page content. Only the fields belonging to Type
// are meaningful. Items of an unknown type keep their original JSON so they
// survive a load/save round trip untouched.
type Item struct {
	Type  Kind        `json:"type" validate:"required"`
	Text  string      `json:"text,omitempty"`
	Src   string      `json:"src,omitempty"`
	Alt   string      `json:"alt,omitempty"`
	Items []ListEntry `json:"items,omitempty" validate:"dive"`
	Quiz  *QuizRef    `json:"quiz,omitempty"`
	Table *Table      `json:"table,omitempty"`

	raw json.RawMessage
}

// QuizRef points at a quiz managed by the quiz module.
type QuizRef struct {
	QuizID string `json:"quizId"`
	Title  string `json:"title,omitempty"`
}

// Span is a piece of rich text inside an unordered list entry, optionally linked.
type Span struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// ListEntry is either plain text, a run of linkable spans, or a nested list.
// On the wire plain text is a bare JSON string.
type ListEntry struct {
	Text  string
	Spans []Span
	Sub   []ListEntry
}

type listEntryObject struct {
	Text  string      `json:"text,omitempty"`
	Spans []Span      `json:"spans,omitempty"`
	Items []ListEntry `json:"items,omitempty"`
}

func (e ListEntry) MarshalJSON() ([]byte, error) {
	if len(e.Spans) == 0 && e.Sub == nil {
		return json.Marshal(e.Text)
	}
	return json.Marshal(listEntryObject{Text: e.Text, Spans: e.Spans, Items: e.Sub})
}

func (e *ListEntry) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ListEntry{Text: s}
		return nil
	}
	var obj listEntryObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("list entry: %w", err)
	}
	*e = ListEntry{Text: obj.Text, Spans: obj.Spans, Sub: obj.Items}
	return nil
}

type itemAlias Item

func (it Item) MarshalJSON() ([]byte, error) {
	if !it.Type.Known() && len(it.raw) > 0 {
		return it.raw, nil
	}
	return json.Marshal(itemAlias(it))
}

func (it *Item) UnmarshalJSON(data []byte) error {
	var alias itemAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		// Unknown variants may carry fields shaped unlike ours; keep just the tag.
		var head struct {
			Type Kind `json:"type"`
		}
		if herr := json.Unmarshal(data, &head); herr != nil || head.Type.Known() {
			return fmt.Errorf("content item: %w", err)
		}
		alias = itemAlias{Type: head.Type}
	}
	*it = Item(alias)
	if !it.Type.Known() {
		it.raw = append(json.RawMessage(nil), data...)
	}
	return nil
}

// Blank returns an empty item of kind k, ready to be filled in by an editor.
func Blank(k Kind) (Item, error) {
	switch k {
	case KindText, KindHeading1, KindHeading2, KindHeading3, KindSpace, KindHorizontalLine, KindImage:
		return Item{Type: k}, nil
	case KindOrderedList, KindUnorderedList:
		return Item{Type: k, Items: []ListEntry{{}}}, nil
	case KindQuiz:
		return Item{Type: k, Quiz: &QuizRef{}}, nil
	case KindTable:
		t := &Table{
			Header: [][]Cell{make([]Cell, DefaultColumnCount)},
			Rows:   [][]Cell{},
		}
		t.EnsureDefaults()
		return Item{Type: k, Table: t}, nil
	default:
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
}
