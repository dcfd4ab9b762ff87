package content

import (
	"reflect"
	"strings"
	"sync"

	playgroundvalidator "github.com/go-playground/validator/v10"
)

var (
	validate     *playgroundvalidator.Validate
	validateOnce sync.Once
)

func validator() *playgroundvalidator.Validate {
	validateOnce.Do(func() {
		v := playgroundvalidator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(validateItem, Item{})
		validate = v
	})
	return validate
}

// Known types must carry the payload their renderer reads. Blank fields are
// allowed since editors save half-filled items.
func validateItem(sl playgroundvalidator.StructLevel) {
	it := sl.Current().Interface().(Item)
	switch it.Type {
	case KindQuiz:
		if it.Quiz == nil {
			sl.ReportError(it.Quiz, "quiz", "Quiz", "required", "")
		}
	case KindTable:
		if it.Table == nil {
			sl.ReportError(it.Table, "table", "Table", "required", "")
		}
	}
}

// Validate checks a book before it is persisted. Items of unknown type pass
// through unchecked.
func Validate(b *Book) error {
	return validator().Struct(b)
}
