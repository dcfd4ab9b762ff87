// Command render turns a book's content tree, as exported from the API, into
// standalone HTML.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"chwadmin/internal/content"
	"chwadmin/internal/utils/logger"
)

var log = logger.New("render")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "render",
		Short:         "Render and check e-book content trees",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newHTMLCmd(), newCheckCmd())
	return root
}

func newHTMLCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "html <book.json>",
		Short: "Render a book to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := load(args[0])
			if err != nil {
				return log.Error("Failed to load %s", err, args[0])
			}
			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return log.Error("Failed to create %s", err, out)
				}
				defer f.Close()
				w = f
			}
			if err := writeHTML(w, book); err != nil {
				return log.Error("Failed to write HTML", err)
			}
			if out != "" {
				log.Success("Rendered %q (%d pages) to %s", book.Title, book.PageCount(), out)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <book.json>",
		Short: "Validate a book and list items of unsupported type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := load(args[0])
			if err != nil {
				return log.Error("Failed to load %s", err, args[0])
			}
			return check(cmd.OutOrStdout(), book)
		},
	}
}

func load(path string) (*content.Book, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var book content.Book
	if err := json.Unmarshal(raw, &book); err != nil {
		return nil, fmt.Errorf("parse book: %w", err)
	}
	book.EnsureDefaults()
	return &book, nil
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body>
%s
</body>
</html>
`

func writeHTML(w io.Writer, book *content.Book) error {
	_, err := fmt.Fprintf(w, pageTemplate, content.RenderBook(book))
	return err
}

// check reports validation errors and the pages holding unknown items.
func check(w io.Writer, book *content.Book) error {
	if err := content.Validate(book); err != nil {
		return fmt.Errorf("invalid book: %w", err)
	}
	var unknown int
	err := content.Walk(book, func(path content.PagePath, page *content.Page) error {
		for i, it := range page.Items {
			if !it.Type.Known() {
				unknown++
				fmt.Fprintf(w, "%s item %d: unsupported type %q\n", path, i, it.Type)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%d pages, %d unsupported items\n", book.PageCount(), unknown)
	return nil
}
