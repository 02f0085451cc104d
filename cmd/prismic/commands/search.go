package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// SearchOptions holds the flags of the search command.
type SearchOptions struct {
	Form      string
	Ref       string
	ID        string
	Type      string
	Tags      []string
	PageSize  int
	Page      int
	Orderings string
}

// Predicates returns the predicates selected by the options.
func (o SearchOptions) Predicates() []prismic.Predicate {
	var predicates []prismic.Predicate

	if o.ID != "" {
		predicates = append(predicates, prismic.At("document.id", o.ID))
	}

	if o.Type != "" {
		predicates = append(predicates, prismic.At("document.type", o.Type))
	}

	if len(o.Tags) > 0 {
		predicates = append(predicates, prismic.Any("document.tags", o.Tags...))
	}

	return predicates
}

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	opts := SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search documents",
		Long:  "Submit a repository form against a ref and list the matching documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAPI(cmd, func(ctx context.Context, api prismic.API) error {
				form, err := buildSearch(api, opts)
				if err != nil {
					return err
				}

				resp, err := form.Submit(ctx)
				if err != nil {
					return fmt.Errorf("failed to search documents: %w", err)
				}

				return renderSearchResponse(cmd, resp)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Form, "form", constants.EverythingForm, "form to submit")
	cmd.Flags().StringVar(&opts.Ref, "ref", "", "ref label or ref value to query (default master)")
	cmd.Flags().StringVar(&opts.ID, "id", "", "restrict to a document ID")
	cmd.Flags().StringVar(&opts.Type, "type", "", "restrict to a document type")
	cmd.Flags().StringSliceVar(&opts.Tags, "tags", nil, "restrict to documents with any of these tags")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "results per page")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "page to fetch")
	cmd.Flags().StringVar(&opts.Orderings, "orderings", "", "ordering clause, e.g. [my.article.date desc]")

	return cmd
}

// buildSearch prepares the form described by opts.
func buildSearch(api prismic.API, opts SearchOptions) (prismic.SearchForm, error) {
	form, err := api.Form(opts.Form)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", constants.ErrFormNotFound, opts.Form)
	}

	ref, err := resolveRef(api, opts.Ref)
	if err != nil {
		return nil, err
	}

	form = form.Ref(ref)

	if predicates := opts.Predicates(); len(predicates) > 0 {
		form = form.Query(predicates...)
	}

	if opts.PageSize > 0 {
		form = form.PageSize(opts.PageSize)
	}

	if opts.Page > 0 {
		form = form.Page(opts.Page)
	}

	if opts.Orderings != "" {
		form = form.Orderings(opts.Orderings)
	}

	return form, nil
}

// resolveRef maps a ref label to its value. An empty value selects master;
// a value that is not a label is used as-is.
func resolveRef(api prismic.API, value string) (string, error) {
	if value == "" {
		master, err := api.Master()
		if err != nil {
			return "", err
		}

		return master.Ref, nil
	}

	if ref, ok := api.Ref(value); ok {
		return ref.Ref, nil
	}

	for _, ref := range api.Data().Refs {
		if ref.Ref == value {
			return ref.Ref, nil
		}
	}

	return "", fmt.Errorf("%w: %s", constants.ErrRefNotFound, value)
}

func renderSearchResponse(cmd *cobra.Command, resp *prismic.SearchResponse) error {
	return renderOutput(cmd.OutOrStdout(), resp, []string{"ID", "Type", "UID", "Slug", "Tags"}, func(table *tablewriter.Table) error {
		for _, doc := range resp.Results {
			_ = table.Append([]string{doc.ID, doc.Type, orNotAvailable(doc.UID), doc.Slug(), strings.Join(doc.Tags, ", ")})
		}

		return nil
	})
}
