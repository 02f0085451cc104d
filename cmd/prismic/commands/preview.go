package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// PathResolver links a document to /<type>/<id>.
func PathResolver(doc *prismic.Document) (string, error) {
	return fmt.Sprintf("/%s/%s", doc.Type, doc.ID), nil
}

// NewPreviewCommand creates the preview command
func NewPreviewCommand() *cobra.Command {
	var defaultURL string

	cmd := &cobra.Command{
		Use:   "preview TOKEN",
		Short: "Resolve a preview token",
		Long:  "Resolve a preview token to the path of its main document, falling back to a default URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAPI(cmd, func(ctx context.Context, api prismic.API) error {
				target := api.PreviewSession(ctx, args[0], PathResolver, defaultURL)

				_, err := fmt.Fprintln(cmd.OutOrStdout(), target)

				return err
			})
		},
	}

	cmd.Flags().StringVar(&defaultURL, "default-url", "/", "URL returned when the token cannot be resolved")

	return cmd
}
