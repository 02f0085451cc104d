package commands

import (
	"context"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/prismic-go/internal/constants"
	"github.com/fivetwenty-io/prismic-go/pkg/prismic"
)

// NewAPICommand creates the api command
func NewAPICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "api",
		Short: "Display repository API summary",
		Long:  "Fetch the repository root document and summarize its refs, forms and OAuth endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAPI(cmd, func(_ context.Context, api prismic.API) error {
				return renderOutput(cmd.OutOrStdout(), api.Data(), []string{"Property", "Value"}, func(table *tablewriter.Table) error {
					master := constants.NotAvailable
					if ref, err := api.Master(); err == nil {
						master = ref.Ref
					}

					experiment := constants.NotAvailable
					if current := api.Experiment(); current != nil {
						experiment = current.Name
					}

					_ = table.Append([]string{"Master Ref", master})
					_ = table.Append([]string{"Refs", strconv.Itoa(len(api.Refs()))})
					_ = table.Append([]string{"Forms", strings.Join(sortedKeys(api.Forms()), ", ")})
					_ = table.Append([]string{"Types", strconv.Itoa(len(api.Types()))})
					_ = table.Append([]string{"Bookmarks", strconv.Itoa(len(api.Bookmarks()))})
					_ = table.Append([]string{"Tags", strings.Join(api.Tags(), ", ")})
					_ = table.Append([]string{"OAuth Initiate", api.OAuthInitiateEndpoint()})
					_ = table.Append([]string{"OAuth Token", api.OAuthTokenEndpoint()})
					_ = table.Append([]string{"Running Experiment", experiment})

					return nil
				})
			})
		},
	}
}

// NewRefsCommand creates the refs command
func NewRefsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refs",
		Short: "List repository refs",
		Long:  "List the refs of the repository, keyed by label",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAPI(cmd, func(_ context.Context, api prismic.API) error {
				refs := api.Refs()

				return renderOutput(cmd.OutOrStdout(), refs, []string{"Label", "Ref", "ID", "Master", "Scheduled At"}, func(table *tablewriter.Table) error {
					for _, label := range sortedKeys(refs) {
						ref := refs[label]

						scheduledAt := constants.NotAvailable
						if ref.ScheduledAt != nil {
							scheduledAt = ref.ScheduledAt.Format("2006-01-02 15:04:05")
						}

						_ = table.Append([]string{label, ref.Ref, ref.ID, checkMark(ref.IsMasterRef), scheduledAt})
					}

					return nil
				})
			})
		},
	}
}

// NewFormsCommand creates the forms command
func NewFormsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List repository forms",
		Long:  "List the search forms of the repository with their methods, actions and fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAPI(cmd, func(_ context.Context, api prismic.API) error {
				forms := api.Data().Forms

				return renderOutput(cmd.OutOrStdout(), forms, []string{"Form", "Name", "Method", "Action", "Fields"}, func(table *tablewriter.Table) error {
					for _, key := range sortedKeys(forms) {
						form := forms[key]
						_ = table.Append([]string{
							key,
							orNotAvailable(form.Name),
							form.Method,
							form.Action,
							strings.Join(sortedKeys(form.Fields), ", "),
						})
					}

					return nil
				})
			})
		},
	}
}

// NewBookmarksCommand creates the bookmarks command
func NewBookmarksCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "bookmarks",
		Short: "List repository bookmarks",
		Long:  "List the bookmark names of the repository and the documents they point to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAPI(cmd, func(_ context.Context, api prismic.API) error {
				bookmarks := api.Bookmarks()

				return renderOutput(cmd.OutOrStdout(), bookmarks, []string{"Bookmark", "Document ID"}, func(table *tablewriter.Table) error {
					for _, name := range sortedKeys(bookmarks) {
						_ = table.Append([]string{name, bookmarks[name]})
					}

					return nil
				})
			})
		},
	}
}

// NewExperimentsCommand creates the experiments command
func NewExperimentsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "experiments",
		Short: "List A/B experiments",
		Long:  "List the draft and running experiments of the repository with their variations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAPI(cmd, func(_ context.Context, api prismic.API) error {
				experiments := api.Experiments()

				return renderOutput(cmd.OutOrStdout(), experiments, []string{"Status", "ID", "Name", "Google ID", "Variations"}, func(table *tablewriter.Table) error {
					appendExperiments(table, "running", experiments.Running)
					appendExperiments(table, "draft", experiments.Draft)

					return nil
				})
			})
		},
	}
}

func appendExperiments(table *tablewriter.Table, status string, experiments []prismic.Experiment) {
	for _, experiment := range experiments {
		labels := make([]string, 0, len(experiment.Variations))
		for _, variation := range experiment.Variations {
			labels = append(labels, variation.Label)
		}

		_ = table.Append([]string{
			status,
			experiment.ID,
			experiment.Name,
			orNotAvailable(experiment.GoogleID),
			strings.Join(labels, ", "),
		})
	}
}

// withAPI bootstraps the configured API, runs fn and releases it.
func withAPI(cmd *cobra.Command, fn func(ctx context.Context, api prismic.API) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	api, release, err := createAPI(ctx)
	if err != nil {
		return err
	}
	defer release()

	return fn(ctx, api)
}
