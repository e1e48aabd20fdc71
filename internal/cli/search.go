package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Maxsatbek/my-home/internal/search"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Tag      string
	ListTags bool
}

// SearchResult is the search output.
type SearchResult struct {
	Query   string          `json:"query,omitempty"`
	Tag     string          `json:"tag,omitempty"`
	Results []search.Result `json:"results"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search sections, topics, notes and questions",
		Long: `Search is case-insensitive and matches section titles, topic titles,
topic notes and question text. Note hits show the surrounding text.

With --tag, list the topics carrying a tag instead. With --tags, list
every tag in use.

Examples:
  pkb search goroutine
  pkb search --tag concurrency
  pkb search --tags`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.report(cmd, runSearch(opts, cmd, args))
		},
	}

	cmd.Flags().StringVar(&opts.Tag, "tag", "", "list topics with this tag")
	cmd.Flags().BoolVar(&opts.ListTags, "tags", false, "list all tags")
	cmd.MarkFlagsMutuallyExclusive("tag", "tags")

	return cmd
}

func runSearch(opts *SearchOptions, cmd *cobra.Command, args []string) error {
	modes := len(args)
	if opts.Tag != "" {
		modes++
	}
	if opts.ListTags {
		modes++
	}
	if modes != 1 {
		return NewExitError(ExitCommandError, "give exactly one of a query, --tag or --tags")
	}

	formatter := opts.formatter(cmd)
	return opts.withWorkspace(false, func(_ context.Context, ws *workspace) error {
		if opts.ListTags {
			tags := search.Tags(ws.db)
			if tags == nil {
				tags = []string{}
			}
			if formatter.IsJSON() {
				return formatter.Success(map[string][]string{"tags": tags})
			}
			for _, tag := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), tag)
			}
			return nil
		}

		var result SearchResult
		if opts.Tag != "" {
			result = SearchResult{Tag: opts.Tag, Results: search.ByTag(ws.db, opts.Tag)}
		} else {
			result = SearchResult{Query: args[0], Results: search.Search(ws.db, args[0])}
		}
		if result.Results == nil {
			result.Results = []search.Result{}
		}
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		return outputSearchText(cmd.OutOrStdout(), result)
	})
}

func outputSearchText(w io.Writer, result SearchResult) error {
	if len(result.Results) == 0 {
		fmt.Fprintln(w, "No matches")
		return nil
	}
	for _, r := range result.Results {
		ids := []string{r.SectionID}
		if r.TopicID != "" {
			ids = append(ids, r.TopicID)
		}
		if r.QuestionID != "" {
			ids = append(ids, r.QuestionID)
		}
		fmt.Fprintf(w, "%-8s %s  (%s)\n", r.Kind, r.Title, strings.Join(ids, "/"))
		if r.Context != "" {
			fmt.Fprintf(w, "         %s\n", r.Context)
		}
	}
	return nil
}
