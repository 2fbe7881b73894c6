// Package cmd implements the command-line interface for reelnotes.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/reelnotes/reelnotes/feed"
	"github.com/reelnotes/reelnotes/filesystem"
	"github.com/reelnotes/reelnotes/query"
	"github.com/reelnotes/reelnotes/util"
	"github.com/reelnotes/reelnotes/videosvc"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// Output is the structured result of an inline invocation.
type Output struct {
	Query string       `json:"query,omitempty"`
	Notes []OutputNote `json:"notes"`
}

// OutputNote is a feed note, optionally enriched with a resolved playback URL.
type OutputNote struct {
	videosvc.Note
	PlaybackURL *videosvc.PlaybackURL `json:"playback_url,omitempty"`
}

func init() {
	rootCmd.AddCommand(inlineCmd)

	inlineCmd.Flags().StringP("query", "q", "", "The search query used to filter the feed")
	inlineCmd.Flags().StringP("note", "n", "", "Criteria for selecting a specific note from the results")
	inlineCmd.Flags().BoolP("json", "j", false, "Format the command output as a JSON object")
	inlineCmd.Flags().BoolP("include-playback-url", "u", false, "Resolve and include playback URLs for selected notes")
	inlineCmd.Flags().StringP("output", "o", "", "Specify a file path to write the command output")

	lo.Must0(inlineCmd.RegisterFlagCompletionFunc("query", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return query.SuggestMany(toComplete), cobra.ShellCompDirectiveNoFileComp
	}))
}

// parseNotePicker resolves a note selector into an index within the result set.
func parseNotePicker(selector string, count int) (int, error) {
	switch selector {
	case "first":
		return 0, nil
	case "last":
		return count - 1, nil
	default:
		idx, err := strconv.Atoi(selector)
		if err != nil {
			return 0, fmt.Errorf("invalid note selector: %s", selector)
		}

		if idx < 0 || idx >= count {
			return 0, fmt.Errorf("note index %d out of range (%d notes)", idx, count)
		}

		return idx, nil
	}
}

// inlineCmd executes the application in non-interactive, scriptable inline mode.
var inlineCmd = &cobra.Command{
	Use:   "inline",
	Short: "Execute the application in non-interactive, scriptable inline mode",
	Long: `Query the video-notes feed for automated execution and data extraction.

Note selectors:
  first - first note in the results
  last - last note in the results
  [number] - select note by index (starting from 0)

When the note selector is omitted, all matching notes are returned.`,
	Example: "  reelnotes inline -q 'sourdough' -j\n  reelnotes inline -q 'knife skills' -n first -u",
	Run: func(cmd *cobra.Command, args []string) {
		var (
			ctx     = context.Background()
			service = videosvc.New()
		)

		notes, err := service.Feed(ctx)
		handleErr(err)

		searchQuery := lo.Must(cmd.Flags().GetString("query"))
		if searchQuery != "" {
			go query.Remember(searchQuery, 1)
			notes = feed.Search(notes, searchQuery)
		}

		if selector := lo.Must(cmd.Flags().GetString("note")); selector != "" {
			if len(notes) == 0 {
				handleErr(fmt.Errorf("no notes matched %q", searchQuery))
			}

			idx, err := parseNotePicker(selector, len(notes))
			handleErr(err)
			notes = notes[idx : idx+1]
		}

		out := Output{Query: searchQuery}
		includeURL := lo.Must(cmd.Flags().GetBool("include-playback-url"))
		for _, n := range notes {
			entry := OutputNote{Note: n}

			if includeURL {
				url, err := service.GetPlaybackURL(ctx, n.Ref())
				handleErr(err)
				entry.PlaybackURL = &url
			}

			out.Notes = append(out.Notes, entry)
		}

		var writer io.Writer = os.Stdout
		if output := lo.Must(cmd.Flags().GetString("output")); output != "" {
			f, err := filesystem.API().Create(output)
			handleErr(err)
			defer util.Ignore(f.Close)
			writer = f
		}

		if lo.Must(cmd.Flags().GetBool("json")) {
			handleErr(json.NewEncoder(writer).Encode(out))
			return
		}

		for _, entry := range out.Notes {
			line := entry.Title
			if entry.PlaybackURL != nil {
				line += "\t" + entry.PlaybackURL.URL
			}
			_, _ = fmt.Fprintln(writer, line)
		}
	},
}

func init() {
	inlineCmd.AddCommand(inlineSchemaCmd)
}

// inlineSchemaCmd generates JSON schemas for structured inline mode outputs.
var inlineSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for structured inline mode outputs",
	Run: func(cmd *cobra.Command, args []string) {
		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "note", "playbackurl", "output", "outputnote":
				return "reelnotes." + name
			}

			return name
		}

		schema := reflector.Reflect(&Output{})
		handleErr(json.NewEncoder(os.Stdout).Encode(schema))
	},
}
