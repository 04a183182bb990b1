package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ConfabulousDev/chatstats/internal/analytics"
	"github.com/ConfabulousDev/chatstats/internal/config"
)

var views = []string{"all", "stats", "users", "monthly", "daily", "words", "emoji", "activity"}

func newAnalyzeCmd() *cobra.Command {
	var (
		scope      string
		view       string
		asJSON     bool
		configPath string
	)

	c := &cobra.Command{
		Use:   "analyze FILE",
		Short: "Print analytics for a JSONL message log",
		Long: `Reads a JSONL message log (use "-" for stdin) and prints one view or the
full report for the selected scope.

Views: ` + strings.Join(views, ", "),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			log, err := readLogFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			result, err := computeView(cmd.Context(), log, scope, view, cfg.Analytics.Options())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			return printView(out, result)
		},
	}

	c.Flags().StringVarP(&scope, "scope", "s", analytics.Overall, "sender to analyze, or Overall")
	c.Flags().StringVarP(&view, "view", "v", "all", "view to print: "+strings.Join(views, "|"))
	c.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of tables")
	c.Flags().StringVar(&configPath, "config", "", "path to a config file")
	return c
}

// readLogFile parses the log at path, or stdin when path is "-".
func readLogFile(stdin io.Reader, path string) (*analytics.MessageLog, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	log, err := analytics.ParseJSONL(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return log, nil
}

// computeView runs the analyzer behind view. "all" returns a *Report.
func computeView(ctx context.Context, log *analytics.MessageLog, scope, view string, opts analytics.Options) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	switch view {
	case "all":
		return analytics.ComputeReport(ctx, log, scope, opts)
	case "stats":
		return (&analytics.StatsAnalyzer{MediaPlaceholder: opts.MediaPlaceholder, Links: opts.Links}).Analyze(log, scope)
	case "users":
		return (&analytics.UsersAnalyzer{}).Analyze(log)
	case "monthly":
		return (&analytics.TimelineAnalyzer{}).Monthly(log, scope), nil
	case "daily":
		return (&analytics.TimelineAnalyzer{}).Daily(log, scope), nil
	case "words":
		return (&analytics.WordsAnalyzer{
			MediaPlaceholder:   opts.MediaPlaceholder,
			NotificationSender: opts.NotificationSender,
			TopN:               opts.TopWords,
		}).TopWords(log, scope, opts.TopWords), nil
	case "emoji":
		return (&analytics.EmojiAnalyzer{Set: opts.Emoji, TopN: opts.TopEmojis}).Analyze(log, scope)
	case "activity":
		return (&analytics.ActivityAnalyzer{}).Analyze(log, scope)
	}
	return nil, fmt.Errorf("unknown view %q (want one of %s)", view, strings.Join(views, ", "))
}

// printView renders a view result as aligned text tables.
func printView(out io.Writer, result any) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch v := result.(type) {
	case *analytics.Report:
		fmt.Fprintf(tw, "=== Scope: %s ===\n\n", v.Scope)
		if v.Stats != nil {
			printStats(tw, v.Stats)
		}
		if v.Users != nil {
			printUsers(tw, v.Users)
		}
		if v.Timeline != nil {
			printMonthly(tw, v.Timeline.Monthly)
			printDaily(tw, v.Timeline.Daily)
		}
		if v.Words != nil {
			printWords(tw, v.Words.TopWords)
		}
		printEmoji(tw, v.Emoji)
		if v.Activity != nil {
			printActivity(tw, v.Activity)
		}
		for _, card := range slices.Sorted(maps.Keys(v.CardErrors)) {
			fmt.Fprintf(tw, "%s unavailable: %s\n", card, v.CardErrors[card])
		}
	case *analytics.StatsResult:
		printStats(tw, v)
	case *analytics.UsersResult:
		printUsers(tw, v)
	case []analytics.MonthlyPoint:
		printMonthly(tw, v)
	case []analytics.DailyPoint:
		printDaily(tw, v)
	case []analytics.WordCount:
		printWords(tw, v)
	case []analytics.EmojiCount:
		printEmoji(tw, v)
	case *analytics.ActivityResult:
		printActivity(tw, v)
	default:
		return fmt.Errorf("cannot print %T", result)
	}
	return tw.Flush()
}

func printStats(w io.Writer, s *analytics.StatsResult) {
	fmt.Fprintln(w, "Messages\tWords\tMedia\tLinks")
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n\n",
		humanize.Comma(int64(s.Messages)), humanize.Comma(int64(s.Words)),
		humanize.Comma(int64(s.Media)), humanize.Comma(int64(s.Links)))
}

func printUsers(w io.Writer, u *analytics.UsersResult) {
	fmt.Fprintln(w, "Sender\tMessages")
	for _, s := range u.Leaderboard {
		fmt.Fprintf(w, "%s\t%s\n", s.Sender, humanize.Comma(int64(s.Messages)))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sender\tPercent")
	for _, s := range u.Contributions {
		fmt.Fprintf(w, "%s\t%s%%\n", s.Sender, s.Percent.StringFixed(2))
	}
	fmt.Fprintln(w)
}

func printMonthly(w io.Writer, points []analytics.MonthlyPoint) {
	fmt.Fprintln(w, "Month\tMessages")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\n", p.Label, humanize.Comma(int64(p.Messages)))
	}
	fmt.Fprintln(w)
}

func printDaily(w io.Writer, points []analytics.DailyPoint) {
	fmt.Fprintln(w, "Date\tMessages")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%s\n", p.Date, humanize.Comma(int64(p.Messages)))
	}
	fmt.Fprintln(w)
}

func printWords(w io.Writer, words []analytics.WordCount) {
	fmt.Fprintln(w, "Word\tCount")
	for _, wc := range words {
		fmt.Fprintf(w, "%s\t%s\n", wc.Word, humanize.Comma(int64(wc.Count)))
	}
	fmt.Fprintln(w)
}

func printEmoji(w io.Writer, emoji []analytics.EmojiCount) {
	if len(emoji) == 0 {
		fmt.Fprint(w, "No emojis detected.\n\n")
		return
	}
	fmt.Fprintln(w, "Emoji\tCount")
	for _, e := range emoji {
		fmt.Fprintf(w, "%s\t%s\n", e.Emoji, humanize.Comma(int64(e.Count)))
	}
	fmt.Fprintln(w)
}

func printActivity(w io.Writer, a *analytics.ActivityResult) {
	fmt.Fprintln(w, "Day\tMessages")
	for _, d := range a.BusyDays {
		fmt.Fprintf(w, "%s\t%s\n", d.Day, countOrDash(d.Messages))
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Month\tMessages")
	for _, m := range a.BusyMonths {
		fmt.Fprintf(w, "%s\t%s\n", m.Month, countOrDash(m.Messages))
	}
	fmt.Fprintln(w)
}

func countOrDash(n *int) string {
	if n == nil {
		return "-"
	}
	return humanize.Comma(int64(*n))
}
