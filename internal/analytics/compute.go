package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("chatstats/analytics")

// Card names used as keys in Report.CardErrors.
const (
	CardStats    = "stats"
	CardUsers    = "users"
	CardTimeline = "timeline"
	CardWords    = "words"
	CardEmoji    = "emoji"
	CardActivity = "activity"
)

// Report aggregates every view for one scope.
type Report struct {
	ComputedAt   time.Time `json:"computed_at"`
	Scope        string    `json:"scope"`
	MessageCount int       `json:"message_count"`

	Stats      *StatsResult    `json:"stats,omitempty"`
	Users      *UsersResult    `json:"users,omitempty"` // only for the Overall scope
	Timeline   *TimelineResult `json:"timeline,omitempty"`
	Words      *WordsResult    `json:"words,omitempty"`
	Emoji      []EmojiCount    `json:"emoji"`
	EmojiShare []EmojiSlice    `json:"emoji_share"`
	Activity   *ActivityResult `json:"activity,omitempty"`

	// CardErrors maps card name to error message for cards that could not be
	// computed. The rest of the report is still usable.
	CardErrors map[string]string `json:"card_errors,omitempty"`
}

// ComputeReport runs every analyzer for scope concurrently.
// A failing card is recorded in CardErrors; only context cancellation fails
// the whole report.
func ComputeReport(ctx context.Context, log *MessageLog, scope string, opts Options) (*Report, error) {
	ctx, span := tracer.Start(ctx, "analytics.compute_report",
		trace.WithAttributes(
			attribute.String("scope", scope),
			attribute.Int("log.records", log.Len()),
		))
	defer span.End()

	opts = opts.withDefaults()
	report := &Report{
		ComputedAt: time.Now().UTC(),
		Scope:      scope,
		Emoji:      []EmojiCount{},
		EmojiShare: []EmojiSlice{},
	}

	var mu sync.Mutex
	cardErrors := make(map[string]string)
	g, gctx := errgroup.WithContext(ctx)

	runCard := func(name string, fn func() error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			_, cardSpan := tracer.Start(gctx, "analytics.card."+name)
			defer cardSpan.End()

			if err := fn(); err != nil {
				cardSpan.RecordError(err)
				cardSpan.SetStatus(codes.Error, err.Error())
				mu.Lock()
				cardErrors[name] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}

	runCard(CardStats, func() error {
		stats, err := (&StatsAnalyzer{MediaPlaceholder: opts.MediaPlaceholder, Links: opts.Links}).Analyze(log, scope)
		if err != nil {
			return err
		}
		mu.Lock()
		report.Stats = stats
		report.MessageCount = stats.Messages
		mu.Unlock()
		return nil
	})

	if scope == Overall {
		runCard(CardUsers, func() error {
			users, err := (&UsersAnalyzer{}).Analyze(log)
			if err != nil {
				return err
			}
			mu.Lock()
			report.Users = users
			mu.Unlock()
			return nil
		})
	}

	runCard(CardTimeline, func() error {
		timeline, err := (&TimelineAnalyzer{}).Analyze(log, scope)
		if err != nil {
			return err
		}
		mu.Lock()
		report.Timeline = timeline
		mu.Unlock()
		return nil
	})

	runCard(CardWords, func() error {
		words, err := (&WordsAnalyzer{
			MediaPlaceholder:   opts.MediaPlaceholder,
			NotificationSender: opts.NotificationSender,
			TopN:               opts.TopWords,
		}).Analyze(log, scope)
		if err != nil {
			return err
		}
		mu.Lock()
		report.Words = words
		mu.Unlock()
		return nil
	})

	runCard(CardEmoji, func() error {
		emoji, err := (&EmojiAnalyzer{Set: opts.Emoji, TopN: opts.TopEmojis}).Analyze(log, scope)
		if err != nil {
			return err
		}
		mu.Lock()
		report.Emoji = emoji
		report.EmojiShare = EmojiShare(emoji, DefaultEmojiShareSlices)
		mu.Unlock()
		return nil
	})

	runCard(CardActivity, func() error {
		activity, err := (&ActivityAnalyzer{}).Analyze(log, scope)
		if err != nil {
			return err
		}
		mu.Lock()
		report.Activity = activity
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(cardErrors) > 0 {
		report.CardErrors = cardErrors
		span.SetAttributes(attribute.Int("report.card_errors", len(cardErrors)))
	}
	return report, nil
}

// IsInputError reports whether err was caused by the caller's data rather
// than by the server.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMalformedLine) || errors.Is(err, ErrMalformedRecord)
}
