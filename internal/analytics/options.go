package analytics

// Defaults for the tunable analyzer settings.
const (
	DefaultMediaPlaceholder = "Media omitted"
	DefaultTopWords         = 20
	DefaultTopEmojis        = 10
	DefaultEmojiShareSlices = 6
)

// Options configures the analyzers run by ComputeReport.
// Zero-valued fields fall back to the package defaults.
type Options struct {
	MediaPlaceholder   string
	NotificationSender string
	TopWords           int
	TopEmojis          int
	Links              LinkDetector
	Emoji              EmojiSet
}

func (o Options) withDefaults() Options {
	if o.MediaPlaceholder == "" {
		o.MediaPlaceholder = DefaultMediaPlaceholder
	}
	if o.NotificationSender == "" {
		o.NotificationSender = DefaultNotificationSender
	}
	if o.TopWords <= 0 {
		o.TopWords = DefaultTopWords
	}
	if o.TopEmojis <= 0 {
		o.TopEmojis = DefaultTopEmojis
	}
	if o.Links == nil {
		o.Links = defaultLinkDetector()
	}
	if o.Emoji == nil {
		o.Emoji = NewEmojiSet()
	}
	return o
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
