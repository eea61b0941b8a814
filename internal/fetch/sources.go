package fetch

import (
	"fmt"

	"github.com/abelbrown/marketplace/internal/config"
	"github.com/abelbrown/marketplace/internal/events"
)

// NewSource builds the Source selected by cfg.Format.
func NewSource(cfg config.SourceConfig, rec *events.Recorder) (Source, error) {
	opts := Options{
		Timeout:       cfg.Timeout,
		RatePerSecond: cfg.RatePerSecond,
		Burst:         cfg.Burst,
		Recorder:      rec,
	}
	switch cfg.Format {
	case config.FormatJSON, "":
		return NewJSONSource(cfg.URL, opts), nil
	case config.FormatFeed:
		return NewFeedSource(cfg.URL, opts), nil
	default:
		return nil, fmt.Errorf("unknown source format %q", cfg.Format)
	}
}
