package carousel

import (
	"github.com/rs/zerolog"

	"github.com/cinebrain/releases/internal/models"
)

// LogRenderer renders slides as structured log lines, for headless runs
type LogRenderer struct {
	logger     zerolog.Logger
	isFavorite func(id int) bool
}

// NewLogRenderer creates a renderer writing to logger. isFavorite may be nil.
func NewLogRenderer(logger zerolog.Logger, isFavorite func(id int) bool) *LogRenderer {
	if isFavorite == nil {
		isFavorite = func(int) bool { return false }
	}
	return &LogRenderer{logger: logger, isFavorite: isFavorite}
}

func (r *LogRenderer) Render(item models.ContentItem, index, total int) {
	r.logger.Info().
		Int("slide", index+1).
		Int("of", total).
		Int("id", item.ID).
		Str("title", item.Title).
		Str("type", item.ContentType.String()).
		Str("release_date", item.ReleaseDate).
		Str("source", item.Source).
		Float64("score", item.FinalScore).
		Bool("favorite", r.isFavorite(item.ID)).
		Msg("Showing slide")
}

func (r *LogRenderer) RenderFallback(items []models.ContentItem) {
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	r.logger.Info().Strs("titles", titles).Msg("Showing placeholder slides")
}
