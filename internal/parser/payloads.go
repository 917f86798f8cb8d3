package parser

import (
	"bytes"
	"errors"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/cinebrain/releases/internal/apperrors"
	"github.com/cinebrain/releases/internal/models"
)

var errNotObject = errors.New("body is not a JSON object")

// ParseUpcoming reads an /upcoming-sync payload. The groups may sit at the top
// level or under "data". Missing groups are empty.
func ParseUpcoming(source string, body []byte) (models.UpcomingReleases, error) {
	obj, ok := asObject(body)
	if !ok {
		return models.UpcomingReleases{}, &apperrors.ErrParse{Source: source, Cause: errNotObject}
	}
	if data, ok := objectField(obj, "data"); ok {
		obj = data
	}

	group := func(key string, ct models.ContentType) []models.ContentItem {
		records, _ := arrayField(obj, key)
		return convert([]itemList{{fallback: ct, records: records}})
	}
	return models.UpcomingReleases{
		Movies:   group("movies", models.ContentTypeMovie),
		TVSeries: group("tv_series", models.ContentTypeTV),
		Anime:    group("anime", models.ContentTypeAnime),
	}, nil
}

// ParseFavoriteIDs reads the content IDs out of a /user/favorites payload.
// Entries may be full content records or bare IDs.
func ParseFavoriteIDs(source string, body []byte) ([]int, error) {
	obj, ok := asObject(body)
	if !ok {
		return nil, &apperrors.ErrParse{Source: source, Cause: errNotObject}
	}
	records, _ := arrayField(obj, "favorites")

	ids := make([]int, 0, len(records))
	for _, record := range records {
		record = bytes.TrimSpace(record)
		if len(record) > 0 && record[0] != '{' {
			var id flexInt
			if err := json.Unmarshal(record, &id); err == nil && id > 0 {
				ids = append(ids, int(id))
			}
			continue
		}
		var raw rawItem
		if err := json.Unmarshal(record, &raw); err != nil {
			continue
		}
		if item, ok := raw.toContentItem(models.ContentTypeUnknown); ok {
			ids = append(ids, item.ID)
		}
	}
	return lo.Uniq(ids), nil
}
