package models

// UpcomingReleases is the grouped payload returned by /upcoming-sync
type UpcomingReleases struct {
	Movies   []ContentItem `json:"movies"`
	TVSeries []ContentItem `json:"tv_series"`
	Anime    []ContentItem `json:"anime"`
}

// All flattens the groups, stamping the content type implied by each group
// onto items that did not carry one.
func (u UpcomingReleases) All() []ContentItem {
	out := make([]ContentItem, 0, len(u.Movies)+len(u.TVSeries)+len(u.Anime))
	add := func(items []ContentItem, ct ContentType) {
		for _, item := range items {
			if item.ContentType == ContentTypeUnknown {
				item.ContentType = ct
			}
			out = append(out, item)
		}
	}
	add(u.Movies, ContentTypeMovie)
	add(u.TVSeries, ContentTypeTV)
	add(u.Anime, ContentTypeAnime)
	return out
}
