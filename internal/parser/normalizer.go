package parser

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
	"github.com/samber/lo"

	"github.com/cinebrain/releases/internal/models"
)

// Shape names the response layout a body was decoded as
type Shape string

const (
	ShapeUnknown         Shape = "unknown"
	ShapePriorityContent Shape = "priority_content"
	ShapeAllContent      Shape = "all_content"
	ShapeRecommendations Shape = "recommendations"
	ShapeCategories      Shape = "categories"
	ShapeResults         Shape = "results"
	ShapeUpcoming        Shape = "upcoming"
	ShapeArray           Shape = "array"
)

// itemList is one list of raw records plus the content type implied by where it was found
type itemList struct {
	fallback models.ContentType
	records  []json.RawMessage
}

// variant tries to read one known layout out of a decoded top-level object.
// ok is true when the layout matched, even if it holds no records.
type variant struct {
	shape  Shape
	decode func(obj map[string]json.RawMessage) (lists []itemList, ok bool)
}

// objectVariants are tried in priority order; the first match wins.
var objectVariants = []variant{
	{ShapePriorityContent, decodePriorityContent},
	{ShapeAllContent, decodeAllContent},
	{ShapeRecommendations, keyedArray("recommendations")},
	{ShapeCategories, decodeCategories},
	{ShapeResults, keyedArray("results")},
	{ShapeUpcoming, decodeUpcoming},
}

// ContentNormalizer is the default Normalizer
type ContentNormalizer struct{}

// NewContentNormalizer creates a new normalizer
func NewContentNormalizer() *ContentNormalizer {
	return &ContentNormalizer{}
}

// Normalize implements Normalizer
func (n *ContentNormalizer) Normalize(body []byte) []models.ContentItem {
	_, items := Decode(body)
	return items
}

// Normalize flattens body into content items. Unrecognized or malformed bodies
// yield an empty slice, never an error.
func Normalize(body []byte) []models.ContentItem {
	_, items := Decode(body)
	return items
}

// Decode reports which layout body matched and the items it holds, deduplicated
// by ID with the first occurrence kept.
func Decode(body []byte) (Shape, []models.ContentItem) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return ShapeUnknown, []models.ContentItem{}
	}

	var (
		shape = ShapeUnknown
		lists []itemList
	)

	switch body[0] {
	case '[':
		if records, ok := asArray(body); ok {
			shape = ShapeArray
			lists = []itemList{{records: records}}
		}
	case '{':
		obj, ok := asObject(body)
		if !ok {
			break
		}
		for _, v := range objectVariants {
			if found, matched := v.decode(obj); matched {
				shape = v.shape
				lists = found
				break
			}
		}
	}

	return shape, convert(lists)
}

func convert(lists []itemList) []models.ContentItem {
	items := make([]models.ContentItem, 0)
	for _, list := range lists {
		for _, record := range list.records {
			var raw rawItem
			if err := json.Unmarshal(record, &raw); err != nil {
				continue
			}
			if item, ok := raw.toContentItem(list.fallback); ok {
				items = append(items, item)
			}
		}
	}
	return lo.UniqBy(items, func(item models.ContentItem) int { return item.ID })
}

func decodePriorityContent(obj map[string]json.RawMessage) ([]itemList, bool) {
	if success, ok := obj["success"]; ok && bytes.Equal(bytes.TrimSpace(success), []byte("false")) {
		return nil, false
	}
	data, ok := objectField(obj, "data")
	if !ok {
		return nil, false
	}
	records, ok := arrayField(data, "priority_content")
	if !ok {
		return nil, false
	}
	return []itemList{{records: records}}, true
}

func decodeAllContent(obj map[string]json.RawMessage) ([]itemList, bool) {
	data, ok := objectField(obj, "data")
	if !ok {
		return nil, false
	}
	all, ok := objectField(data, "all_content")
	if !ok {
		return nil, false
	}
	return flattenNamedLists(all), true
}

func decodeCategories(obj map[string]json.RawMessage) ([]itemList, bool) {
	categories, ok := objectField(obj, "categories")
	if !ok {
		return nil, false
	}
	return flattenNamedLists(categories), true
}

func decodeUpcoming(obj map[string]json.RawMessage) ([]itemList, bool) {
	groups := []struct {
		key string
		ct  models.ContentType
	}{
		{"movies", models.ContentTypeMovie},
		{"tv_series", models.ContentTypeTV},
		{"anime", models.ContentTypeAnime},
	}

	var lists []itemList
	matched := false
	for _, g := range groups {
		if records, ok := arrayField(obj, g.key); ok {
			matched = true
			lists = append(lists, itemList{fallback: g.ct, records: records})
		}
	}
	return lists, matched
}

func keyedArray(key string) func(map[string]json.RawMessage) ([]itemList, bool) {
	return func(obj map[string]json.RawMessage) ([]itemList, bool) {
		records, ok := arrayField(obj, key)
		if !ok {
			return nil, false
		}
		return []itemList{{records: records}}, true
	}
}

// flattenNamedLists walks an object of name -> list in sorted key order so the
// output does not depend on map iteration. Names such as "movies" or "anime"
// double as the fallback content type.
func flattenNamedLists(obj map[string]json.RawMessage) []itemList {
	names := lo.Keys(obj)
	sort.Strings(names)

	lists := make([]itemList, 0, len(names))
	for _, name := range names {
		records, ok := asArray(obj[name])
		if !ok {
			continue
		}
		lists = append(lists, itemList{fallback: models.ParseContentType(name), records: records})
	}
	return lists
}

func objectField(obj map[string]json.RawMessage, key string) (map[string]json.RawMessage, bool) {
	raw, ok := obj[key]
	if !ok {
		return nil, false
	}
	return asObject(raw)
}

func arrayField(obj map[string]json.RawMessage, key string) ([]json.RawMessage, bool) {
	raw, ok := obj[key]
	if !ok {
		return nil, false
	}
	return asArray(raw)
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func asArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}
