package extract

import (
	"regexp"
	"sync"

	"vidmeta/internal/media"
)

// Scope controls where a rule is used.
type Scope int

const (
	// ScopeRecord rules feed the full record and single-field access.
	ScopeRecord Scope = iota
	// ScopeSingle rules are reachable through single-field access only.
	ScopeSingle
	// ScopeRetired rules name fields whose data no longer exists upstream.
	ScopeRetired
)

func (s Scope) String() string {
	switch s {
	case ScopeRecord:
		return "record"
	case ScopeSingle:
		return "single"
	case ScopeRetired:
		return "retired"
	default:
		return "unknown"
	}
}

// Rule binds one field to a single-capture pattern and an optional transform.
// A nil Transform returns the capture unchanged.
type Rule struct {
	Field     string
	Pattern   *regexp.Regexp
	Transform Transform
	Scope     Scope
	// Note explains why a retired rule is unavailable.
	Note string
}

// Patterns for the watch page. They target the JSON blobs the page embeds in
// inline scripts, so they are written against the serialized form, quotes
// included.
var (
	titlePattern       = regexp.MustCompile(`"title":"(.*?)"`)
	viewsPattern       = regexp.MustCompile(`"videoViewCountRenderer":\{"viewCount":\{"simpleText":"(.*?)"`)
	likesPattern       = regexp.MustCompile(`toggledText":\{"accessibility":\{"accessibilityData":\{"label":"(.*?) `)
	durationPattern    = regexp.MustCompile(`approxDurationMs":"(.*?)"`)
	authorPattern      = regexp.MustCompile(`channelIds":\["(.*?)"`)
	uploadedPattern    = regexp.MustCompile(`uploadDate":"(.*?)"`)
	thumbnailPattern   = regexp.MustCompile(`playerMicroformatRenderer":\{"thumbnail":\{"thumbnails":\[\{"url":"(.*?)"`)
	tagsPattern        = regexp.MustCompile(`<meta name="keywords" content="(.*?)">`)
	descriptionPattern = regexp.MustCompile(`shortDescription":"(.*)","isCrawlable`)
	dislikesPattern    = regexp.MustCompile(`"dislikeCount":"(.*?)"`)
)

// DefaultRules returns the watch-page rule table in registry order.
func DefaultRules() []Rule {
	return []Rule{
		{Field: media.FieldTitle, Pattern: titlePattern},
		{Field: media.FieldViews, Pattern: viewsPattern, Transform: Views},
		{Field: media.FieldLikes, Pattern: likesPattern},
		{Field: media.FieldDuration, Pattern: durationPattern, Transform: Duration},
		{Field: media.FieldAuthor, Pattern: authorPattern},
		{Field: media.FieldUploaded, Pattern: uploadedPattern},
		{Field: media.FieldThumbnail, Pattern: thumbnailPattern},
		{Field: media.FieldTags, Pattern: tagsPattern, Transform: Tags},
		{Field: media.FieldDescription, Pattern: descriptionPattern, Transform: Description, Scope: ScopeSingle},
		{
			Field:   media.FieldDislikes,
			Pattern: dislikesPattern,
			Scope:   ScopeRetired,
			Note:    "public dislike counts were removed from the site",
		},
	}
}

// DefaultAliases maps alternate field names to registry names.
func DefaultAliases() map[string]string {
	return map[string]string{
		"date":    media.FieldUploaded,
		"channel": media.FieldAuthor,
	}
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	reg, err := NewRegistry(DefaultRules(), DefaultAliases())
	if err != nil {
		panic("extract: invalid default rules: " + err.Error())
	}
	return reg
})

// DefaultRegistry returns the shared registry built from DefaultRules.
func DefaultRegistry() *Registry {
	return defaultRegistry()
}
