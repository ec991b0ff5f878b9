package models

import "time"

// Platform identifies the origin site of a saved URL.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
	PlatformOther     Platform = "other"
)

// Category is the closed set of topical categories a record can carry.
type Category string

const (
	CategoryFitness       Category = "fitness"
	CategoryCoding        Category = "coding"
	CategoryFood          Category = "food"
	CategoryTravel        Category = "travel"
	CategoryDesign        Category = "design"
	CategoryFashion       Category = "fashion"
	CategoryBusiness      Category = "business"
	CategoryEducation     Category = "education"
	CategoryEntertainment Category = "entertainment"
	CategoryOther         Category = "other"
)

// Categories lists all valid categories in declaration order. The order
// matters: keyword scoring breaks ties by position in this slice.
var Categories = []Category{
	CategoryFitness,
	CategoryCoding,
	CategoryFood,
	CategoryTravel,
	CategoryDesign,
	CategoryFashion,
	CategoryBusiness,
	CategoryEducation,
	CategoryEntertainment,
	CategoryOther,
}

// ParseCategory validates a raw string against the closed category set.
// Returns CategoryOther and false for anything outside the enumeration.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return CategoryOther, false
}

// ScrapedContent is the best-effort raw signal produced by an extractor
// chain. All fields are optional; it is never authoritative.
type ScrapedContent struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	ThumbnailURL string   `json:"thumbnail_url,omitempty"`
	Hashtags     []string `json:"hashtags,omitempty"`
}

// AnalysisResult is the analyzer's final verdict on a URL. Category is
// always a member of the closed enumeration and always leads the tags.
type AnalysisResult struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	AISummary   string   `json:"ai_summary"`
	Tags        []string `json:"tags"`
}

// ContentRecord is a persisted bookmark.
type ContentRecord struct {
	ID           string     `json:"id"`
	UserPhone    string     `json:"user_phone"`
	URL          string     `json:"url"`
	Platform     Platform   `json:"platform"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     Category   `json:"category"`
	Tags         []string   `json:"tags"`
	AISummary    string     `json:"ai_summary"`
	MediaURL     string     `json:"media_url,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	SnapshotPath string     `json:"snapshot_path,omitempty"` // archive location of the raw extraction snapshot
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// ContentUpdate carries the fields a record may be mutated through.
// Nil pointers mean "leave unchanged".
type ContentUpdate struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	AISummary   *string   `json:"ai_summary,omitempty"`
}

// UserStats summarizes a user's saved content.
type UserStats struct {
	Total          int              `json:"total"`
	CategoryCounts map[Category]int `json:"category_counts"`
}

// WebhookMessage is an inbound messaging-webhook delivery. From carries
// a channel-prefixed phone identifier ("whatsapp:+15551234567").
type WebhookMessage struct {
	From       string
	To         string
	Body       string
	MessageSid string
}

// Snapshot is the audit record archived per ingestion: the raw
// extraction signal alongside what the analyzer made of it.
type Snapshot struct {
	URL       string          `json:"url"`
	Platform  Platform        `json:"platform"`
	Scraped   *ScrapedContent `json:"scraped,omitempty"`
	Analysis  *AnalysisResult `json:"analysis"`
	Method    string          `json:"method"`
	FetchedAt time.Time       `json:"fetched_at"`
}
