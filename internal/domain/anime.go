package domain

// Placeholders written by the generator when the source page lacks a field.
const (
	NoName         = "無名稱"
	NoImage        = "無圖片"
	NoPremiereDate = "無首播日期"
	NoPremiereTime = "無首播時間"
	NoStory        = "無故事大綱"
	UnknownID      = "未知ID"
)

// AnimeEntry stores one show of a season document
type AnimeEntry struct {
	BangumiID    string `json:"bangumi_id,omitempty"`
	Name         string `json:"anime_name"`
	ImageURL     string `json:"anime_image_url,omitempty"`
	PremiereDate string `json:"premiere_date,omitempty"`
	PremiereTime string `json:"premiere_time,omitempty"`
	Story        string `json:"story,omitempty"`
}

// Weekday returns the weekday token the entry premieres on.
// The generator stores a bare weekday token in premiere_date, so no parsing is needed.
func (a AnimeEntry) Weekday() string {
	return a.PremiereDate
}

// HasImage reports whether the entry carries a usable cover URL
func (a AnimeEntry) HasImage() bool {
	return a.ImageURL != "" && a.ImageURL != NoImage
}

// Normalize fills missing text fields with placeholders. Entries are never rejected.
func (a AnimeEntry) Normalize() AnimeEntry {
	if a.Name == "" {
		a.Name = NoName
	}
	if a.PremiereDate == "" {
		a.PremiereDate = NoPremiereDate
	}
	if a.PremiereTime == "" {
		a.PremiereTime = NoPremiereTime
	}
	if a.BangumiID == "" {
		a.BangumiID = UnknownID
	}
	return a
}

// ShareEntry is the projection of an AnimeEntry captured when it is added to the share list
type ShareEntry struct {
	Name         string `json:"name"`
	ImageURL     string `json:"image"`
	PremiereDate string `json:"premiere_date"`
	PremiereTime string `json:"premiere_time"`
	Story        string `json:"story,omitempty"`
}

// NewShareEntry copies the fields the share list needs out of a catalog entry
func NewShareEntry(a AnimeEntry) ShareEntry {
	return ShareEntry{
		Name:         a.Name,
		ImageURL:     a.ImageURL,
		PremiereDate: a.PremiereDate,
		PremiereTime: a.PremiereTime,
		Story:        a.Story,
	}
}

// ViewState is the user's current selection and filter inputs
type ViewState struct {
	Year    string
	Season  Season
	Weekday string
	Keyword string
}

// Key returns the season key of the selection
func (v ViewState) Key() SeasonKey {
	return SeasonKey{Year: v.Year, Season: v.Season}
}
