package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/varoOP/seasonshare/internal/domain"
)

// Item is one card of the exported sheet
type Item struct {
	Name     string
	ImageURL string
}

// Items maps the share list to export items, keeping order
func Items(list []domain.ShareEntry) []Item {
	items := make([]Item, 0, len(list))
	for _, e := range list {
		items = append(items, Item{Name: e.Name, ImageURL: e.ImageURL})
	}
	return items
}

var (
	uploadSegment = regexp.MustCompile(`/image/upload/([^/]+)/`)
	sizeParam     = regexp.MustCompile(`^(w|h)_\d+$`)
)

// HDImageURL rewrites the width and height of a Cloudinary upload transform
// to size. URLs without such a transform are returned unchanged.
func HDImageURL(url string, size int) string {
	if size <= 0 {
		return url
	}
	loc := uploadSegment.FindStringSubmatchIndex(url)
	if loc == nil {
		return url
	}

	transform := url[loc[2]:loc[3]]
	parts := strings.Split(transform, ",")
	changed := false
	for i, p := range parts {
		if sizeParam.MatchString(p) {
			parts[i] = p[:2] + strconv.Itoa(size)
			changed = true
		}
	}
	if !changed {
		return url
	}

	return url[:loc[2]] + strings.Join(parts, ",") + url[loc[3]:]
}

// FormatText renders the plain-text fallback used when the image can't be produced
func FormatText(list []domain.ShareEntry) string {
	blocks := make([]string, 0, len(list))
	for _, e := range list {
		blocks = append(blocks, fmt.Sprintf("• %s\n  首播：%s %s\n  故事：%s", e.Name, e.PremiereDate, e.PremiereTime, e.Story))
	}
	return strings.Join(blocks, "\n\n")
}

// Caption numbers the entries in sheet order, left to right and top to
// bottom, so each cell can be matched to its title.
func Caption(list []domain.ShareEntry) string {
	var b strings.Builder
	for i, e := range list {
		fmt.Fprintf(&b, "%d. %s  %s %s\n", i+1, e.Name, e.PremiereDate, e.PremiereTime)
	}
	return b.String()
}
