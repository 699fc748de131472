package mailcraft

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DefaultMaxImageBytes is the size above which an embedded image triggers a
// warning.
const DefaultMaxImageBytes = 1 << 20

// imageFields are the attributes that may carry an uploaded image.
var imageFields = []string{"src", "logo", "backgroundImage"}

// DataURLSize returns the decoded size of a base64 data URL, or -1 when s
// is not one.
func DataURLSize(s string) int64 {
	if !strings.HasPrefix(s, "data:") {
		return -1
	}
	comma := strings.IndexByte(s, ',')
	if comma < 0 || !strings.Contains(s[:comma], ";base64") {
		return -1
	}
	payload := strings.TrimRight(s[comma+1:], "=")
	return int64(base64.RawStdEncoding.DecodedLen(len(payload)))
}

// ImageWarning describes an oversized embedded image.
type ImageWarning struct {
	BlockID string
	Field   string
	Size    int64
}

func (w ImageWarning) String() string {
	return fmt.Sprintf("Large image detected on block %s (%s): %.2fMB. Consider using a smaller image to avoid storage issues.",
		w.BlockID, w.Field, float64(w.Size)/1024/1024)
}

// CheckImages returns a warning for each embedded image in attrs larger than
// limit. It is advisory; callers log the warnings and never block the write.
func CheckImages(blockID string, attrs map[string]any, limit int64) []ImageWarning {
	if limit <= 0 {
		limit = DefaultMaxImageBytes
	}
	var warnings []ImageWarning
	for _, field := range imageFields {
		s, ok := attrs[field].(string)
		if !ok {
			continue
		}
		if size := DataURLSize(s); size > limit {
			warnings = append(warnings, ImageWarning{BlockID: blockID, Field: field, Size: size})
		}
	}
	return warnings
}
