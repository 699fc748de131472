package render

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/livetemplate/mailcraft"
)

var plainCSSValue = regexp.MustCompile(`^[a-zA-Z0-9#.% -]+$`)

// style builds an inline style from property/value pairs. Empty values are
// skipped, and so are values that are neither colors nor plain tokens.
func style(pairs ...string) template.CSS {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		prop, value := pairs[i], strings.TrimSpace(pairs[i+1])
		if value == "" {
			continue
		}
		if !mailcraft.IsColor(value) && !plainCSSValue.MatchString(value) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(prop)
		b.WriteString(": ")
		b.WriteString(value)
	}
	return template.CSS(b.String())
}

func px(n mailcraft.Size) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%dpx", n)
}

// width renders an image width with its unit; px is the default unit.
func width(n mailcraft.Size, unit string) string {
	if n <= 0 {
		return ""
	}
	if unit == "" {
		unit = "px"
	}
	return fmt.Sprintf("%d%s", n, unit)
}

func columnWidth(columns mailcraft.Size, count int) string {
	n := int(columns)
	if n <= 0 {
		n = count
	}
	if n <= 0 {
		n = 1
	}
	return fmt.Sprintf("%d%%", 100/n)
}

// socialSize maps a footer icon size name to pixels.
func socialSize(size string) string {
	switch size {
	case "small":
		return "12px"
	case "large":
		return "20px"
	default:
		return "16px"
	}
}
