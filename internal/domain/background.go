package domain

import (
	"net/url"
	"strings"
)

// NeutralBackground is used for "none" and for rejected values.
const NeutralBackground = "#2B2A33"

// ImageFilter darkens image backgrounds so the widgets stay readable.
const ImageFilter = "brightness(30%)"

// Background is the resolved CSS for the page background.
type Background struct {
	CSS     string // value for the CSS background property
	Filter  string // value for the CSS filter property, empty when unused
	IsImage bool
}

// ResolveBackground turns the background parameter into CSS.
//
//	"none" or ""         -> NeutralBackground
//	starts with "http"   -> url("...") plus ImageFilter
//	anything else        -> the literal value (colors, gradients)
//
// Values that could break out of a CSS declaration fall back to NeutralBackground.
func ResolveBackground(param string) Background {
	param = strings.TrimSpace(param)
	if param == "" || param == DefaultBackground {
		return Background{CSS: NeutralBackground}
	}

	if strings.HasPrefix(param, "http") {
		u, err := url.Parse(param)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return Background{CSS: NeutralBackground}
		}
		return Background{
			CSS:     `url("` + cssQuote(u.String()) + `")`,
			Filter:  ImageFilter,
			IsImage: true,
		}
	}

	if !safeCSSValue(param) {
		return Background{CSS: NeutralBackground}
	}
	return Background{CSS: param}
}

func safeCSSValue(v string) bool {
	if strings.ContainsAny(v, ";{}<>\"'\\`") {
		return false
	}
	lower := strings.ToLower(v)
	for _, bad := range []string{"expression(", "url(", "/*", "javascript:"} {
		if strings.Contains(lower, bad) {
			return false
		}
	}
	return true
}

// cssQuote escapes characters that could terminate a double-quoted CSS string.
func cssQuote(s string) string {
	r := strings.NewReplacer(`\`, `%5C`, `"`, `%22`, "\n", "", "\r", "", "<", "%3C", ">", "%3E")
	return r.Replace(s)
}
