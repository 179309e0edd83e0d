package youtube

import "regexp"

var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/)([\w-]{11})(?:\?|&|$)`),
	regexp.MustCompile(`youtu\.be/([\w-]{11})`),
	regexp.MustCompile(`embed/([\w-]{11})`),
}

// VideoIDFromURL extracts the 11-character video id from a watch, short, or
// embed URL. Returns "" if none matches.
func VideoIDFromURL(raw string) string {
	for _, p := range videoURLPatterns {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}
	return ""
}
