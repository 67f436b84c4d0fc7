package wiki

import (
	"html"
	"regexp"
	"strings"
)

// blocklist rejects heraldry, maps, diagrams and similar non-scenic files
var blocklist = []string{
	"armoiries", "blason", "logo", "drapeau", "flag", "coat_of_arms", "emblème",
	"symbol", "badge", "map", "carte", "plan", "banner", "coat", "textes", "texte",
	"allemands", "banc", "coupe", "graphique", "illustration",
}

// allowlist admits scenic or architectural files that do not name the city
var allowlist = []string{
	"eglise", "église", "chateau", "château", "jardin", "place", "rue", "pont",
	"mairie", "panorama", "vue", "paysage", "montagne", "plage", "rivière", "lac",
	"skyline", "aérien", "aerial", "panoramique", "ville", "tour", "historique",
	"centre-ville", "vieux", "vieille", "naturelle", "l'église", "halle", "monument",
	"statue", "tower", "arc", "champs", "louvre", "museum", "city",
}

var htmlTag = regexp.MustCompile(`<[^>]+>`)

// cityToken normalizes a city name the way file names spell it
func cityToken(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// fileName lowercases a file page title, drops its namespace and
// uses underscores for spaces
func fileName(title string) string {
	if i := strings.IndexByte(title, ':'); i >= 0 {
		title = title[i+1:]
	}
	return strings.ReplaceAll(strings.ToLower(title), " ", "_")
}

// stripHTML turns an extmetadata caption into plain text
func stripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(htmlTag.ReplaceAllString(s, "")))
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// keep decides whether a candidate image is shown. Blocklisted tokens in the
// file name or caption always reject it.
func keep(name, caption, token string) bool {
	if containsAny(name, blocklist) {
		return false
	}
	if !strings.Contains(name, token) && !containsAny(name, allowlist) {
		return false
	}
	return !containsAny(strings.ToLower(caption), blocklist)
}

func isPhoto(title string) bool {
	t := strings.ToLower(title)
	return strings.HasSuffix(t, ".jpg") || strings.HasSuffix(t, ".jpeg") || strings.HasSuffix(t, ".png")
}
