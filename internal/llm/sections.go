package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/alexivanou/communes-api/internal/model"
)

// MaxAttractions bounds the attraction list kept from a response
const MaxAttractions = 5

// ErrMalformedOutput is returned when a response lacks one of the sections
var ErrMalformedOutput = errors.New("malformed generator output")

var (
	labeledSections = regexp.MustCompile(`(?s)DESCRIPTION:\s*(.*?)\s*HISTORY:\s*(.*?)\s*ATTRACTIONS:\s*(.*)`)
	listMarker      = regexp.MustCompile(`^(?:\d+\s*[.)]|[-*•])\s*`)
)

// ParseSections reads a generator response, either the JSON object of a
// structured completion or the labeled plain-text layout.
func ParseSections(content string) (*model.DescriptionSections, error) {
	content = trimCodeFence(strings.TrimSpace(content))

	var s model.DescriptionSections
	if strings.HasPrefix(content, "{") {
		if err := json.Unmarshal([]byte(content), &s); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
	} else {
		m := labeledSections.FindStringSubmatch(content)
		if m == nil {
			return nil, fmt.Errorf("%w: section markers not found", ErrMalformedOutput)
		}
		s.Description = m[1]
		s.History = m[2]
		s.Attractions = splitListItems(m[3])
	}

	return normalize(s)
}

func normalize(s model.DescriptionSections) (*model.DescriptionSections, error) {
	out := &model.DescriptionSections{
		Description: strings.TrimSpace(s.Description),
		History:     strings.TrimSpace(s.History),
		Attractions: []string{},
	}

	for _, item := range s.Attractions {
		item = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(item), ""))
		if item != "" {
			out.Attractions = append(out.Attractions, item)
		}
	}
	if len(out.Attractions) > MaxAttractions {
		out.Attractions = out.Attractions[:MaxAttractions]
	}

	switch {
	case out.Description == "":
		return nil, fmt.Errorf("%w: empty description", ErrMalformedOutput)
	case out.History == "":
		return nil, fmt.Errorf("%w: empty history", ErrMalformedOutput)
	case len(out.Attractions) == 0:
		return nil, fmt.Errorf("%w: no attractions", ErrMalformedOutput)
	}
	return out, nil
}

// splitListItems splits a plain-text list into items. Unmarked lines continue
// the previous item.
func splitListItems(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !listMarker.MatchString(line) && len(items) > 0 {
			items[len(items)-1] += " " + line
			continue
		}
		items = append(items, line)
	}
	return items
}

// RenderSections writes s in the labeled layout that ParseSections reads back
func RenderSections(s model.DescriptionSections) string {
	var b strings.Builder
	b.WriteString("DESCRIPTION:\n")
	b.WriteString(s.Description)
	b.WriteString("\n\nHISTORY:\n")
	b.WriteString(s.History)
	b.WriteString("\n\nATTRACTIONS:")
	for i, a := range s.Attractions {
		fmt.Fprintf(&b, "\n%d. %s", i+1, a)
	}
	return b.String()
}

func trimCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
