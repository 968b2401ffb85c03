package recommend

import (
	"strings"
)

// Recommendation is one similar document as listed by the model.
type Recommendation struct {
	Index   int
	Title   string
	Content string
	Link    string
}

const (
	circledOne    = '①'
	circledTwenty = '⑳'
)

type field int

const (
	fieldNone field = iota
	fieldTitle
	fieldContent
	fieldLink
)

var labels = []struct {
	prefix string
	field  field
}{
	{"제목", fieldTitle},
	{"내용", fieldContent},
	{"링크", fieldLink},
}

// ParseRecommendations extracts structured entries from a Recommend answer.
// Entries start at a circled digit or at a title label; unlabeled lines
// continue the previous field. Text that matches neither yields no entries,
// so callers should keep the raw answer for display.
func ParseRecommendations(text string) []Recommendation {
	var (
		recs    []Recommendation
		current *Recommendation
		last    = fieldNone
	)
	start := func(index int) {
		recs = append(recs, Recommendation{Index: index})
		current = &recs[len(recs)-1]
		last = fieldNone
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if r := []rune(line)[0]; r >= circledOne && r <= circledTwenty {
			start(int(r-circledOne) + 1)
			line = strings.TrimSpace(string([]rune(line)[1:]))
			if line == "" {
				continue
			}
		}

		f, value := splitLabel(line)
		if f == fieldTitle && (current == nil || current.Title != "") {
			start(len(recs) + 1)
		}
		if current == nil {
			continue
		}

		switch f {
		case fieldNone:
			appendField(current, last, line)
		default:
			setField(current, f, value)
			last = f
		}
	}

	for i := range recs {
		recs[i].Link = cleanLink(recs[i].Link)
	}
	return recs
}

func splitLabel(line string) (field, string) {
	trimmed := strings.TrimLeft(line, "-*• ")
	for _, l := range labels {
		rest, ok := strings.CutPrefix(trimmed, l.prefix)
		if !ok {
			continue
		}
		rest = strings.TrimLeft(rest, "* ")
		if after, ok := strings.CutPrefix(rest, ":"); ok {
			return l.field, strings.TrimSpace(strings.TrimLeft(after, "* "))
		}
		if after, ok := strings.CutPrefix(rest, "："); ok {
			return l.field, strings.TrimSpace(strings.TrimLeft(after, "* "))
		}
	}
	return fieldNone, ""
}

func setField(r *Recommendation, f field, value string) {
	switch f {
	case fieldTitle:
		r.Title = value
	case fieldContent:
		r.Content = value
	case fieldLink:
		r.Link = value
	}
}

func appendField(r *Recommendation, f field, line string) {
	join := func(a, b string) string {
		if a == "" {
			return b
		}
		return a + " " + b
	}
	switch f {
	case fieldTitle:
		r.Title = join(r.Title, line)
	case fieldContent, fieldNone:
		r.Content = join(r.Content, line)
	case fieldLink:
		r.Link = join(r.Link, line)
	}
}

// cleanLink unwraps markdown links and placeholder brackets.
func cleanLink(link string) string {
	link = strings.TrimSpace(link)
	if i := strings.Index(link, "]("); i >= 0 && strings.HasSuffix(link, ")") {
		return link[i+2 : len(link)-1]
	}
	link = strings.TrimPrefix(link, "<")
	link = strings.TrimSuffix(link, ">")
	link = strings.TrimPrefix(link, "[")
	link = strings.TrimSuffix(link, "]")
	return strings.TrimSpace(link)
}
