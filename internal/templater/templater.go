package templater

import (
	"regexp"
	"strconv"
	"strings"

	"comicarr/internal/domain"
)

var templatePattern = regexp.MustCompile(`{((\w+?)(:.*?)?)}`)

type Templater struct {
	Comic domain.Comic
}

func New(comic domain.Comic) *Templater {
	return &Templater{
		Comic: comic,
	}
}

// handleValue prints value on its own, or inside options with <.> replaced
// by value. Empty values print nothing.
func handleValue(value, options string) string {
	if value == "" {
		return ""
	}

	if options == "" {
		return value
	}

	cleanString := strings.Replace(options, ":", "", 1)
	return strings.ReplaceAll(cleanString, "<.>", value)
}

func (t *Templater) author() string {
	if len(t.Comic.Authors) == 0 {
		return ""
	}

	return strings.Join(t.Comic.Authors, ", ")
}

func (t *Templater) ExecTemplate(template string) string {
	newString := template
	for _, match := range templatePattern.FindAllStringSubmatch(template, -1) {
		replace := match[0]
		options := match[3]

		switch match[2] {
		case "site":
			replace = handleValue(t.Comic.Site, options)
		case "id":
			replace = handleValue(t.Comic.ID, options)
		case "title":
			replace = handleValue(t.Comic.Title, options)
		case "author":
			replace = handleValue(t.author(), options)
		case "pages":
			replace = handleValue(strconv.Itoa(len(t.Comic.Pages)), options)
		}

		newString = strings.Replace(newString, match[0], replace, 1)
	}

	return strings.TrimSpace(newString)
}
