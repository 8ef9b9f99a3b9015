// Package tags maps site specific tag vocabularies onto the unified comic
// categories.
package tags

import (
	"comicarr/internal/domain"
)

const translatedValue = "translated"

// Vocabulary maps a site's tag namespaces to unified categories.
type Vocabulary map[string]domain.Category

var (
	EHentai = Vocabulary{
		"artist":    domain.CategoryAuthor,
		"character": domain.CategoryCharacter,
		"female":    domain.CategoryTag,
		"male":      domain.CategoryTag,
		"group":     domain.CategoryGroup,
		"language":  domain.CategoryLanguage,
		"parody":    domain.CategoryCategory,
		"reclass":   domain.CategoryCategory,
		"category":  domain.CategoryCategory,
	}

	NHentai = Vocabulary{
		"tag":       domain.CategoryTag,
		"artist":    domain.CategoryAuthor,
		"character": domain.CategoryCharacter,
		"group":     domain.CategoryGroup,
		"language":  domain.CategoryLanguage,
		"parody":    domain.CategoryCategory,
		"category":  domain.CategoryCategory,
	}

	// Pixiv tags are flat, the namespaces here are only set by the pixiv
	// source itself.
	Pixiv = Vocabulary{
		"artist": domain.CategoryAuthor,
		"type":   domain.CategoryCategory,
	}
)

// ForSite returns the vocabulary registered for site. Unknown sites get an
// empty vocabulary so only flat tags survive.
func ForSite(site string) Vocabulary {
	switch site {
	case "e-hentai":
		return EHentai
	case "nhentai":
		return NHentai
	case "pixiv":
		return Pixiv
	default:
		return Vocabulary{}
	}
}

// Classify assigns tag to a unified category. ok is false when the namespace
// is not part of the vocabulary.
func Classify(tag domain.RawTag, vocab Vocabulary) (category domain.Category, value string, ok bool) {
	if tag.Namespace == "" {
		return domain.CategoryTag, tag.Value, true
	}

	category, ok = vocab[tag.Namespace]
	if !ok {
		return 0, "", false
	}

	if category == domain.CategoryLanguage && tag.Value == translatedValue {
		return domain.CategoryTranslated, tag.Value, true
	}

	return category, tag.Value, true
}

// DropFunc is called for every tag whose namespace is not recognized.
type DropFunc func(site string, tag domain.RawTag)

// Classifier folds raw tags into a comic using one site's vocabulary.
type Classifier struct {
	Site       string
	Vocabulary Vocabulary
	OnDrop     DropFunc
}

func New(site string, onDrop DropFunc) *Classifier {
	return &Classifier{
		Site:       site,
		Vocabulary: ForSite(site),
		OnDrop:     onDrop,
	}
}

// Apply classifies tag and appends it to the matching bucket of comic.
func (c *Classifier) Apply(comic *domain.Comic, tag domain.RawTag) {
	category, value, ok := Classify(tag, c.Vocabulary)
	if !ok {
		if c.OnDrop != nil {
			c.OnDrop(c.Site, tag)
		}
		return
	}

	switch category {
	case domain.CategoryTag:
		comic.Tags = append(comic.Tags, value)
	case domain.CategoryAuthor:
		comic.Authors = append(comic.Authors, value)
	case domain.CategoryCategory:
		comic.Categories = append(comic.Categories, value)
	case domain.CategoryCharacter:
		comic.Characters = append(comic.Characters, value)
	case domain.CategoryGroup:
		comic.Groups = append(comic.Groups, value)
	case domain.CategoryLanguage:
		comic.Languages = append(comic.Languages, value)
	case domain.CategoryTranslated:
		comic.Translated = true
	}
}
