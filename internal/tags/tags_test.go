package tags

import (
	"testing"

	"comicarr/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		tag      domain.RawTag
		vocab    Vocabulary
		category domain.Category
		value    string
		ok       bool
	}{
		{"flat", domain.RawTag{Value: "full color"}, EHentai, domain.CategoryTag, "full color", true},
		{"artist", domain.ParseRawTag("artist:foo"), EHentai, domain.CategoryAuthor, "foo", true},
		{"character", domain.ParseRawTag("character:bar"), EHentai, domain.CategoryCharacter, "bar", true},
		{"group", domain.ParseRawTag("group:baz"), EHentai, domain.CategoryGroup, "baz", true},
		{"parody", domain.ParseRawTag("parody:original"), EHentai, domain.CategoryCategory, "original", true},
		{"reclass", domain.ParseRawTag("reclass:manga"), EHentai, domain.CategoryCategory, "manga", true},
		{"female", domain.ParseRawTag("female:glasses"), EHentai, domain.CategoryTag, "glasses", true},
		{"male", domain.ParseRawTag("male:glasses"), EHentai, domain.CategoryTag, "glasses", true},
		{"language", domain.ParseRawTag("language:english"), EHentai, domain.CategoryLanguage, "english", true},
		{"translated", domain.ParseRawTag("language:translated"), EHentai, domain.CategoryTranslated, "translated", true},
		{"nhentai tag", domain.RawTag{Namespace: "tag", Value: "x"}, NHentai, domain.CategoryTag, "x", true},
		{"nhentai has no female", domain.RawTag{Namespace: "female", Value: "x"}, NHentai, 0, "", false},
		{"unknown namespace", domain.ParseRawTag("mixed:foo"), EHentai, 0, "", false},
		{"value keeps colons", domain.ParseRawTag("artist:a:b"), EHentai, domain.CategoryAuthor, "a:b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, value, ok := Classify(tt.tag, tt.vocab)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.category, category)
			assert.Equal(t, tt.value, value)
		})
	}
}

func TestClassifierApply_DropsUnknownNamespaces(t *testing.T) {
	var dropped []domain.RawTag
	c := New("e-hentai", func(site string, tag domain.RawTag) {
		assert.Equal(t, "e-hentai", site)
		dropped = append(dropped, tag)
	})

	var comic domain.Comic
	for _, ns := range []string{"mixed", "other", "cosplayer", "temp"} {
		c.Apply(&comic, domain.RawTag{Namespace: ns, Value: "x"})
	}

	assert.Empty(t, comic.Tags)
	assert.Empty(t, comic.Authors)
	assert.Empty(t, comic.Categories)
	assert.Empty(t, comic.Characters)
	assert.Empty(t, comic.Groups)
	assert.Empty(t, comic.Languages)
	assert.False(t, comic.Translated)
	require.Len(t, dropped, 4)
	assert.Equal(t, "cosplayer:x", dropped[2].String())
}

func TestClassifierApply_Translated(t *testing.T) {
	c := New("nhentai", nil)

	var comic domain.Comic
	c.Apply(&comic, domain.RawTag{Namespace: "language", Value: "translated"})
	c.Apply(&comic, domain.RawTag{Namespace: "language", Value: "english"})

	assert.True(t, comic.Translated)
	assert.Equal(t, []string{"english"}, comic.Languages)
}

func TestClassifierApply_KeepsDuplicates(t *testing.T) {
	c := New("e-hentai", nil)

	var comic domain.Comic
	c.Apply(&comic, domain.ParseRawTag("female:glasses"))
	c.Apply(&comic, domain.ParseRawTag("male:glasses"))

	assert.Equal(t, []string{"glasses", "glasses"}, comic.Tags)
}
