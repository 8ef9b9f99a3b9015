package normalize

import (
	"fmt"

	"comicarr/internal/domain"
	"comicarr/internal/tags"
)

// Comic folds a resolved comic input into the unified Comic. Page order is
// kept as is and tags are never deduplicated.
func Comic(in domain.ComicInput, onDrop tags.DropFunc) (domain.Comic, error) {
	if err := checkFileNames(in); err != nil {
		return domain.Comic{}, err
	}

	comic := domain.Comic{
		Title:      in.Title,
		Authors:    []string{},
		Tags:       []string{},
		Categories: []string{},
		Characters: []string{},
		Groups:     []string{},
		UploadDate: in.UploadDate,
		Languages:  []string{},
		Pages:      make([]domain.Page, len(in.Pages)),
		Cover:      in.Cover,
		Site:       in.Site,
		ID:         in.ID,
	}
	copy(comic.Pages, in.Pages)

	classifier := tags.New(in.Site, onDrop)
	for _, tag := range in.Tags {
		classifier.Apply(&comic, tag)
	}

	return comic, nil
}

// FromRecord resolves rec and normalizes it.
func FromRecord(rec domain.ComicRecord, onDrop tags.DropFunc) (domain.Comic, error) {
	in, err := rec.ComicInput()
	if err != nil {
		return domain.Comic{}, err
	}

	return Comic(in, onDrop)
}

func checkFileNames(in domain.ComicInput) error {
	seen := make(map[string]int, len(in.Pages))

	for i, page := range in.Pages {
		if page.FileName == "" {
			return domain.NewParseError(in.Site, "pages", domain.ErrDecodeFailure, fmt.Errorf("page %d has no file name", i+1))
		}

		if prev, ok := seen[page.FileName]; ok {
			return domain.NewParseError(in.Site, "pages", domain.ErrDecodeFailure,
				fmt.Errorf("pages %d and %d share file name %q", prev+1, i+1, page.FileName))
		}
		seen[page.FileName] = i
	}

	return nil
}
