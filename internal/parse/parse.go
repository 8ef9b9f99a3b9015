package parse

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// PageSelection parses the user input for ranges and single pages, e.g.
// "1-5,8,10-". Page numbers are 1-based; an open range runs to the last
// page. An empty input selects every page. The result is sorted and
// deduplicated.
func PageSelection(input string, pageCount int) ([]int, error) {
	if strings.TrimSpace(input) == "" {
		pages := make([]int, pageCount)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	parts := strings.Split(input, ",")
	uniquePages := make(map[int]bool)

	for _, part := range parts {
		if strings.Contains(part, "-") {
			rangeParts := strings.Split(part, "-")
			if len(rangeParts) != 2 {
				return nil, fmt.Errorf("invalid range format: %s", part)
			}

			start, end, err := getRange(rangeParts, pageCount)
			if err != nil {
				return nil, err
			}

			for page := start; page <= end; page++ {
				uniquePages[page] = true
			}
		} else {
			page, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, fmt.Errorf("invalid page number: %s", part)
			}

			if page < 1 || page > pageCount {
				return nil, fmt.Errorf("page %d out of range 1-%d", page, pageCount)
			}

			uniquePages[page] = true
		}
	}

	selectedPages := make([]int, 0, len(uniquePages))
	for page := range uniquePages {
		selectedPages = append(selectedPages, page)
	}
	slices.Sort(selectedPages)

	return selectedPages, nil
}

// getRange parses the user input for page ranges
func getRange(rangeParts []string, pageCount int) (int, int, error) {
	startPart := strings.TrimSpace(rangeParts[0])
	endPart := strings.TrimSpace(rangeParts[1])

	start := 1
	if startPart != "" {
		n, err := strconv.Atoi(startPart)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid start of range: %s", rangeParts[0])
		}
		start = n
	}

	end := pageCount
	if endPart != "" {
		n, err := strconv.Atoi(endPart)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid end of range: %s", rangeParts[1])
		}
		end = n
	}

	if start > end {
		return 0, 0, fmt.Errorf("start of range should not be greater than end: %s-%s", rangeParts[0], rangeParts[1])
	}

	if start < 1 || end > pageCount {
		return 0, 0, fmt.Errorf("range %d-%d out of range 1-%d", start, end, pageCount)
	}

	return start, end, nil
}
