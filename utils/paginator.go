package utils

import "strconv"

// Page describes one slice of an ordered listing. Every listing handler
// goes through Paginate so page semantics stay identical across the
// home feed, group feeds, profiles and the followed-authors feed.
type Page struct {
	Number     int
	Size       int
	TotalItems int64
	TotalPages int
	Offset     int
	HasNext    bool
	HasPrev    bool
}

// Paginate turns a raw page query parameter into a clamped Page. The
// parameter is 1-based; absent or unparseable values mean page 1, and
// out-of-range values clamp to the nearest valid page instead of
// erroring. An empty listing still has one (empty) page.
func Paginate(pageParam string, totalItems int64, pageSize int) Page {
	if pageSize < 1 {
		pageSize = 1
	}

	totalPages := int((totalItems + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	number := 1
	if n, err := strconv.Atoi(pageParam); err == nil {
		number = n
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		Size:       pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
		Offset:     (number - 1) * pageSize,
		HasNext:    number < totalPages,
		HasPrev:    number > 1,
	}
}

// NextNumber and PrevNumber exist for templates, which cannot do
// arithmetic on their own.
func (p Page) NextNumber() int { return p.Number + 1 }
func (p Page) PrevNumber() int { return p.Number - 1 }
