package pkg

import "strconv"

const DefaultPageSize = 10

// Page is one bounded slice of a larger listing, numbered from 1.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int
}

func (p Page[T]) HasPrev() bool { return p.Number > 1 }

func (p Page[T]) HasNext() bool { return p.Number < p.NumPages }

func (p Page[T]) PrevNumber() int { return p.Number - 1 }

func (p Page[T]) NextNumber() int { return p.Number + 1 }

// PageNumber parses the ?page= query parameter leniently: anything that
// is not a positive integer means page 1.
func PageNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate slices items into pages of size elements and returns the
// requested page. A page past the end clamps to the last page, below the
// range to the first. An empty listing is a single empty page. Pure
// function of its inputs; items must already be in display order.
func Paginate[T any](items []T, size, page int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	count := len(items)
	numPages := (count + size - 1) / size
	if numPages == 0 {
		numPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > numPages {
		page = numPages
	}

	start := (page - 1) * size
	end := start + size
	if start > count {
		start = count
	}
	if end > count {
		end = count
	}

	return Page[T]{
		Items:    items[start:end],
		Number:   page,
		NumPages: numPages,
		Count:    count,
	}
}
