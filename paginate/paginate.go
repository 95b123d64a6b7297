// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package paginate

import "strconv"

// WindowRadius is how many page numbers are shown on each side of the
// current page
const WindowRadius = 2

// Page is one page of a list view
type Page struct {
	Number  int
	Last    int
	PerPage int
	Total   int
}

// New builds the page for a requested page number. Out of range requests
// are clamped to the first or last page; an empty list still has page 1.
func New(total, perPage, requested int) Page {
	if perPage <= 0 {
		perPage = 1
	}
	if total < 0 {
		total = 0
	}

	last := (total + perPage - 1) / perPage
	if last < 1 {
		last = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > last {
		number = last
	}

	return Page{Number: number, Last: last, PerPage: perPage, Total: total}
}

// ParsePage reads a ?page= value; anything that is not a number means page 1
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

func (p Page) HasPrevious() bool { return p.Number > 1 }
func (p Page) HasNext() bool     { return p.Number < p.Last }
func (p Page) Previous() int     { return p.Number - 1 }
func (p Page) Next() int         { return p.Number + 1 }
func (p Page) HasOtherPages() bool {
	return p.Last > 1
}

// Offset is the number of rows before this page
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

func (p Page) Limit() int {
	return p.PerPage
}

// Window returns the page numbers within WindowRadius of the current page
func (p Page) Window() []int {
	start := p.Number - WindowRadius
	if start < 1 {
		start = 1
	}
	end := p.Number + WindowRadius
	if end > p.Last {
		end = p.Last
	}

	window := make([]int, 0, end-start+1)
	for n := start; n <= end; n++ {
		window = append(window, n)
	}
	return window
}
