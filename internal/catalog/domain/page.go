package domain

import "errors"

// DefaultPageSize is the fixed page size of catalog listings.
const DefaultPageSize = 20

// ErrInvalidPage indicates a page number outside [1, totalPages]. Requesting
// an out-of-range page is a caller error and is never silently clamped.
var ErrInvalidPage = errors.New("catalog: invalid page")

// Page is one page of an ordered collection together with the collection's
// total size.
type Page struct {
	Items    []Pokemon `json:"results"`
	Number   int       `json:"page"`
	Count    int       `json:"count"`
	PageSize int       `json:"page_size"`
}

// TotalPages derives the page count from the item count.
func (p Page) TotalPages() int {
	if p.PageSize <= 0 || p.Count <= 0 {
		return 0
	}
	return (p.Count + p.PageSize - 1) / p.PageSize
}

// ValidateNumber checks the page-number invariant: once the collection is
// non-empty the number must fall within [1, totalPages]; page 1 of an empty
// collection is allowed.
func (p Page) ValidateNumber() error {
	if p.Number < 1 {
		return ErrInvalidPage
	}
	total := p.TotalPages()
	if total == 0 {
		if p.Number != 1 {
			return ErrInvalidPage
		}
		return nil
	}
	if p.Number > total {
		return ErrInvalidPage
	}
	return nil
}
