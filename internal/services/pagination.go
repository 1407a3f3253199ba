package services

import "math"

const (
	DefaultItemsPerPage = 30
	MaxItemsPerPage     = 100

	// MaxPage keeps the row offset within an int.
	MaxPage = math.MaxInt / MaxItemsPerPage
)

// Page is a 1-based page request. Zero values select the defaults.
type Page struct {
	Number       int
	ItemsPerPage int
}

func (p Page) limitOffset() (limit, offset int) {
	limit = p.ItemsPerPage
	if limit <= 0 {
		limit = DefaultItemsPerPage
	}
	if limit > MaxItemsPerPage {
		limit = MaxItemsPerPage
	}
	number := p.Number
	if number < 1 {
		number = 1
	}
	if number > MaxPage {
		number = MaxPage
	}
	return limit, (number - 1) * limit
}
