package scrape

// Scrapable is implemented by types that know how to fill themselves
// from one element.
type Scrapable interface {
	Scrape(s Scraper) error
}

// PtrScrapable constrains P to a pointer to T implementing Scrapable.
type PtrScrapable[T any] interface {
	*T
	Scrapable
}

func scrapeInto[T any, P PtrScrapable[T]](s Scraper) (T, error) {
	var value T
	if err := P(&value).Scrape(s); err != nil {
		return value, err
	}
	return value, nil
}

// OnlyInto scrapes the single match of selector into a T.
func OnlyInto[T any, P PtrScrapable[T]](s Scraper, selector string) (T, error) {
	return Only(s, selector, scrapeInto[T, P])
}

// AllInto scrapes every match of selector into a T.
func AllInto[T any, P PtrScrapable[T]](s Scraper, selector string) ([]T, error) {
	return All(s, selector, scrapeInto[T, P])
}

// OptionalInto scrapes zero or one match of selector into a T.
func OptionalInto[T any, P PtrScrapable[T]](s Scraper, selector string) (T, bool, error) {
	return Optional(s, selector, scrapeInto[T, P])
}
