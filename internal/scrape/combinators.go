package scrape

// All applies f to every match of selector and stops at the first error.
func All[T any](s Scraper, selector string, f func(Scraper) (T, error)) ([]T, error) {
	matches, err := s.matches(selector)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, matches.Length())
	for i := range matches.Nodes {
		value, err := f(Scraper{selection: matches.Eq(i)})
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, nil
}

// AllFlat is All where f may skip an element by returning false.
func AllFlat[T any](s Scraper, selector string, f func(Scraper) (T, bool, error)) ([]T, error) {
	matches, err := s.matches(selector)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, matches.Length())
	for i := range matches.Nodes {
		value, ok, err := f(Scraper{selection: matches.Eq(i)})
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, value)
		}
	}
	return out, nil
}

// Only requires exactly one match. f runs on the first match before the
// count is checked, so an error from f takes precedence.
func Only[T any](s Scraper, selector string, f func(Scraper) (T, error)) (T, error) {
	var zero T
	matches, err := s.matches(selector)
	if err != nil {
		return zero, err
	}
	if matches.Length() == 0 {
		return zero, &ScrapeError{Cause: ErrCauseExpectedOneGotNone, Selector: selector}
	}
	value, err := f(Scraper{selection: matches.Eq(0)})
	if err != nil {
		return zero, err
	}
	if matches.Length() > 1 {
		return zero, &ScrapeError{Cause: ErrCauseExpectedOneGotMultiple, Selector: selector}
	}
	return value, nil
}

// Optional accepts zero or one match; ok is false when nothing matched.
func Optional[T any](s Scraper, selector string, f func(Scraper) (T, error)) (T, bool, error) {
	var zero T
	matches, err := s.matches(selector)
	if err != nil {
		return zero, false, err
	}
	if matches.Length() == 0 {
		return zero, false, nil
	}
	value, err := f(Scraper{selection: matches.Eq(0)})
	if err != nil {
		return zero, false, err
	}
	if matches.Length() > 1 {
		return zero, false, &ScrapeError{Cause: ErrCauseExpectedOptionalGotMultiple, Selector: selector}
	}
	return value, true, nil
}

func text(s Scraper) (string, error) {
	return s.Text(), nil
}

func inner(s Scraper) (string, error) {
	return s.HTML()
}

func markdown(s Scraper) (string, error) {
	return s.Markdown()
}

func attribute(selector, name string) func(Scraper) (string, error) {
	return func(s Scraper) (string, error) {
		value, ok := s.Attr(name)
		if !ok {
			return "", &ScrapeError{Cause: ErrCauseExpectedOneGotNone, Selector: selector, Attribute: name}
		}
		return value, nil
	}
}

func (s Scraper) AllText(selector string) ([]string, error) {
	return All(s, selector, text)
}

func (s Scraper) OnlyText(selector string) (string, error) {
	return Only(s, selector, text)
}

func (s Scraper) OptionalText(selector string) (string, bool, error) {
	return Optional(s, selector, text)
}

// AllAtt fails on the first match that lacks the attribute.
func (s Scraper) AllAtt(selector, name string) ([]string, error) {
	return All(s, selector, attribute(selector, name))
}

func (s Scraper) OnlyAtt(selector, name string) (string, error) {
	return Only(s, selector, attribute(selector, name))
}

// OptionalAtt returns ok=false when nothing matches. A match without the
// attribute is still an error.
func (s Scraper) OptionalAtt(selector, name string) (string, bool, error) {
	return Optional(s, selector, attribute(selector, name))
}

func (s Scraper) AllHTML(selector string) ([]string, error) {
	return All(s, selector, inner)
}

func (s Scraper) OnlyHTML(selector string) (string, error) {
	return Only(s, selector, inner)
}

func (s Scraper) OptionalHTML(selector string) (string, bool, error) {
	return Optional(s, selector, inner)
}

func (s Scraper) OnlyMarkdown(selector string) (string, error) {
	return Only(s, selector, markdown)
}

func (s Scraper) OptionalMarkdown(selector string) (string, bool, error) {
	return Optional(s, selector, markdown)
}
