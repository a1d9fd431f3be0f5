package geometry

import "fmt"

// FetchError: the mesh bytes could not be retrieved (network failure or a
// non-2xx response). A 404 on a derived URL lands here and makes the caller
// fall through to the next asset tier.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError: the bytes were retrieved but are not a valid mesh.
type ParseError struct {
	Format string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s data: %s", e.Format, e.Reason)
}

// DegenerateGeometryError guards the scale division: a zero-size bounding
// box cannot be normalized.
type DegenerateGeometryError struct {
	Name string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("mesh %q has a zero-size bounding box", e.Name)
}
