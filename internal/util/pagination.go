package util

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Offset turns a zero based page and a page size into an offset and limit.
// A negative page is the first page; a size out of range is the default size.
func Offset(page, size int) (offset, limit int) {
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page * size, size
}
