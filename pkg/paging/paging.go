// Package paging slices fully loaded lists into "load more" windows.
package paging

// DefaultBatch is the number of items revealed per load.
const DefaultBatch = 10

// LoadMore returns the next window after the first loaded items and whether
// anything remains beyond it.
func LoadMore[T any](items []T, loaded, batch int) ([]T, bool) {
	if batch <= 0 {
		batch = DefaultBatch
	}
	if loaded < 0 {
		loaded = 0
	}
	if loaded >= len(items) {
		return []T{}, false
	}
	end := loaded + batch
	if end > len(items) {
		end = len(items)
	}
	return items[loaded:end], end < len(items)
}
