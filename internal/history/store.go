package history

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"

	"github.com/tetsadou/pixup/internal/api"
)

// PerPage is the fixed page size of the history gallery.
const PerPage = 6

// ErrPageOutOfRange is returned by JumpTo for pages outside [1, TotalPages].
// The current page is left untouched; callers surface a warning.
var ErrPageOutOfRange = fmt.Errorf("page out of range")

// SortOrder selects how Items are ordered. The server returns newest-first,
// which is kept as the default.
type SortOrder int

const (
	SortByTime SortOrder = iota
	SortByName
)

// Store holds the full history list client-side and slices it into pages.
// It is not safe for concurrent use: all mutation happens from the event
// handling goroutine that owns it. Reloads replace the list wholesale, so
// when two reloads overlap, the last Replace call wins.
type Store struct {
	items []api.HistoryItem
	page  int
}

func NewStore() *Store {
	return &Store{page: 1}
}

// Replace swaps in a freshly fetched list. A current page that fell out of
// range (items deleted, history cleared elsewhere) resets to page 1; a still
// valid page is kept so deleting one item does not yank the user back.
func (s *Store) Replace(items []api.HistoryItem) {
	s.items = items
	if s.page < 1 || s.page > s.TotalPages() {
		s.page = 1
	}
}

// Items returns the full list in its current order.
func (s *Store) Items() []api.HistoryItem {
	return s.items
}

func (s *Store) Len() int {
	return len(s.items)
}

func (s *Store) Empty() bool {
	return len(s.items) == 0
}

func (s *Store) CurrentPage() int {
	return s.page
}

// TotalPages is ceil(len/PerPage); zero for an empty list, which callers
// render as the empty state rather than page 1 of 0.
func (s *Store) TotalPages() int {
	return (len(s.items) + PerPage - 1) / PerPage
}

// Page returns the slice of items on the current page.
func (s *Store) Page() []api.HistoryItem {
	start := (s.page - 1) * PerPage
	if start >= len(s.items) {
		return nil
	}
	end := start + PerPage
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[start:end]
}

// JumpTo moves to a 1-indexed page. Out-of-range pages are rejected without
// changing state.
func (s *Store) JumpTo(page int) error {
	if page < 1 || page > s.TotalPages() {
		return ErrPageOutOfRange
	}
	s.page = page
	return nil
}

// Prev moves one page back if possible and reports whether it moved.
func (s *Store) Prev() bool {
	if s.page <= 1 {
		return false
	}
	s.page--
	return true
}

// Next moves one page forward if possible and reports whether it moved.
func (s *Store) Next() bool {
	if s.page >= s.TotalPages() {
		return false
	}
	s.page++
	return true
}

func (s *Store) HasPrev() bool {
	return s.page > 1
}

func (s *Store) HasNext() bool {
	return s.page < s.TotalPages()
}

// ControlsVisible reports whether pagination controls should be shown at all.
func (s *Store) ControlsVisible() bool {
	return s.TotalPages() > 1
}

// ResetPage returns to page 1. Used after a new upload and after clearing the
// history, both of which make the newest page the interesting one.
func (s *Store) ResetPage() {
	s.page = 1
}

// Find returns the item with the given ID.
func (s *Store) Find(id string) (api.HistoryItem, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return api.HistoryItem{}, false
}

// Sort reorders the list in place. SortByTime restores the server order
// contract only when upload times are comparable strings, which they are
// ("2006-01-02 15:04:05"); SortByName uses natural ordering so "img2" sorts
// before "img10".
func (s *Store) Sort(order SortOrder) {
	switch order {
	case SortByName:
		sort.SliceStable(s.items, func(i, j int) bool {
			return natural.Less(s.items[i].FileName, s.items[j].FileName)
		})
	case SortByTime:
		sort.SliceStable(s.items, func(i, j int) bool {
			return s.items[i].UploadTime > s.items[j].UploadTime
		})
	}
}
