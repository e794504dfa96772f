package frames

import (
	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/util"

	"google.golang.org/grpc/codes"
)

// Pool of page frames with a fixed capacity. The pool tracks which
// pages are resident, in a display order that is maintained by the
// caller. It makes no eviction decisions of its own.
//
// Pools do not permit concurrent access. Every simulation run owns a
// pool of its own.
type Pool struct {
	capacity int
	resident []reference.PageID
	index    map[reference.PageID]struct{}
}

// ValidateCapacity returns an error if a frame pool cannot be created
// with a given number of frames.
func ValidateCapacity(capacity int) error {
	if capacity <= 0 {
		return util.KindErrorf(codes.InvalidArgument, util.ErrorKindInvalidCapacity, "Frame pool capacity must be positive, while %d frames were requested", capacity)
	}
	return nil
}

// NewPool creates an empty frame pool that can hold up to capacity
// pages. Storage is allocated for at most sizeHint pages upfront, as
// the capacity is provided by clients and may be arbitrarily large.
func NewPool(capacity, sizeHint int) (*Pool, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return nil, err
	}
	sizeHint = max(min(capacity, sizeHint), 0)
	return &Pool{
		capacity: capacity,
		resident: make([]reference.PageID, 0, sizeHint),
		index:    make(map[reference.PageID]struct{}, sizeHint),
	}, nil
}

// Capacity returns the number of frames in the pool.
func (p *Pool) Capacity() int {
	return p.capacity
}

// Len returns the number of resident pages.
func (p *Pool) Len() int {
	return len(p.resident)
}

// Contains returns whether a page is resident.
func (p *Pool) Contains(id reference.PageID) bool {
	_, ok := p.index[id]
	return ok
}

// IsFull returns whether all frames are occupied.
func (p *Pool) IsFull() bool {
	return len(p.resident) >= p.capacity
}

// Admit a page into a free frame, placing it at the back of the
// display order. Admitting a page that is already resident has no
// effect. Callers must evict a page before admitting into a full pool.
func (p *Pool) Admit(id reference.PageID) error {
	if p.Contains(id) {
		return nil
	}
	if p.IsFull() {
		return util.KindErrorf(codes.Internal, util.ErrorKindCapacityExceeded, "Cannot admit page %#v, as all %d frames are occupied", string(id), p.capacity)
	}
	p.resident = append(p.resident, id)
	p.index[id] = struct{}{}
	return nil
}

// Evict a resident page, freeing its frame.
func (p *Pool) Evict(id reference.PageID) error {
	i := p.position(id)
	if i < 0 {
		return util.KindErrorf(codes.Internal, util.ErrorKindNotResident, "Cannot evict page %#v, as it is not resident", string(id))
	}
	p.resident = append(p.resident[:i], p.resident[i+1:]...)
	delete(p.index, id)
	return nil
}

// MoveToBack moves a resident page to the back of the display order.
// This only affects the output of Snapshot(). Calling it for a page
// that is not resident has no effect.
func (p *Pool) MoveToBack(id reference.PageID) {
	if i := p.position(id); i >= 0 {
		copy(p.resident[i:], p.resident[i+1:])
		p.resident[len(p.resident)-1] = id
	}
}

// Snapshot returns a copy of the resident pages in display order.
func (p *Pool) Snapshot() []reference.PageID {
	return append(make([]reference.PageID, 0, len(p.resident)), p.resident...)
}

func (p *Pool) position(id reference.PageID) int {
	if !p.Contains(id) {
		return -1
	}
	for i, resident := range p.resident {
		if resident == id {
			return i
		}
	}
	panic("Page is indexed, but not present in the display order")
}
