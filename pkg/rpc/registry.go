package rpc

// registry maps correlation ids to outstanding requests. It is an arena
// indexed by id: released ids go on a free list and are reused, most
// recent first, before the counter grows. Id 0 is never issued.
//
// Not safe for concurrent use; Client guards it with its mutex.
type registry struct {
	slots []Request
	free  []uint64
	last  uint64
}

func newRegistry() *registry {
	return &registry{slots: make([]Request, 1)}
}

// acquire stores req under a fresh id.
func (r *registry) acquire(req Request) uint64 {
	var id uint64
	if n := len(r.free); n > 0 {
		id = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.last++
		id = r.last
		r.slots = append(r.slots, nil)
	}
	r.slots[id] = req
	return id
}

// release clears the slot of id and frees the id. It returns nil if the id
// is not outstanding.
func (r *registry) release(id uint64) Request {
	if id == 0 || id >= uint64(len(r.slots)) {
		return nil
	}
	req := r.slots[id]
	if req == nil {
		return nil
	}
	r.slots[id] = nil
	r.free = append(r.free, id)
	return req
}

// releaseIf releases id only while it still belongs to req.
func (r *registry) releaseIf(id uint64, req Request) bool {
	if id == 0 || id >= uint64(len(r.slots)) || r.slots[id] != req {
		return false
	}
	r.release(id)
	return true
}

func (r *registry) lookup(id uint64) Request {
	if id >= uint64(len(r.slots)) {
		return nil
	}
	return r.slots[id]
}

// outstanding returns the number of ids currently in use.
func (r *registry) outstanding() int {
	return int(r.last) - len(r.free)
}
