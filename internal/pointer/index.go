package pointer

// indexTable maps live pointer IDs onto the small index space [0, MaxPointers).
// New pointers take the lowest free slot, so released slots are reused before
// higher ones.
type indexTable struct {
	ids  [MaxPointers]int
	used [MaxPointers]bool
}

// assign places id in the lowest free slot and returns it, or false when the
// table is full.
func (t *indexTable) assign(id int) (int, bool) {
	for slot := range t.used {
		if !t.used[slot] {
			t.ids[slot] = id
			t.used[slot] = true
			return slot, true
		}
	}
	return -1, false
}

// lookup returns the slot holding id.
func (t *indexTable) lookup(id int) (int, bool) {
	for slot := range t.used {
		if t.used[slot] && t.ids[slot] == id {
			return slot, true
		}
	}
	return -1, false
}

// release frees the slot holding id, if any.
func (t *indexTable) release(id int) {
	if slot, ok := t.lookup(id); ok {
		t.used[slot] = false
		t.ids[slot] = 0
	}
}

// clear frees every slot.
func (t *indexTable) clear() {
	*t = indexTable{}
}
