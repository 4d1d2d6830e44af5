package processors

// DuplicateDetector indexes record identifiers and reports ids seen before.
// It is deterministic: the same input sequence always yields the same answers.
type DuplicateDetector struct {
	seen  map[string]struct{}
	count int
}

// NewDuplicateDetector seeds the index with existing identifiers, typically
// the ids of the snapshot that was current when the import started.
func NewDuplicateDetector(existingIDs []string) *DuplicateDetector {
	d := &DuplicateDetector{seen: make(map[string]struct{}, len(existingIDs))}
	for _, id := range existingIDs {
		d.seen[id] = struct{}{}
	}
	return d
}

// IsDuplicate reports whether id is already indexed and indexes it otherwise.
func (d *DuplicateDetector) IsDuplicate(id string) bool {
	if _, ok := d.seen[id]; ok {
		d.count++
		return true
	}
	d.seen[id] = struct{}{}
	return false
}

// Count returns how many duplicates have been reported so far.
func (d *DuplicateDetector) Count() int {
	return d.count
}
