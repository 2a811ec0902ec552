package model

// DigestEntry is the retained result of one job in a run.
type DigestEntry struct {
	Name    string
	Job     Job
	Offers  []Offer
	Summary PriceSummary
}

// RunDigest collects per-job results in insertion order for the end-of-run report.
type RunDigest struct {
	entries []DigestEntry
	index   map[string]int
}

// NewRunDigest creates an empty digest.
func NewRunDigest() *RunDigest {
	return &RunDigest{index: make(map[string]int)}
}

// Add stores an entry. A second entry with the same name replaces the first
// without changing its position.
func (d *RunDigest) Add(entry DigestEntry) {
	if i, ok := d.index[entry.Name]; ok {
		d.entries[i] = entry
		return
	}
	d.index[entry.Name] = len(d.entries)
	d.entries = append(d.entries, entry)
}

// Entries returns the entries in insertion order.
func (d *RunDigest) Entries() []DigestEntry {
	out := make([]DigestEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Get returns the entry stored under name.
func (d *RunDigest) Get(name string) (DigestEntry, bool) {
	i, ok := d.index[name]
	if !ok {
		return DigestEntry{}, false
	}
	return d.entries[i], true
}

// Len returns the number of entries.
func (d *RunDigest) Len() int {
	return len(d.entries)
}
