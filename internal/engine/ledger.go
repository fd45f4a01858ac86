package engine

// shift records that a replacement anchored at origin (a byte offset in the
// original text) changed the text length by delta.
type shift struct {
	origin int
	delta  int
}

type ledger []shift

// offset is the total shift contributed by replacements whose original start
// lies strictly before pos.
func (l ledger) offset(pos int) int {
	total := 0
	for _, s := range l {
		if s.origin < pos {
			total += s.delta
		}
	}
	return total
}

func (l *ledger) record(origin, delta int) {
	if delta != 0 {
		*l = append(*l, shift{origin: origin, delta: delta})
	}
}
