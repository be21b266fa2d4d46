package proxy

import "strconv"

// ReasonKind enumerates why a gene was retained as its cluster's proxy.
type ReasonKind int

const (
	// ReasonSingleton: the cluster has exactly one member.
	ReasonSingleton ReasonKind = iota
	// ReasonMode: chosen from the members at the modal protein length;
	// N records how many members shared it.
	ReasonMode
	// ReasonMedian: no strict length mode; chosen from the low/high
	// median pair.
	ReasonMedian
	// ReasonBadSynteny: anchored but alone in its synteny group, which
	// usually means an anchor collision.
	ReasonBadSynteny
	// ReasonSingle: sole member of the unanchored group.
	ReasonSingle
)

// Reason is the discrete retention code attached to each proxy choice.
type Reason struct {
	Kind ReasonKind
	// N is the modal-length member count, set only for ReasonMode.
	N int
}

func (r Reason) String() string {
	switch r.Kind {
	case ReasonSingleton:
		return "singleton"
	case ReasonMode:
		return "mode" + strconv.Itoa(r.N)
	case ReasonMedian:
		return "median"
	case ReasonBadSynteny:
		return "bad_synteny"
	case ReasonSingle:
		return "single"
	}
	return "unknown"
}
