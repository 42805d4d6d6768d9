package dashboard

import "github.com/nao1215/trackerscope/internal/model"

// Inbox is a single-slot queue for broken-site reports: a bounded queue
// of depth one with overwrite-oldest semantics. At most one report is
// ever pending; putting a new report before the previous one is
// consumed drops the older report.
//
// Design decision: a one-element buffered channel gives the
// at-most-one-pending guarantee without a mutex, and TryTake maps
// directly onto a non-blocking receive.
type Inbox struct {
	slot chan *model.SiteSnapshot
}

// NewInbox creates an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{slot: make(chan *model.SiteSnapshot, 1)}
}

// Put places a report in the inbox, replacing any unconsumed report.
// Put never blocks.
func (in *Inbox) Put(snapshot *model.SiteSnapshot) {
	for {
		select {
		case in.slot <- snapshot:
			return
		default:
			// Slot occupied: drop the oldest pending report and retry.
			// The inner receive is non-blocking because a concurrent
			// consumer may have emptied the slot in the meantime.
			select {
			case <-in.slot:
			default:
			}
		}
	}
}

// TryTake removes and returns the pending report, or nil if the inbox
// is empty. TryTake never blocks.
func (in *Inbox) TryTake() *model.SiteSnapshot {
	select {
	case snapshot := <-in.slot:
		return snapshot
	default:
		return nil
	}
}
