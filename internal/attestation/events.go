package attestation

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EventKind names the append-only events the registry emits.
type EventKind string

const (
	EventNewProofOfAuthority EventKind = "NewProofOfAuthority"
	EventNewProofOfSignature EventKind = "NewProofOfSignature"
	EventNewProofOfAgreement EventKind = "NewProofOfAgreement"
)

// Event is one emitted registry event. ProofCID identifies the record the
// event refers to.
type Event struct {
	Kind     EventKind
	ProofCID CID
}

// Bus is an in-process, many-to-many event hub: every store* call that
// succeeds publishes one Event, and any number of subscribers can drain
// it independently. A slow subscriber drops events rather than blocking
// the writer that published them.
type Bus struct {
	mu   sync.RWMutex
	subs []chan Event
	log  *zap.Logger
}

// NewBus builds an empty Bus. log may be nil only in tests.
func NewBus(log *zap.Logger) *Bus {
	return &Bus{log: log}
}

// Subscribe returns a buffered channel receiving every future event. The
// caller must keep draining it; a full channel causes events to be
// dropped for that subscriber only.
func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, 256)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers ev to every current subscriber without blocking.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			if b.log != nil {
				b.log.Warn("attestation: dropping event for slow subscriber",
					zap.String("kind", string(ev.Kind)), zap.String("proofCID", string(ev.ProofCID)))
			}
		}
	}
}
