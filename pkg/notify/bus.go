package notify

import (
	"github.com/rs/zerolog"

	log "github.com/cuemby/scpfw/internal/log"
	"github.com/cuemby/scpfw/pkg/fwkerr"
	"github.com/cuemby/scpfw/pkg/fwkid"
)

// key identifies a subscription list: a specific notification id raised by
// a specific source. Subscribing to the same notification from two
// different sources requires two separate Subscribe calls.
type key struct {
	notificationID fwkid.Id
	sourceID       fwkid.Id
}

// Bus is the framework's single notification subscription table, owned by
// the Registry alongside the Scheduler. It only tracks who is subscribed
// to what; it never calls a subscriber directly. Fanning a published
// notification out to subscribers happens by enqueuing one event copy per
// subscriber through the scheduler — see (*module.Registry).Publish —
// exactly like any other event, so it is task-context-only and needs no
// locking of its own.
type Bus struct {
	log           zerolog.Logger
	subscriptions map[key][]fwkid.Id
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{
		log:           log.WithComponent("notify"),
		subscriptions: make(map[key][]fwkid.Id),
	}
}

// Subscribe registers subscriberID to be told whenever sourceID raises
// notificationID. The source must be a module or an element; the
// subscriber must be a module, element, or sub-element. Re-subscribing
// the same (notification, source, subscriber) triple is a no-op:
// subscription lists never hold duplicates, so a subscriber is fanned
// out to at most once per publish.
func (b *Bus) Subscribe(notificationID, sourceID, subscriberID fwkid.Id) error {
	if notificationID.Kind() != fwkid.KindNotification {
		return fwkerr.New("notify.Subscribe", fwkerr.ParamError, nil)
	}
	switch sourceID.Kind() {
	case fwkid.KindModule, fwkid.KindElement:
	default:
		return fwkerr.New("notify.Subscribe", fwkerr.ParamError, nil)
	}
	switch subscriberID.Kind() {
	case fwkid.KindModule, fwkid.KindElement, fwkid.KindSubElement:
	default:
		return fwkerr.New("notify.Subscribe", fwkerr.ParamError, nil)
	}
	k := key{notificationID: notificationID, sourceID: sourceID}
	for _, existing := range b.subscriptions[k] {
		if existing == subscriberID {
			return nil
		}
	}
	b.subscriptions[k] = append(b.subscriptions[k], subscriberID)
	return nil
}

// Unsubscribe removes subscriberID's registration under (notificationID,
// sourceID). It is not an error to unsubscribe an id that was never
// subscribed; callers are not expected to track their own subscription
// state precisely.
func (b *Bus) Unsubscribe(notificationID, sourceID, subscriberID fwkid.Id) {
	k := key{notificationID: notificationID, sourceID: sourceID}
	subs := b.subscriptions[k]
	for i, existing := range subs {
		if existing == subscriberID {
			b.subscriptions[k] = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the current subscriber list for (notificationID,
// sourceID), in subscription order. The caller owns the returned slice: it
// is a copy, unaffected by later Subscribe/Unsubscribe calls on the same
// key.
func (b *Bus) Subscribers(notificationID, sourceID fwkid.Id) []fwkid.Id {
	existing := b.subscriptions[key{notificationID: notificationID, sourceID: sourceID}]
	out := make([]fwkid.Id, len(existing))
	copy(out, existing)
	return out
}

// SubscriberCount reports how many ids are currently subscribed to
// (notificationID, sourceID), used by tests.
func (b *Bus) SubscriberCount(notificationID, sourceID fwkid.Id) int {
	return len(b.subscriptions[key{notificationID: notificationID, sourceID: sourceID}])
}
