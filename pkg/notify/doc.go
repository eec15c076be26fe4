/*
Package notify implements the notification bus: the per-(source,
notification id) subscription lists behind publish/subscribe. Fan-out
itself is not this package's job — (*module.Registry).Publish reads a
Bus's subscriber list and enqueues one event copy per subscriber through
the scheduler, exactly the way any other event is submitted, so a
notification is delivered to a subscriber's ProcessNotification callback
through the ordinary dispatch loop rather than by a direct call from here.

Subscriptions are keyed by the (notification id, source id) pair: a module
or element subscribes to a specific notification raised by a specific
source, not to the notification kind globally. Wildcard subscription
(subscribe to a notification from any source) is deliberately not
supported.

Bus never imports pkg/module or pkg/scheduler: it only tracks fwkid.Id
values, the same way pkg/scheduler never imports pkg/module, so the three
packages compose in pkg/module without an import cycle.
*/
package notify
