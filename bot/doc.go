// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package bot wires the chat transport, schedule registry, poll map and
prediction table into one single-threaded event loop.

Inbound commands, poll answers and scheduled poll jobs are all
processed sequentially on that loop. The tabular store underneath has
no transactions, so this serialization is the only thing keeping
read-all/replace-all cycles from interleaving; nothing in this package
may mutate the store from another goroutine.

Every command receives a reply, success or explanation. Validation
problems (bad match number, bad winner name) are user-facing messages,
never crashes; a transport conflict is logged with ConflictMarker for
the supervisor and handled there.
*/
package bot
