// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package predictions holds the prediction table and the business logic
over it: vote reconciliation, match scoring, and the leaderboard.

A prediction row's identity is (match number, casefolded username).
The store cannot enforce that invariant, so the reconciler does: a
first vote inserts, a repeat vote overwrites in place and resets the
correctness flag, and an empty vote (retraction) removes the row
entirely. Every mutation is a full read-all / replace-all round trip
against the sheet; the bot's single event loop is what serializes
them.

Scoring is match-scoped: declaring a winner rewrites the correctness
flag for that match's rows only, normalizing the winner to the
schedule's casing first. The leaderboard is derived on every query
from a fresh table scan and is never cached.
*/
package predictions
