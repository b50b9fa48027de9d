// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package schedule loads the tournament match schedule from CSV into an
immutable registry.

The CSV must carry the columns MatchNo, Date, Day, Teams, MatchTime,
Venue, PollStartTime and PollEndTime. Dates are written as "5 Apr 2025"
and poll times as "7:30 PM" in the schedule's source timezone
(Asia/Kolkata); poll-open instants are converted to UTC at load time.

Playoff rows use placeholder team names (Qualifier 1, Eliminator,
Final) until the teams are decided; Match.Undecided reports those.
*/
package schedule
