// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit records before/after deltas of tracked numeric fields.

Exercises and body weight entries write to changes_audit, personal records
to pr_changes_audit. One row is written per changed field:

	var changes []audit.Change
	if c, ok := audit.Track("weight", before.Weight, after.Weight); ok {
		changes = append(changes, c)
	}
	audit.NewWriter(db).Record(ctx, audit.TableChanges, "Bench Press", "push", changes)

percentage_change is (new-prev)/prev*100, and 0 when the previous value is
missing or zero.

Writes happen after the audited mutation has committed. A failed audit
insert is logged and never undoes or fails the mutation, so the trail may
have gaps.
*/
package audit
