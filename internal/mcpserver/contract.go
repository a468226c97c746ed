package mcpserver

// StatusVocabulary describes the statuses shared by every record type.
const StatusVocabulary = `# casedesk status vocabulary

Cases, customers, investigations and targets all carry one of these statuses.
New records start as ` + "`open`" + ` when no status is given.

| Status        | Meaning                                              |
|---------------|------------------------------------------------------|
| ` + "`open`" + `        | Registered, no work has started yet.                 |
| ` + "`in_progress`" + ` | Actively being worked.                               |
| ` + "`on_hold`" + `     | Paused, waiting on an external party or decision.    |
| ` + "`closed`" + `      | Finished. Kept for reference and reporting.          |

## Relationships

- A customer belongs to exactly one case (` + "`case_id`" + `).
- An investigation belongs to exactly one case (` + "`case_id`" + `).
- A target belongs to exactly one investigation (` + "`investigation_id`" + `).
- Deleting a case removes its customers, investigations, their targets and its attachments.

## Searching

- ` + "`status`" + ` matches exactly and applies to cases, investigations and targets.
- Text filters are case-insensitive substring matches.
- With ` + "`cross_entity`" + `, ` + "`customer_name`" + ` selects the cases owning a matching customer and
  ` + "`target_name`" + ` selects the investigations owning a matching target.
- Investigation dates use ` + "`YYYY-MM-DD`" + `.
`
