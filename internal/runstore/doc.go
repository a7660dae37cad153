// Package runstore persists the ledger of batch runs and per-job outcomes in
// SQLite.
//
// Each batch run gets a UUID and one row in the runs table; the orchestrator's
// collector appends one jobs row per finished job. The CLI reads the ledger to
// list past runs and show which inputs failed and why.
package runstore
