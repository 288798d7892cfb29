// Package journal implements the voice journal's transcription workflow.
//
// A Controller owns captured recordings in a Store and drives each one
// through a remote transcription.Provider:
//
//	NotSubmitted -> Submitting -> Pending -> Completed
//	                    |            |
//	                    +-> Failed <-+
//
// Submit makes one CreateJob call. Polls then run on a Scheduler at a fixed
// interval until the job completes, fails, or the poll budget is spent.
// A failed status query counts as in-progress. Delete cancels the scheduled
// poll, and each chain carries a generation token so a late response never
// lands on a deleted or re-created recording. Retry moves a Failed
// recording back to NotSubmitted.
package journal
