// Package resource keeps a benchmark workload within limits while it drives
// an ordex index.
//
// A Governor has three independent knobs:
//
//   - an entry budget: puts are admitted only while the index holds fewer
//     entries than MaxEntries; removes give the room back
//   - reader slots: at most MaxReaders queries hold a read view at once
//   - pacing: puts, removes and queries share one token bucket
//
// Admission never blocks, so a writer that hits the budget can turn its put
// into a remove:
//
//	if err := gov.Admit(1); err != nil {
//	    removed, _ := ix.Remove(ctx, r)
//	    if removed {
//	        gov.Evict(1)
//	    }
//	}
//
// Reader slots are released through the returned func:
//
//	release, err := gov.Reader(ctx)
//	if err != nil {
//	    return err
//	}
//	defer release()
//
// A nil *Governor admits everything.
package resource
