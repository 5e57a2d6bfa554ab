// Package bitdex builds bitmap predicate indexes over in-memory datasets.
//
// A Builder collects named predicates over records of one type and then
// evaluates every predicate against every record of a dataset. The result is
// an Index mapping each key to a bitmap whose bit i is set when the predicate
// holds for record i.
//
// # Quick Start
//
//	type Ticket struct {
//	    Status   string
//	    Assignee *User
//	    Labels   []string
//	}
//
//	status := bitdex.NewField("Status", func(t Ticket) string { return t.Status })
//	labels := bitdex.NewField("Labels", func(t Ticket) []string { return t.Labels })
//
//	b := bitdex.NewBuilder[Ticket]()
//	_ = bitdex.IndexFor(b, Ticket{Status: "Open"}, status)            // "Status.Open"
//	_ = bitdex.IndexForEach(b, Ticket{Labels: []string{"bug"}}, labels) // "Labels.bug"
//	_ = b.Register("Unassigned", func(t Ticket) bool { return t.Assignee == nil })
//	_ = b.ForData(tickets)
//
//	ix, err := b.Build(ctx)
//	for i, t := range ix.Matches("Status.Open") {
//	    fmt.Println(i, t)
//	}
//
// # Keys
//
// Derived keys are the dot-joined field path followed by the formatted value
// of the example record, e.g. "Assignee.Team.Core". Explicit keys are used
// verbatim. Registering a key twice fails with ErrDuplicateKey.
//
// # Bitmaps
//
// Build allocates one bitmap per key through a bitmap.Factory. The default is
// bitmap.DenseFactory; bitmap.RoaringFactory suits sparse predicates over
// large datasets. Built indexes can be persisted with package snapshot.
//
// # Lifecycle
//
// A Builder moves from empty to accumulating on the first registration and
// to finalized after a successful Build. A finalized Builder rejects every
// further call with ErrFinalized. A failed Build leaves the Builder as it was.
//
// # Concurrency
//
// A Builder is not safe for concurrent use. WithWorkers(n) evaluates keys on
// up to n goroutines during Build. A built Index is read-only and safe for
// concurrent readers.
package bitdex
