/*
Package gsearch implements MinHash bottom-sketch similarity search over
DNA and protein k-mers: build compact sketches from sequence data, bundle
them into signatures, collect signatures into an index, and run
containment/Jaccard search, prefetch, and gather queries against that
index without ever touching the original sequences again.

The pieces are meant to be used independently:

  - hasher computes the underlying 64-bit k-mer hash.
  - kmer extracts and canonicalizes DNA/protein k-mer windows.
  - sketch holds the MinHash bottom sketch itself, num or scaled, with
    optional abundance tracking, and the set algebra (Jaccard,
    containment, ANI) that runs on pairs of them.
  - signature bundles one or more sketches with metadata into the
    on-disk wire format.
  - manifest is the flat row-oriented summary of a signature collection,
    used to narrow a search before loading any sketch.
  - index collects signatures into a queryable backend: in-memory,
    on-disk directory, zip archive, or SQLite inverted index.
  - search runs the query engines (Search, Prefetch, Gather) against any
    Index implementation.
  - taxonomy aggregates gather results against a lineage database.

See SPEC_FULL.md in the repository root for the full specification these
packages implement, and DESIGN.md for how each part is grounded.

cmd/gsearch wires all of the above into a command-line tool.
*/
package gsearch
