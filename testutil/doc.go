// Package testutil provides testing utilities for ordex.
//
// This package is intended for use in tests, benchmarks and the ordex-bench
// workload generator. It provides a seeded, thread-safe RNG, key
// distributions and sink collectors.
//
// # Random Keys
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.UniqueInts(1000, 1_000_000)  // distinct, random order
//	perm := rng.Perm(100)                     // permutation of [0, 100)
//
// # Skewed Keys
//
//	z := rng.NewZipf(1000, 1.2)
//	k := z.Next()
//
// # Collecting Results
//
//	got := testutil.SelectAll[int](idx, false, nil)
package testutil
