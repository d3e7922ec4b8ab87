// Package workload drives a randomized read/write workload against a
// two-level ordex index (bucket, then id) and reports throughput.
//
// Writers and readers run concurrently under an errgroup. A
// resource.Governor paces them, caps concurrent queries and turns puts into
// removes once the entry budget is used up.
package workload
