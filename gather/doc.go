// Package gather groups traces by composite header keys.
//
// An Index maps ordered float64 key tuples (CDP number and offset plane,
// source and receiver ids, inline and crossline) to caller-defined payloads
// such as stack accumulators or fold counters. Keys are compared exactly,
// field by field; callers quantize continuous header values onto bin
// numbers first (see Quantize) so that equality is meaningful. The index
// keeps its keys in strictly increasing order and enforces a declared
// capacity so a mis-binned job fails instead of silently swallowing
// memory.
//
//	idx, err := gather.New[Stack](2, maxCDPs)
//	p, err := idx.Get(key, func() Stack { return newStack(ns) })
//	p.Add(trace)
package gather
