// Package session reassembles logical protocol responses from discrete
// transport reads.
//
// The device protocol has no transaction IDs, so responses cannot be
// attributed across overlapping requests; the exchanger keeps exactly one
// request in flight and owns the accumulating buffer for its duration.
package session
