// Package reconstruct turns the discrete, irregularly sampled rate
// observations the device records into continuous delivery semantics:
// scheduled-basal segments and bolus episodes. The wire format has no
// explicit episode boundary marker; durations are inferred from the gaps
// between consecutive samples.
//
// Input must be in ascending time order (payload order). Out-of-order input
// is a caller contract violation, not handled defensively; clock glitches
// that produce a negative gap between two adjacent samples are logged and
// clamped rather than aborting the batch.
package reconstruct
