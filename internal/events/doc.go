// Package events detects and resolves discrete occurrences along a
// continuous trajectory: a switching function g crossing zero. Detection
// works against the dense output of the last accepted integration step and
// resolves each crossing to a caller tolerance before driving the caller's
// handler, whose [Action] decides whether propagation continues, stops, or
// rewrites the trajectory state.
//
// The building blocks:
//
//   - [Detector]: a switching function with timing parameters and a handler
//   - [EventState]: per-detector root search bookkeeping for one leg
//   - [Solver]: bracketed bisection/secant root refinement
//   - [Manager]: orders candidates chronologically across one step and
//     applies handlers earliest-first
//
// Decorators wrap any Detector and expose the same contract, so they
// compose: [SlopeFilter], [Shifter], [EnablingFilter], [BooleanDetector]
// and [Recorder].
//
// # Thread Safety
//
// Everything here is single-threaded by design: one Manager owns its
// EventStates for one propagation leg and is never shared.
package events
