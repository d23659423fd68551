// Package kernel contains shared domain primitives used across aggregates.
//
// The package includes:
//   - UUID: identifier value object wrapping github.com/google/uuid
//   - Coordinates: geographic latitude/longitude value object with
//     great-circle (haversine) distance computation
//   - EstimateETA / FormatDistance: pure display helpers for the tracking UI
//
// All types are immutable value objects created through constructor functions
// and validated via the constructor-guard pattern.
package kernel
