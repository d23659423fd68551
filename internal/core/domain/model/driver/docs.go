// Package driver provides the Driver aggregate for the dispatch directory and
// the Location Tracker.
//
// A driver record is created once on registration and lives for the whole
// session. Its position fields are mutated exclusively by that driver's own
// device through position reports, so there is no cross-writer race; any
// number of observers read them concurrently via snapshots. The availability
// status (IDLE/OFFLINE) is informational only and never gates assignment.
package driver
