// Package overlay resolves the effective attributes of tanks at a chosen game
// version, given attributes supplied incrementally by many independently
// authored data files.
//
// Each file contributes a batch of edits. An edit targets one tank, takes
// effect from an effective game version (or from the dawn of time when
// unversioned), and either sets values or retracts them (a tombstone). Files
// are ordered by their file version; later files supersede earlier ones at and
// after the versions they touch.
//
// Resolution runs in three stages:
//
//   - Accumulation folds the batches into one ordered timeline per tank,
//     discarding duplicate edits and redundant tombstones.
//   - Inheritance lets a property fill in the values it leaves unset from
//     another property, after removing dangling references and cycles.
//   - Projection collapses every timeline into the single value valid at the
//     target game version, producing an immutable Snapshot.
//
// Anomalies in the data never fail a resolution. They are recorded as
// warnings on the Snapshot and the offending records are dropped.
//
// Reading data files is left to collaborators (see the source subpackage),
// which must reject malformed files before their edits reach this package.
package overlay
