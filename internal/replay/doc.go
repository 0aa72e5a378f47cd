// Package replay feeds recorded pointer event streams through a
// pointer.Tracker and captures the tracker state after every event.
//
// Streams are read from JSON Lines or CSV files. Each applied event yields a
// Frame which is handed to a Sink: SliceSink keeps frames in memory for
// charting, DBSink persists events and frames as a session in the db package.
package replay
