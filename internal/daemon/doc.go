// Package daemon hosts the long-running "clipper serve" process.
//
// A Daemon holds a single-instance file lock, runs the HTTP API, and schedules
// the maintenance job that prunes old run history and log files with
// robfig/cron.
package daemon
