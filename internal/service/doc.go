package service

// Package service supervises yt-dlp download processes.
//
// Overview
// A Supervisor owns one yt-dlp process for one URL. Start returns at once;
// a pump goroutine spawns the process through a Runner, reads its stdout line
// by line, feeds each line to progress.ParseLine and publishes every parsed
// record to the registered Listeners. When the process ends the record is
// finalized and each listener receives one last status update followed by
// exactly one Completed call.
//
// Runner is a thin, opinionated wrapper around os/exec:
//   - starts the process in its own process group
//   - streams stdout as lines over a channel (\r and \n both end a line)
//   - drains stderr in an extra goroutine, keeping the last lines
//   - reaps the process and exposes the Result
//   - Kill signals the whole group and may race with Start safely
//
// Data flow:
//
//   caller                Supervisor{url}            Runner{cmd}
//     |                        |                         |
//     | Start() -------------->| go pump() ------------->| Start()
//     |                        |<------- stdout lines ---| scanner goroutine
//     |                        | ParseLine/State.Apply   |
//     |<-- StatusUpdate(rec) --|                         |
//     |                        |<------- Done() ---------| Wait()
//     |<-- Completed(status) --|                         |
//
// Dispatcher is an optional Listener which hands the events over to another
// goroutine, coalescing status updates a slow consumer could not keep up with.
//
// Invariants:
//   - At most one process per Supervisor, spawned at most once.
//   - Unparseable lines never change the record.
//   - Completed is the last notification and is delivered exactly once.
//   - Retries happen inside yt-dlp (-R), never by respawning.
//   - Cancel never waits for the process.
//
// internal/service/supervisor_test.go is the best source about how to use
// the Supervisor.
