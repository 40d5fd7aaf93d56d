// Package whisperx runs WhisperX through uvx to caption clips.
//
// The service builds the uvx command line, executes it with an injectable
// runner, and decodes the JSON segment output into subtitle cues.
package whisperx
