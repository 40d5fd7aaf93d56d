// Package subtitles captions clips.
//
// A Transcriber turns a clip's media into timed segments; the Generator walks
// the clip directories, transcribes each raw segment, and writes a standard
// SRT file next to it for the renderer to burn in.
package subtitles
