// Package render turns a clip's render configuration into a vertical
// 1080x1920 preview: the facecam rectangle scaled across the top, a centered
// 9:16 gameplay crop filling the rest, and captions burned in when the clip
// has them.
package render
