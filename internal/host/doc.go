// Package host drives a rack from outside the audio library: a streaming
// reader for real-time playback through oto, offline rendering of whole
// buffers, and WAV file I/O.
package host
