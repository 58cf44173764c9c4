// Package audio plays WAV recordings through oto/v3. A Player holds one
// loaded file and supports play, pause, seek, reset and volume; its position
// is derived from the bytes the device has consumed.
package audio
