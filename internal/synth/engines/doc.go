// Package engines provides the speech engines paste2audio can synthesize
// with: a Kokoro HTTP server, the piper and gtts-cli command line tools,
// Yandex SpeechKit over gRPC, and a tone generator for tests and demos.
package engines
