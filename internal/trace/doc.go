// Package trace routes pkt-line traffic to two diagnostic channels: a
// human-readable packet log and a verbatim dump of archive (pack) bytes.
//
// One Session exists per logical stream. Archive detection is sticky:
// once a stream starts carrying "PACK" data it stays classified that way.
package trace
