// Package cache keeps recently synthesized chunks in memory so repeated
// text is not sent to the speech engine twice.
package cache
