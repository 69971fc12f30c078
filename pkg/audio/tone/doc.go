// ABOUTME: Calibration tone package
// ABOUTME: Generates the fixed-tempo chord track used to check beat alignment
// Package tone generates the calibration track: a short chord on every beat
// of a fixed-tempo pattern, used to check that beats seen by the game line up
// with what is heard.
package tone
