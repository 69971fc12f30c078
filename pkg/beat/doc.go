// ABOUTME: Beat detection against the song clock
// ABOUTME: Counter polls song time; Pulse drives the on-beat visual
// Package beat turns the song time produced by songtime.Authority into beat
// events.
//
// Counter polls a Clock once per frame and fires OnBeat when the song time
// reaches the next multiple of the beat interval. Because song time never
// moves backwards, each beat fires exactly once; during a catch-up the
// intervals are only compressed.
//
// Example:
//
//	counter := beat.NewCounter(auth, 120)
//	counter.OnBeat = func(n int64) { pulse.Trigger() }
package beat
