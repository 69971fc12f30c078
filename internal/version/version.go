// ABOUTME: Version information for songclock
// ABOUTME: Product, manufacturer and version reported in logs and the TUI
package version

const (
	// Product is the product name
	Product = "songclock"

	// Manufacturer is reported alongside the product name
	Manufacturer = "Resonate Protocol"

	// Version is the release version
	Version = "0.3.0"
)

// String returns the product and version for log lines
func String() string {
	return Product + " " + Version
}
