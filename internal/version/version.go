// ABOUTME: Version and product identification
// ABOUTME: Reported in logs, the feed handshake and -version output
package version

const (
	Version      = "0.1.0"
	Product      = "lanescope"
	Manufacturer = "Resonate"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}
