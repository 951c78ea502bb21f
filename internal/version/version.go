// ABOUTME: Version information for dancefloor binaries
// ABOUTME: Product, manufacturer and version strings used in hello messages and headers
package version

// Version is the dancefloor release
const Version = "0.4.0"

// Product is the product name reported to peers
const Product = "dancefloor"

// Manufacturer is the maker reported to peers
const Manufacturer = "harperreed"

// String returns the product and version as "dancefloor/0.4.0"
func String() string {
	return Product + "/" + Version
}
