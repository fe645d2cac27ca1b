package common

import (
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner.
func PrintBanner(version string) {
	banner.PrintSimple("MOPS Financial API", version)
}
