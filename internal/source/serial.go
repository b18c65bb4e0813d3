package source

import (
	"fmt"
	"os"
)

// DefaultBaud is the PmodGPS factory rate.
const DefaultBaud = 9600

// AutoDetectDevice returns the first /dev/ttyACM* or /dev/ttyUSB* node that
// exists, or "" when none does.
func AutoDetectDevice() string {
	candidates := []string{}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyACM%d", i))
	}
	for i := 0; i < 10; i++ {
		candidates = append(candidates, fmt.Sprintf("/dev/ttyUSB%d", i))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
