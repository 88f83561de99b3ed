package songscore

// Dynamics ********************************************************************

const DefaultDynamic = "mf"

var dynamicVelocity = map[string]int{
	"ppp": 20,
	"pp":  31,
	"p":   42,
	"mp":  53,
	"mf":  64,
	"f":   80,
	"ff":  96,
	"fff": 112,
}

// marks considered when a velocity is turned back into a marking, softest first
var reverseDynamics = []string{"pp", "p", "mp", "mf", "f", "ff"}

// DynamicVelocity maps a marking onto a MIDI velocity, mf for unknown marks.
func DynamicVelocity(mark string) int {
	if v, ok := dynamicVelocity[mark]; ok {
		return v
	}
	return dynamicVelocity[DefaultDynamic]
}

func KnownDynamic(mark string) bool {
	_, ok := dynamicVelocity[mark]
	return ok
}

// VelocityDynamic returns the marking whose velocity is closest.
func VelocityDynamic(velocity int) string {
	if velocity <= 0 {
		return DefaultDynamic
	}
	best := reverseDynamics[0]
	bestDist := -1
	for _, mark := range reverseDynamics {
		d := velocity - dynamicVelocity[mark]
		if d < 0 {
			d = -d
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = mark, d
		}
	}
	return best
}
