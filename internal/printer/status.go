package printer

import (
	"regexp"
	"strconv"
	"strings"
)

// voltage range the battery sweeps over, in millivolts
const (
	batteryEmptyMV = 3300
	batteryFullMV  = 4200
)

var voltagePattern = regexp.MustCompile(`VOLT=(\d+)mv`)

// Turns a raw status notification into a printable status line. Invalid
// UTF-8 is replaced rather than rejected since the firmware occasionally
// pads the line with stray bytes; surrounding whitespace and the trailing
// comma the firmware emits are stripped.
func decodeStatus(d []byte) string {
	text := strings.ToValidUTF8(string(d), "�")
	text = strings.TrimSpace(text)
	return strings.TrimRight(text, ",")
}

// Extracts the battery charge percentage from a status notification.
// Reports false when the notification carries no voltage field.
func parseBatteryLevel(d []byte) (int, bool) {
	m := voltagePattern.FindSubmatch(d)
	if m == nil {
		return 0, false
	}

	mv, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, false
	}

	level := (mv - batteryEmptyMV) * 100 / (batteryFullMV - batteryEmptyMV)
	if level < 0 {
		level = 0
	} else if level > 100 {
		level = 100
	}
	return level, true
}
