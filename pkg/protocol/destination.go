package protocol

import "strings"

// Destination is the two-level folder path a submission's files land in:
// Fahrzeugprotokolle/<plate>/<session>/.
type Destination struct {
	PlateFolder   string
	SessionFolder string
}

// DeriveDestination maps plate, date and time onto the folder names. The
// plate is uppercased, sanitized and de-spaced ("M-AB 123" -> "M-AB_123");
// the session name is unique to the minute for a given plate, so a repeated
// submission with the same date and time reuses the same folder.
func DeriveDestination(plate, date, tm string) Destination {
	return Destination{
		PlateFolder:   strings.ReplaceAll(SanitizeFilename(strings.ToUpper(plate)), " ", "_"),
		SessionFolder: strings.ReplaceAll(date, ".", "-") + "_" + strings.ReplaceAll(tm, ":", "-"),
	}
}
