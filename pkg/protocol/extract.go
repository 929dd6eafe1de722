package protocol

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// PhotoFile is one extracted photo: its target filename and either the
// decoded bytes or the decode error.
type PhotoFile struct {
	Name string
	Data []byte
	Err  error
}

// DecodeImage decodes an embedded image payload. The payload may be a bare
// base64 string or a full data URI; anything up to the first comma is
// treated as the data-URI header and stripped.
func DecodeImage(payload string) ([]byte, error) {
	if i := strings.IndexByte(payload, ','); i >= 0 {
		payload = payload[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 image: %w", err)
	}
	return data, nil
}

// ExtractPhotos flattens a submission's photo groups into filename/bytes
// pairs in fixed order: required photos, then damage photos, then exterior
// and interior checklist photos. A failed decode yields an entry with Err
// set instead of aborting the rest. The function is pure; calling it again
// yields the same sequence.
//
// Filenames follow the layout the inspection archive expects:
//
//	01_Front.jpg
//	Schaden_01_Stoßstange_1.jpg
//	Aussen_Motorhaube_1.jpg
//	Innen_Rücksitz_2.jpg
func ExtractPhotos(sub *Submission) []PhotoFile {
	var out []PhotoFile

	for i, photo := range sub.Photos {
		title := photo.Title
		if title == "" {
			title = fmt.Sprintf("Foto_%d", i+1)
		}
		if photo.DataURL == "" {
			// an empty slot still consumes its position number
			continue
		}
		name := fmt.Sprintf("%02d_%s.jpg", i+1, SanitizeFilename(title))
		out = append(out, decodeTo(name, photo.DataURL))
	}

	for i, damage := range sub.Damage {
		area := damage.Area
		if area == "" {
			area = fmt.Sprintf("Schaden_%d", i+1)
		}
		for j, payload := range damage.Photos {
			name := fmt.Sprintf("Schaden_%02d_%s_%d.jpg", i+1, SanitizeFilename(area), j+1)
			out = append(out, decodeTo(name, payload))
		}
	}

	for _, section := range []struct {
		prefix string
		items  []ChecklistItem
	}{
		{"Aussen", sub.Exterior},
		{"Innen", sub.Interior},
	} {
		for _, item := range section.items {
			area := item.Area
			if area == "" {
				area = "Unbekannt"
			}
			for j, payload := range item.Photos {
				name := fmt.Sprintf("%s_%s_%d.jpg", section.prefix, SanitizeFilename(area), j+1)
				out = append(out, decodeTo(name, payload))
			}
		}
	}

	return out
}

func decodeTo(name, payload string) PhotoFile {
	data, err := DecodeImage(payload)
	if err != nil {
		return PhotoFile{Name: name, Err: err}
	}
	return PhotoFile{Name: name, Data: data}
}
