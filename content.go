package physique

import (
	"embed"
	"encoding/json"
	"io"
)

//go:embed etc/defaults.json
var Content embed.FS

// ReadDefaults decodes account defaults from r
func ReadDefaults(r io.Reader) (*Defaults, error) {
	var d Defaults
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, err
	}
	if err := d.Profile.Validate(); err != nil {
		return nil, err
	}
	if err := d.Preferences.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// EmbeddedDefaults returns the defaults compiled into the binary
func EmbeddedDefaults() (*Defaults, error) {
	fp, err := Content.Open("etc/defaults.json")
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ReadDefaults(fp)
}
