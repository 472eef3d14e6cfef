package convert

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile describes the conversion targets the panel offers for one source
// format.
type Profile struct {
	Source      string   `yaml:"source" json:"source"`
	DisplayName string   `yaml:"displayName" json:"displayName"`
	Targets     []string `yaml:"targets" json:"targets"`
}

// Profiles is the panel's format picker configuration.
type Profiles struct {
	Profiles []Profile `yaml:"profiles" json:"profiles"`
}

// DefaultProfiles lists the formats backed by registered converters plus the
// relabel-only targets the panel has always offered.
func DefaultProfiles() *Profiles {
	return &Profiles{
		Profiles: []Profile{
			{Source: "csv", DisplayName: "CSV spreadsheet", Targets: []string{"json", "pdf", "txt"}},
			{Source: "json", DisplayName: "JSON document", Targets: []string{"csv", "txt"}},
			{Source: "txt", DisplayName: "Plain text", Targets: []string{"pdf", "md"}},
			{Source: "md", DisplayName: "Markdown", Targets: []string{"txt"}},
		},
	}
}

// LoadProfiles parses a YAML profiles file. A missing file yields the
// defaults.
func LoadProfiles(filePath string) (*Profiles, error) {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultProfiles(), nil
		}
		return nil, err
	}
	defer file.Close()

	return ParseProfilesFromReader(file)
}

// ParseProfilesFromReader parses profiles from an io.Reader.
func ParseProfilesFromReader(r io.Reader) (*Profiles, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var profiles Profiles
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}

	return &profiles, nil
}
