package convert

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestParseProfilesFromReader(t *testing.T) {
	yamlDoc := `
profiles:
  - source: csv
    displayName: CSV spreadsheet
    targets: [json, pdf]
  - source: txt
    displayName: Plain text
    targets:
      - pdf
`
	profiles, err := ParseProfilesFromReader(strings.NewReader(yamlDoc))
	if err != nil {
		t.Fatalf("ParseProfilesFromReader: %v", err)
	}
	if len(profiles.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles.Profiles))
	}
	if profiles.Profiles[0].Source != "csv" || len(profiles.Profiles[0].Targets) != 2 {
		t.Errorf("unexpected csv profile: %+v", profiles.Profiles[0])
	}
	if profiles.Profiles[1].DisplayName != "Plain text" {
		t.Errorf("unexpected txt profile: %+v", profiles.Profiles[1])
	}
}

func TestParseProfilesFromReader_Invalid(t *testing.T) {
	if _, err := ParseProfilesFromReader(strings.NewReader("profiles: [not: valid")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoadProfiles_MissingFileUsesDefaults(t *testing.T) {
	profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadProfiles: %v", err)
	}
	if len(profiles.Profiles) == 0 {
		t.Fatal("expected default profiles")
	}
}
