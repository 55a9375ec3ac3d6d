package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".dealbrief"

// Paths holds resolved filesystem paths for dealbrief data.
type Paths struct {
	Base    string // ~/.dealbrief
	Config  string // ~/.dealbrief/config.yaml
	Data    string // ~/.dealbrief/data
	Reports string // ~/.dealbrief/reports
	Logs    string // ~/.dealbrief/logs
}

// ResolvePaths computes all standard paths from the home directory.
// If DEALBRIEF_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("DEALBRIEF_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Data:    filepath.Join(base, "data"),
		Reports: filepath.Join(base, "reports"),
		Logs:    filepath.Join(base, "logs"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Reports, p.Logs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
