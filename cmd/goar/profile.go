package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	ar "github.com/outpost-tools/goar"
)

// profile is an optional TOML file supplying default dialect and modifier values. A missing file
// is not an error; only a malformed one is.
type profile struct {
	Dialect                 string `toml:"dialect"`
	UseRealTimestampsAndIDs bool   `toml:"use_real_timestamps_and_ids"`
	BuildSymbolTable        bool   `toml:"build_symbol_table"`
	SortSymbolTable         bool   `toml:"sort_symbol_table"`
	Verbose                 bool   `toml:"verbose"`
}

func loadProfile(path string) (*profile, error) {
	if path == "" {
		return &profile{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &profile{}, nil
	}
	var p profile
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("goar: reading profile %s: %w", path, err)
	}
	return &p, nil
}

func (p *profile) dialect() ar.Dialect {
	switch p.Dialect {
	case "gnu":
		return ar.DialectGNU
	case "gnuthin":
		return ar.DialectGNUThin
	case "gnu64":
		return ar.DialectGNU64
	case "bsd":
		return ar.DialectBSD
	case "darwin":
		return ar.DialectDarwin
	case "darwin64":
		return ar.DialectDarwin64
	case "coff":
		return ar.DialectCOFF
	default:
		return ar.DialectAmbiguous
	}
}

func (p *profile) modifiers() ar.Modifiers {
	return ar.Modifiers{
		UseRealTimestampsAndIDs: p.UseRealTimestampsAndIDs,
		BuildSymbolTable:        p.BuildSymbolTable,
		SortSymbolTable:         p.SortSymbolTable,
		Verbose:                 p.Verbose,
	}
}
