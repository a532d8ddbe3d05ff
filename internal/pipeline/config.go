package pipeline

import (
	"github.com/santiagocaneppa/Interview-project/constants"
)

type Config struct {
	ScratchDir  string // per-document working copies
	SideFileDir string // <name>.json audit files; defaults to ScratchDir
	OutputFile  string // dataset file name inside the output directory
	ExportXLSX  bool   // mirror the dataset into a workbook after each run
}

func (c Config) withDefaults() Config {
	if c.ScratchDir == "" {
		c.ScratchDir = "./tmp/work"
	}
	if c.SideFileDir == "" {
		c.SideFileDir = c.ScratchDir
	}
	if c.OutputFile == "" {
		c.OutputFile = constants.DefaultOutputFile
	}
	return c
}
