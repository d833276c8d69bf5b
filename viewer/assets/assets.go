package assets

import _ "embed"

// Electrodes is the default electrode table, calibrated to brain.png.
//
//go:embed electrodes.yaml
var Electrodes []byte
