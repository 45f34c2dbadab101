package core

import "fmt"

// Stage names a pipeline step.
type Stage string

const (
	StageNormalize Stage = "normalize"
	StageClean     Stage = "clean"
	StageIdentify  Stage = "identify"
	StageValidate  Stage = "validate"
	StageReport    Stage = "report"
)

// Note records one change a stage made to the batch.
// Notes are informational and never affect pass/fail.
type Note struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

func (n Note) String() string {
	return fmt.Sprintf("[%s] %s", n.Stage, n.Message)
}

// Stats counts what the cleaning and identifier stages did to a batch.
type Stats struct {
	InputRows             int `json:"input_rows"`
	EmptyRowsDropped      int `json:"empty_rows_dropped"`
	MediaLiteralFallbacks int `json:"media_literal_fallbacks"`
	SrNoGenerated         int `json:"sr_no_generated"`
	DefaultsFilled        int `json:"defaults_filled"`
	DuplicatesDropped     int `json:"duplicates_dropped"`
	IDsAssigned           int `json:"ids_assigned"`
	OutputRows            int `json:"output_rows"`
}
