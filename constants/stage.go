package constants

// Stage names one step of the OCR pipeline. Used in error codes and logs.
type Stage string

const (
	StageValidate  Stage = "validate"
	StageRasterize Stage = "rasterize"
	StageRecognize Stage = "recognize"
	StageWrite     Stage = "write"
)

// Engine names a recognition backend selectable with --engine.
type Engine string

const (
	EngineTesseract Engine = "tesseract" // tesseract CLI, piped over stdin
	EngineGosseract Engine = "gosseract" // in-process libtesseract, needs the gosseract build tag
)

// Engines holds the allowed values for the --engine flag.
var Engines = []string{string(EngineTesseract), string(EngineGosseract)}

// Recognition defaults.
const (
	DefaultDPI      = 300
	DefaultLanguage = "eng"
	DefaultConfig   = "--psm 3"
)
