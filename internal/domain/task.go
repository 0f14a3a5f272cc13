package domain

// WatermarkJobConfig is supplied by the host and never changes during a run.
type WatermarkJobConfig struct {
	InputDir         string `json:"inputDir" validate:"notblank"`
	OutputDir        string `json:"outputDir" validate:"notblank"`
	WatermarkText    string `json:"watermarkText" validate:"notblank"`
	FontSize         int    `json:"fontSize" validate:"min=1,max=200"`
	Opacity          int    `json:"opacity" validate:"min=0,max=100"`
	PaddingTopBottom int    `json:"paddingTopBottom" validate:"min=0,max=1000"`
	PaddingLeftRight int    `json:"paddingLeftRight" validate:"min=0,max=1000"`
	Crop             bool   `json:"crop"`
}

type BatchProgress struct {
	Processed    int      `json:"processed"`
	Total        int      `json:"total"`
	Percentage   int      `json:"percentage"`
	CurrentBatch []string `json:"currentBatch"`
}

type RunResult struct {
	Success            bool     `json:"success"`
	Message            string   `json:"message"`
	ProcessedFilenames []string `json:"processedFilenames,omitempty"`
	FailedFilenames    []string `json:"failedFilenames,omitempty"`
	RunID              string   `json:"runId,omitempty"`
}

type FailurePolicy string

const (
	FailFast   FailurePolicy = "fail-fast"
	CollectAll FailurePolicy = "collect-all"
)

type OperationType string

const (
	OpReadMetadata OperationType = "read_metadata"
	OpLoad         OperationType = "load"
	OpCrop         OperationType = "crop"
	OpLayout       OperationType = "layout"
	OpComposite    OperationType = "composite"
	OpWrite        OperationType = "write"
	OpPipeline     OperationType = "pipeline"
)

var CropAspectRatio = AspectRatio{Width: 5, Height: 4}

const (
	DefaultMaxConcurrent    = 4
	DefaultJPEGQuality      = 80
	DefaultFontFamily       = "Arial, sans-serif"
	DefaultWatermarkText    = "© Watermark"
	DefaultFontSize         = 24
	DefaultWatermarkOpacity = 50
	DefaultPadding          = 50
)
