package elements

type Layer string

const (
	LayerBronze Layer = "bronze"
	LayerSilver Layer = "silver"
	LayerGold   Layer = "gold"
)

type LayerArtifact struct {
	Key      string `json:"key"`
	NumRows  int64  `json:"num_rows"`
	NumBytes int    `json:"num_bytes"`
}

// LayerStatus is the outcome of producing one layer. Message is always
// human readable, on success and on failure.
type LayerStatus struct {
	Layer     Layer
	OK        bool
	Message   string
	Artifacts []LayerArtifact
}

func SuccessStatus(layer Layer, message string, artifacts ...LayerArtifact) LayerStatus {
	return LayerStatus{Layer: layer, OK: true, Message: message, Artifacts: artifacts}
}

func FailureStatus(layer Layer, message string, artifacts ...LayerArtifact) LayerStatus {
	return LayerStatus{Layer: layer, OK: false, Message: message, Artifacts: artifacts}
}
