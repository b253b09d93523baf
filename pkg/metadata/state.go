package metadata

type State int

const (
	StateIdle State = iota
	StateImageUploading
	StateImageUploaded
	StateMetadataUploading
	StateMetadataUploaded
	StateBinding
	StateBound
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:              "Idle",
	StateImageUploading:    "ImageUploading",
	StateImageUploaded:     "ImageUploaded",
	StateMetadataUploading: "MetadataUploading",
	StateMetadataUploaded:  "MetadataUploaded",
	StateBinding:           "Binding",
	StateBound:             "Bound",
	StateFailed:            "Failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s State) Terminal() bool {
	return s == StateBound || s == StateFailed
}

// next is the only forward transition allowed out of each non-terminal state.
var next = map[State]State{
	StateIdle:              StateImageUploading,
	StateImageUploading:    StateImageUploaded,
	StateImageUploaded:     StateMetadataUploading,
	StateMetadataUploading: StateMetadataUploaded,
	StateMetadataUploaded:  StateBinding,
	StateBinding:           StateBound,
}

func (s State) canTransition(to State) bool {
	if s.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	return next[s] == to
}
