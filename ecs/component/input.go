package component

// Input stores per-frame player intent. MoveX is strafe (right positive),
// MoveY is forward (away from the camera positive). The vector length is at most 1.
type Input struct {
	MoveX        float64
	MoveY        float64
	Jump         bool
	JumpPressed  bool
	SpawnPressed bool
	// PausePressed toggles Playing and Paused.
	PausePressed bool
}

var InputComponent = NewComponent[Input]()
