package component

// AnimationClips names the clip used for each locomotion state.
type AnimationClips struct {
	Idle      string `yaml:"idle"`
	Run       string `yaml:"run"`
	Jump      string `yaml:"jump"`
	Fall      string `yaml:"fall"`
	Climb     string `yaml:"climb"`
	ClimbIdle string `yaml:"climb_idle"`
}

// Animation is what the renderer reads: the active clip, how long it has
// been playing and which way the player faces.
type Animation struct {
	Clips      AnimationClips
	Current    string
	Frame      int
	FacingLeft bool
	// JumpTicks keeps the jump clip up for a few ticks after take-off.
	JumpTicks int
}

var AnimationComponent = NewComponent[Animation]()
