package publish

import "strconv"

// State is a stage of a publish run.
type State int

// States of a publish run, in order.
const (
	StatePushReceived State = iota
	StateDependenciesInstalled
	StateDescriptorsRegenerated
	StateSiteBuilt
	StateArtifactUploaded
	StateDeployed

	// StateNoPublish is the terminal state of runs
	// that build the site but don't deploy it.
	StateNoPublish
)

var _stateNames = [...]string{
	StatePushReceived:           "push-received",
	StateDependenciesInstalled:  "dependencies-installed",
	StateDescriptorsRegenerated: "descriptors-regenerated",
	StateSiteBuilt:              "site-built",
	StateArtifactUploaded:       "artifact-uploaded",
	StateDeployed:               "deployed",
	StateNoPublish:              "terminal-no-publish",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(_stateNames) {
		return _stateNames[s]
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Terminal reports whether no stage follows s.
func (s State) Terminal() bool {
	return s == StateDeployed || s == StateNoPublish
}
