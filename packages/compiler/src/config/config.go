package config

// ChangeDetectorGenConfig controls the generated change detectors
type ChangeDetectorGenConfig struct {
	// GenDebugInfo keeps binding debug strings in the generated binding targets
	GenDebugInfo bool `yaml:"genDebugInfo"`
	// LogBindingUpdate makes the detector report every binding update
	LogBindingUpdate bool `yaml:"logBindingUpdate"`
	// UtilName is the runtime helper object referenced by generated code
	UtilName string `yaml:"utilName"`
	// ChangeDetectorStateName is the detector state enum referenced by generated code
	ChangeDetectorStateName string `yaml:"changeDetectorStateName"`
}

const (
	DefaultUtilName                = "ChangeDetectionUtil"
	DefaultChangeDetectorStateName = "ChangeDetectorState"
)

// NewChangeDetectorGenConfig creates a new ChangeDetectorGenConfig with optional parameters
func NewChangeDetectorGenConfig(opts ...ChangeDetectorGenConfigOption) *ChangeDetectorGenConfig {
	config := &ChangeDetectorGenConfig{
		GenDebugInfo:            false,
		LogBindingUpdate:        false,
		UtilName:                DefaultUtilName,
		ChangeDetectorStateName: DefaultChangeDetectorStateName,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// ChangeDetectorGenConfigOption is a function that modifies ChangeDetectorGenConfig
type ChangeDetectorGenConfigOption func(*ChangeDetectorGenConfig)

// WithGenDebugInfo sets whether debug info is generated
func WithGenDebugInfo(genDebugInfo bool) ChangeDetectorGenConfigOption {
	return func(c *ChangeDetectorGenConfig) {
		c.GenDebugInfo = genDebugInfo
	}
}

// WithLogBindingUpdate sets whether binding updates are logged
func WithLogBindingUpdate(log bool) ChangeDetectorGenConfigOption {
	return func(c *ChangeDetectorGenConfig) {
		c.LogBindingUpdate = log
	}
}

// WithUtilName sets the name of the runtime helper object
func WithUtilName(name string) ChangeDetectorGenConfigOption {
	return func(c *ChangeDetectorGenConfig) {
		c.UtilName = name
	}
}
