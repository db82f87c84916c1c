package config

type TracingConfig struct {
	On          bool    `yaml:"enabled"`
	Service     string  `yaml:"service-name"`
	AgentHost   string  `yaml:"agent-host-port"`
	SampleRatio float64 `yaml:"sample-ratio"`
}

func (t *TracingConfig) setDefaults() {
	if t.Service == "" {
		t.Service = "tcmb-rates"
	}
	if t.AgentHost == "" {
		t.AgentHost = "localhost:6831"
	}
	if t.SampleRatio <= 0 {
		t.SampleRatio = 1
	}
}

func (t *TracingConfig) Enabled() bool {
	return t.On
}

func (t *TracingConfig) ServiceName() string {
	return t.Service
}

func (t *TracingConfig) AgentHostPort() string {
	return t.AgentHost
}

func (t *TracingConfig) SamplerParam() float64 {
	return t.SampleRatio
}
