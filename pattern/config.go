package pattern

// Config holds the application configuration loaded from YAML.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topics   struct {
			Stream string `yaml:"stream"`
		} `yaml:"topics"`
	} `yaml:"mqtt"`
	Matrix struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"matrix"`
	Stream struct {
		CrossfadeSteps int `yaml:"crossfadeSteps"`
	} `yaml:"stream"`
}
