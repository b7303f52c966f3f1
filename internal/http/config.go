package http

type BasicAuth struct {
	Username string
	Password string
}

// SMS configures the inbound SMS webhook.
type SMS struct {
	// Number is the only destination number accepted
	Number    string `validate:"required"`
	AuthToken string `yaml:"auth-token"`
	PublicURL string `yaml:"public-url"`
}

type Configuration struct {
	Host       string `validate:"required"`
	Port       uint32 `validate:"required"`
	Key        string
	Cert       string
	Cacert     string
	Insecure   bool
	ServerName string    `yaml:"server-name"`
	BasicAuth  BasicAuth `yaml:"basic-auth"`
	SMS        SMS       `yaml:"sms"`
}
