package connection

import "strconv"

const (
	// DefaultHost is the loopback address used by Localhost.
	DefaultHost = "127.0.0.1"
	// DefaultPort is the standard document-store port.
	DefaultPort = 5984
)

// Options configures how requests reach the server.
type Options struct {
	// Host is the server host name or address. Not validated.
	Host string `yaml:"host" mapstructure:"host"`
	// Port is the server port. Zero or negative omits the port from URLs.
	Port int `yaml:"port" mapstructure:"port"`
	// Secure selects https instead of http.
	Secure bool `yaml:"secure" mapstructure:"secure"`
	// Username for basic authentication. Ignored unless Password is also set.
	Username string `yaml:"username" mapstructure:"username"`
	// Password for basic authentication. Ignored unless Username is also set.
	Password string `yaml:"password" mapstructure:"password"`
}

// Localhost returns options for an unencrypted server on 127.0.0.1:5984.
func Localhost() Options {
	return Options{
		Host:   DefaultHost,
		Port:   DefaultPort,
		Secure: false,
	}
}

// Scheme returns "https" when Secure is set, "http" otherwise.
func (o Options) Scheme() string {
	if o.Secure {
		return "https"
	}
	return "http"
}

// HasCredentials reports whether both username and password are set.
func (o Options) HasCredentials() bool {
	return o.Username != "" && o.Password != ""
}

// Authority returns host, or host:port when Port is positive.
func (o Options) Authority() string {
	if o.Port > 0 {
		return o.Host + ":" + strconv.Itoa(o.Port)
	}
	return o.Host
}

// String returns scheme://authority. Credentials are never included.
func (o Options) String() string {
	return o.Scheme() + "://" + o.Authority()
}
