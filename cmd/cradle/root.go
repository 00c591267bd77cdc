package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/cradle/bootstrap"
	"github.com/kbukum/cradle/config"
)

const serviceName = "cradle"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	host       string
	port       int
	secure     bool
	username   string
	password   string
	logLevel   string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Send requests to a CouchDB-style document store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVarP(&g.configFile, "config", "c", "", "path to config.yml (default: searched in standard locations)")
	pf.StringVar(&g.envFile, "env-file", "", "path to a .env file")
	pf.StringVar(&g.host, "host", "", "server host (overrides config)")
	pf.IntVar(&g.port, "port", 0, "server port (overrides config)")
	pf.BoolVar(&g.secure, "secure", false, "use https (overrides config)")
	pf.StringVarP(&g.username, "user", "u", "", "basic auth username")
	pf.StringVar(&g.password, "password", "", "basic auth password")
	pf.StringVar(&g.logLevel, "log-level", "", "log level: trace, debug, info, warn, error, disabled (overrides config)")

	root.AddCommand(newRequestCmd(g), newPingCmd(g), newVersionCmd())
	return root
}

// loadConfig loads configuration and applies flag overrides.
// Logs always go to stderr so stdout carries only response bodies.
func (g *globalFlags) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var opts []config.LoaderOption
	if g.configFile != "" {
		opts = append(opts, config.WithConfigFile(g.configFile))
	}
	if g.envFile != "" {
		opts = append(opts, config.WithEnvFile(g.envFile))
	}

	cfg, err := config.Load(serviceName, opts...)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Connection.Host = g.host
	}
	if flags.Changed("port") {
		cfg.Connection.Port = g.port
	}
	if flags.Changed("secure") {
		cfg.Connection.Secure = g.secure
	}
	if flags.Changed("user") {
		cfg.Connection.Username = g.username
	}
	if flags.Changed("password") {
		cfg.Connection.Password = g.password
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = g.logLevel
	}
	cfg.Logging.Output = "stderr"
	return cfg, nil
}

// newApp loads configuration and creates the application.
func (g *globalFlags) newApp(cmd *cobra.Command, opts ...bootstrap.Option) (*bootstrap.App, error) {
	cfg, err := g.loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return bootstrap.NewApp(cfg, opts...)
}
