package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/code-payments/instruction-server/pkg/app"
	"github.com/code-payments/instruction-server/pkg/server/web"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		dotEnvPath string
		port       int
	)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server until interrupted.

Configuration is read from, in increasing priority, built in defaults, the
config file, the .env file, environment variables and flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				viper.Set("port", port)
			}

			return app.Run(
				web.NewApp(web.WithEnvConfigs()),
				app.WithConfigPath(configPath),
				app.WithDotEnvPath(dotEnvPath),
			)
		},
	}

	serve.Flags().StringVar(&configPath, "config", "config.yaml", "Optional YAML config file")
	serve.Flags().StringVar(&dotEnvPath, "env-file", ".env", "Optional .env file, ignored when missing")
	serve.Flags().IntVar(&port, "port", 3000, "Port to listen on, overrides PORT")
	return serve
}
