package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/server"
	mcpctrl "github.com/secmon-lab/briareos/pkg/controller/mcp"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdMCP(version string) *cli.Command {
	var appCfg appConfig

	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the support tools over MCP on stdio",
		Flags: appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			s := mcpctrl.New(a.uc, a.tools, version)
			logging.Default().Info("Starting MCP server on stdio", "agent_tools", len(a.tools))

			if err := server.ServeStdio(s); err != nil {
				return goerr.Wrap(err, "mcp server stopped")
			}
			return nil
		},
	}
}
