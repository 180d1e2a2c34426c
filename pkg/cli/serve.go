package cli

import (
	"github.com/JBibu/zerobyte/pkg/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the volume service in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.NewServer()
		if err != nil {
			return err
		}
		return srv.Start()
	},
}
