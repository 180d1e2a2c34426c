package cli

import (
	"context"
	"fmt"

	"github.com/JBibu/zerobyte/pkg/types"
	"github.com/spf13/cobra"
)

var volumeCmd = &cobra.Command{
	Use:     "volume",
	Aliases: []string{"volumes", "vol"},
	Short:   "Manage backup volumes",
}

var (
	createBackend  string
	createPath     string
	createServer   string
	createShare    string
	createPort     int
	createUsername string
	createPassword string
	createDomain   string
	createVers     string
	createReadOnly bool
)

var volumeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List volumes and their mount states",
	RunE: func(cmd *cobra.Command, args []string) error {
		volumes, err := newClient().ListVolumes(cmd.Context())
		if err != nil {
			return err
		}

		if PrintJSON(volumes) {
			return nil
		}

		if len(volumes) == 0 {
			PrintInfo("no volumes configured")
			return nil
		}

		table := NewTable("NAME", "ID", "BACKEND", "STATE", "LAST ERROR")
		for _, vol := range volumes {
			state := vol.State.State.String()
			table.AddRow(vol.Name, vol.ExternalId, string(vol.Config.Backend), StateStyle(state).Render(state), vol.State.LastError)
		}
		fmt.Println()
		table.Print()
		fmt.Println()
		return nil
	},
}

var volumeCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a volume",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}

		config, err := buildVolumeConfig()
		if err != nil {
			return err
		}

		var vol *VolumeDetail
		err = RunSpinner("Creating volume...", func() error {
			vol, err = newClient().CreateVolume(cmd.Context(), name, *config)
			return err
		})
		if err != nil {
			return err
		}

		if PrintJSON(vol) {
			return nil
		}
		PrintSuccessf("volume %s created", vol.Name)
		PrintKeyValue("id", vol.ExternalId)
		return nil
	},
}

func buildVolumeConfig() (*types.VolumeConfig, error) {
	switch types.BackendKind(createBackend) {
	case types.BackendDirectory:
		if createPath == "" {
			return nil, fmt.Errorf("--path is required for directory volumes")
		}
		return &types.VolumeConfig{
			Backend:   types.BackendDirectory,
			Directory: &types.DirectoryConfig{Path: createPath},
		}, nil
	case types.BackendSmb:
		if createServer == "" || createShare == "" {
			return nil, fmt.Errorf("--server and --share are required for smb volumes")
		}
		return &types.VolumeConfig{
			Backend: types.BackendSmb,
			Smb: &types.SmbConfig{
				Server:   createServer,
				Share:    createShare,
				Port:     createPort,
				Username: createUsername,
				Password: types.SecretRef(createPassword),
				Domain:   createDomain,
				Vers:     createVers,
				ReadOnly: createReadOnly,
			},
		}, nil
	case types.BackendNfs:
		if createServer == "" || createPath == "" {
			return nil, fmt.Errorf("--server and --path are required for nfs volumes")
		}
		return &types.VolumeConfig{
			Backend: types.BackendNfs,
			Nfs:     &types.NfsConfig{Server: createServer, Port: createPort, Path: createPath},
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (directory, smb, nfs)", createBackend)
	}
}

var volumeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a volume, releasing its mount first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := RunSpinner("Deleting volume...", func() error {
			return newClient().DeleteVolume(cmd.Context(), args[0])
		})
		if err != nil {
			return err
		}
		if !outputJSON {
			PrintSuccess("volume deleted")
		}
		return nil
	},
}

func operationCommand(use, short, title string, op func(context.Context, *Client, string) (types.OperationResult, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result types.OperationResult
			err := RunSpinner(title, func() error {
				var opErr error
				result, opErr = op(cmd.Context(), newClient(), args[0])
				return opErr
			})
			if err != nil {
				return err
			}

			if PrintJSON(result) {
				return nil
			}
			if result.Failed() {
				PrintWarning(fmt.Sprintf("%s (%s)", result.Error, result.Kind))
				return nil
			}
			PrintSuccessf("volume is %s", result.Status)
			return nil
		},
	}
}

func init() {
	volumeCreateCmd.Flags().StringVar(&createBackend, "backend", "directory", "backend kind: directory, smb, nfs")
	volumeCreateCmd.Flags().StringVar(&createPath, "path", "", "directory path, or export path for nfs")
	volumeCreateCmd.Flags().StringVar(&createServer, "server", "", "smb/nfs server host")
	volumeCreateCmd.Flags().StringVar(&createShare, "share", "", "smb share name")
	volumeCreateCmd.Flags().IntVar(&createPort, "port", 0, "non-default server port")
	volumeCreateCmd.Flags().StringVar(&createUsername, "username", "", "smb username")
	volumeCreateCmd.Flags().StringVar(&createPassword, "password-ref", "", "secret reference for the smb password")
	volumeCreateCmd.Flags().StringVar(&createDomain, "domain", "", "smb domain")
	volumeCreateCmd.Flags().StringVar(&createVers, "vers", "", "smb protocol version, e.g. 3.0")
	volumeCreateCmd.Flags().BoolVar(&createReadOnly, "read-only", false, "mount read-only")

	volumeCmd.AddCommand(volumeListCmd)
	volumeCmd.AddCommand(volumeCreateCmd)
	volumeCmd.AddCommand(volumeDeleteCmd)
	volumeCmd.AddCommand(operationCommand("mount", "Mount a volume", "Mounting volume...", func(ctx context.Context, c *Client, id string) (types.OperationResult, error) {
		return c.MountVolume(ctx, id)
	}))
	volumeCmd.AddCommand(operationCommand("unmount", "Unmount a volume", "Unmounting volume...", func(ctx context.Context, c *Client, id string) (types.OperationResult, error) {
		return c.UnmountVolume(ctx, id)
	}))
	volumeCmd.AddCommand(operationCommand("probe", "Health-check a volume", "Probing volume...", func(ctx context.Context, c *Client, id string) (types.OperationResult, error) {
		return c.ProbeVolume(ctx, id)
	}))
}
