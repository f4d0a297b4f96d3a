package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harry-hov/abi-aggregator/internal/manifest"
	"github.com/harry-hov/abi-aggregator/internal/record"
)

func (a *app) recorder() (*record.Recorder, error) {
	v, err := manifest.Version(a.env.Manifest)
	if err != nil {
		return nil, err
	}
	return record.New(record.Options{
		Root:             a.env.Root,
		DeploymentOutDir: a.env.DeploymentOutDir,
		Version:          v,
		FacetsFile:       a.env.DiamondDeploymentOutFile,
		Logger:           a.logger,
	})
}

func CmdRecordABI(a *app) *cobra.Command {
	var allChains bool
	cmd := &cobra.Command{
		Use:   "record-abi <contract> <chain_id> <timestamp>",
		Short: "Archive the build artifact of a deployed contract",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.recorder()
			if err != nil {
				return err
			}
			_, err = r.RecordABI(args[0], record.Deployment{
				ChainID:   args[1],
				Timestamp: args[2],
				AllChains: allChains,
			})
			return err
		},
	}

	cmd.Flags().BoolVarP(&allChains, "allchains", "", false, "also record deployments to the local chain")

	return cmd
}

func CmdRecordFacets(a *app) *cobra.Command {
	var allChains bool
	cmd := &cobra.Command{
		Use:   "record-facets <diamond> <contract> <address> <chain_id> <timestamp>",
		Short: "Record the address of a deployed diamond facet",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.recorder()
			if err != nil {
				return err
			}
			_, err = r.RecordFacet(args[0], args[1], args[2], record.Deployment{
				ChainID:   args[3],
				Timestamp: args[4],
				AllChains: allChains,
			})
			return err
		},
	}

	cmd.Flags().BoolVarP(&allChains, "allchains", "", false, "also record deployments to the local chain")

	return cmd
}
