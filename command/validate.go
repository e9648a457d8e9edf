package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/giantswarm/microerror"
	"github.com/spf13/cobra"

	settings "github.com/giantswarm/scaletests/config"
)

func newValidateCommand(config Config, root *rootFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "validate",
		Short: "Validate the settings file and print the resolved scenarios.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := settings.Load(config.Fs, root.config)
			if err != nil {
				return microerror.Mask(err)
			}

			scenarios, err := cfg.ResolveAll()
			if err != nil {
				return microerror.Mask(err)
			}

			t := tabwriter.NewWriter(config.Stdout, 0, 8, 2, ' ', 0)

			fmt.Fprintln(t, "SCENARIO\tDEPLOYMENT\tREPLICAS\tTIMEOUT\tINTERVAL\tNODE TIMEOUT\tNODE INTERVAL")
			for _, s := range scenarios {
				fmt.Fprintf(t, "%s\t%s/%s\t%d\t%s\t%s\t%s\t%s\n", s.Name, s.Namespace, s.Deployment, s.Replicas, s.Timeout, s.Interval, s.NodeTimeout, s.NodeInterval)
			}

			err = t.Flush()
			if err != nil {
				return microerror.Mask(err)
			}

			return nil
		},
	}

	return c
}
