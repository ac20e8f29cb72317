package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
)

func newCollectCmd(a *app) *cobra.Command {
	var (
		snapshot string
		pageURL  string
		rf       reportFlags
	)

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run the pipeline against a recorded browser snapshot",
		Example: `  visitorid collect --snapshot android.yaml
  visitorid collect --snapshot android.yaml --url https://shop.example/cart --report`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := browserenv.LoadSnapshot(snapshot)
			if err != nil {
				return err
			}
			if pageURL != "" {
				snap.URL = pageURL
				// The recorded document belongs to the recorded URL.
				snap.HTML = ""
			}
			env, err := browserenv.NewStatic(snap)
			if err != nil {
				return err
			}
			return a.run(cmd.Context(), env, rf, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&snapshot, "snapshot", "", "path to a YAML capability snapshot")
	cmd.Flags().StringVar(&pageURL, "url", "", "override the page URL of the snapshot")
	cmd.Flags().BoolVar(&rf.report, "report", false, "send a page view to the collection endpoint")
	cmd.Flags().StringVar(&rf.endpoint, "endpoint", "", "collection endpoint (default VISITORID_ENDPOINT)")
	_ = cmd.MarkFlagRequired("snapshot")
	return cmd
}
