package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/browserenv/chrome"
	"github.com/dmitrymomot/visitorid/pkg/logger"
)

func newChromeCmd(a *app) *cobra.Command {
	var (
		pageURL   string
		save      string
		execPath  string
		userAgent string
		headless  bool
		timeout   time.Duration
		rf        reportFlags
	)

	cmd := &cobra.Command{
		Use:   "chrome",
		Short: "Run the pipeline against a live page in headless Chrome",
		Example: `  visitorid chrome --url https://shop.example/products/widget
  visitorid chrome --url https://shop.example/ --save shop.yaml
  visitorid chrome --url https://shop.example/products/widget --headless=false --report --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := chrome.Open(cmd.Context(), pageURL,
				chrome.WithHeadless(headless),
				chrome.WithExecPath(execPath),
				chrome.WithUserAgent(userAgent),
				chrome.WithTimeout(timeout),
				chrome.WithLogger(a.log.With(logger.Component("chrome"))),
			)
			if err != nil {
				return err
			}
			defer page.Close()

			if save != "" {
				data, err := browserenv.Record(page).Marshal()
				if err != nil {
					return fmt.Errorf("encode snapshot: %w", err)
				}
				if err := os.WriteFile(save, data, 0o644); err != nil {
					return fmt.Errorf("save snapshot: %w", err)
				}
				a.log.InfoContext(cmd.Context(), "snapshot saved", "path", save)
			}

			return a.run(cmd.Context(), page, rf, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "page to open")
	cmd.Flags().StringVar(&save, "save", "", "also record the page capabilities to this snapshot file")
	cmd.Flags().StringVar(&execPath, "exec-path", "", "Chrome binary (default: autodetect)")
	cmd.Flags().StringVar(&userAgent, "user-agent", "", "override the browser user agent")
	cmd.Flags().BoolVar(&headless, "headless", true, "run Chrome without a window")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "page load and evaluation budget")
	cmd.Flags().BoolVar(&rf.report, "report", false, "send a page view to the collection endpoint")
	cmd.Flags().StringVar(&rf.endpoint, "endpoint", "", "collection endpoint (default VISITORID_ENDPOINT)")
	cmd.Flags().BoolVar(&rf.watch, "watch", false, "keep the page open and report add-to-cart clicks and visibility returns until interrupted")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}
