package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrymomot/visitorid/internal/config"
	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/fingerprint"
	"github.com/dmitrymomot/visitorid/pkg/logger"
	"github.com/dmitrymomot/visitorid/pkg/reporter"
	"github.com/dmitrymomot/visitorid/pkg/visitor"
)

var errNoEndpoint = errors.New("no collection endpoint: set VISITORID_ENDPOINT or --endpoint")

type reportOutput struct {
	Success  bool   `json:"success"`
	Status   int    `json:"status,omitempty"`
	Token    string `json:"token,omitempty"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type output struct {
	Fingerprint string         `json:"fingerprint"`
	FPVersion   string         `json:"fpVersion"`
	Page        string         `json:"page"`
	URL         string         `json:"url,omitempty"`
	Referrer    string         `json:"referrer,omitempty"`
	Signals     map[string]any `json:"signals"`
	Report      *reportOutput  `json:"report,omitempty"`
}

// reportFlags are shared by commands that run the pipeline.
type reportFlags struct {
	report   bool
	endpoint string
	// watch keeps the page open after the first report, re-reporting on
	// add-to-cart clicks and visibility returns until ctx is done.
	watch bool
}

// run identifies the visitor behind env, optionally reports a page view and
// writes the outcome as JSON to out.
func (a *app) run(ctx context.Context, env browserenv.Provider, rf reportFlags, out io.Writer) error {
	store, closeStore, err := config.OpenStore(ctx, a.cfg, a.log.With(logger.Component("store")))
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			a.log.WarnContext(ctx, "failed to close identity store", logger.Error(err))
		}
	}()

	var rep *reporter.Reporter
	if rf.report {
		endpoint := rf.endpoint
		if endpoint == "" {
			endpoint = a.cfg.Endpoint
		}
		if endpoint == "" {
			return errNoEndpoint
		}
		rep, err = reporter.New(endpoint, store,
			reporter.WithTimeout(a.cfg.Timeout),
			reporter.WithVendorID(a.cfg.VendorID),
			reporter.WithTokenTTL(a.cfg.TTL),
			reporter.WithLogger(a.log.With(logger.Component("reporter"))),
		)
		if err != nil {
			return err
		}
	}

	tracker := visitor.New(env, store, rep, visitor.WithTTL(a.cfg.TTL), visitor.WithLogger(a.log))
	v, pending := tracker.ReportPageView(ctx)
	ctx = visitor.WithVisit(ctx, v)

	o := output{
		Fingerprint: v.Fingerprint.String(),
		FPVersion:   fingerprint.Version,
		Page:        v.Page.String(),
		Referrer:    v.Referrer,
		Signals:     v.Signals.Map(),
	}
	if v.URL != nil {
		o.URL = v.URL.String()
	}

	if pending != nil {
		res := pending.AwaitTimeout(a.cfg.Timeout + time.Second)
		o.Report = &reportOutput{
			Success:  res.Success,
			Status:   res.StatusCode,
			Token:    res.Token,
			Duration: res.Duration.String(),
		}
		if res.Err != nil {
			o.Report.Error = res.Err.Error()
		} else {
			a.log.InfoContext(ctx, "page view reported", logger.StatusCode(res.StatusCode), logger.Duration(res.Duration))
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if rf.watch {
		stop := tracker.Watch(ctx)
		a.log.InfoContext(ctx, "watching page, interrupt to stop")
		<-ctx.Done()
		stop()
	}
	return nil
}
