package chrome

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/dmitrymomot/visitorid/pkg/browserenv"
	"github.com/dmitrymomot/visitorid/pkg/logger"
)

const (
	bindingName    = "__visitoridEvent"
	targetAttr     = "data-visitorid-target"
	eventQueueSize = 64

	eventClick      = "click"
	eventVisibility = "visibility"
)

// listenerJS forwards document clicks and visibility changes to the binding.
// A click carries the whole document with the target marked, so the Go side
// can walk its ancestors. Capture phase keeps page handlers that stop
// propagation from hiding clicks.
var listenerJS = fmt.Sprintf(`(() => {
	if (window.__visitoridListening) return;
	window.__visitoridListening = true;
	const send = (v) => { try { window[%[1]s](JSON.stringify(v)); } catch (e) {} };
	document.addEventListener("click", (e) => {
		const el = e.target instanceof Element ? e.target : null;
		if (!el) return;
		el.setAttribute(%[2]s, "");
		const html = document.documentElement.outerHTML;
		el.removeAttribute(%[2]s);
		send({ type: %[3]s, html: html });
	}, true);
	document.addEventListener("visibilitychange", () => {
		send({ type: %[4]s, visible: document.visibilityState === "visible" });
	});
})()`, jsString(bindingName), jsString(targetAttr), jsString(eventClick), jsString(eventVisibility))

type pageEvent struct {
	Type    string `json:"type"`
	HTML    string `json:"html,omitempty"`
	Visible bool   `json:"visible,omitempty"`
}

var _ browserenv.EventSource = (*Page)(nil)

func (p *Page) OnClick(fn func(browserenv.ClickEvent)) (func(), error) {
	if err := p.listen(); err != nil {
		return nil, err
	}
	return p.clicks.Add(fn), nil
}

func (p *Page) OnVisibilityChange(fn func(bool)) (func(), error) {
	if err := p.listen(); err != nil {
		return nil, err
	}
	return p.visibility.Add(fn), nil
}

// listen installs the page side listeners once per Page.
func (p *Page) listen() error {
	p.listenOnce.Do(func() {
		p.listenErr = p.installListeners()
	})
	return p.listenErr
}

func (p *Page) installListeners() error {
	queue := make(chan pageEvent, eventQueueSize)

	// Target events arrive on chromedp's reader goroutine, which must not run
	// actions itself; delivery happens on a separate goroutine.
	chromedp.ListenTarget(p.ctx, func(ev any) {
		called, ok := ev.(*runtime.EventBindingCalled)
		if !ok || called.Name != bindingName {
			return
		}
		var e pageEvent
		if err := json.Unmarshal([]byte(called.Payload), &e); err != nil {
			p.logger.Debug("malformed page event", logger.Error(err))
			return
		}
		select {
		case queue <- e:
		default:
			p.logger.Warn("page event dropped", slog.String("type", e.Type))
		}
	})
	go p.deliver(queue)

	ctx, cancel := context.WithTimeout(p.ctx, p.timeout)
	defer cancel()
	err := chromedp.Run(ctx,
		runtime.AddBinding(bindingName),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := cdppage.AddScriptToEvaluateOnNewDocument(listenerJS).Do(ctx)
			return err
		}),
		chromedp.Evaluate(listenerJS, nil),
	)
	if err != nil {
		return fmt.Errorf("install page listeners: %w", err)
	}
	return nil
}

func (p *Page) deliver(queue <-chan pageEvent) {
	for {
		select {
		case <-p.ctx.Done():
			return
		case e := <-queue:
			p.dispatch(e)
		}
	}
}

func (p *Page) dispatch(e pageEvent) {
	switch e.Type {
	case eventClick:
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(e.HTML))
		if err != nil {
			p.logger.Debug("unreadable click document", logger.Error(err))
			return
		}
		target := doc.Find("[" + targetAttr + "]").First()
		if target.Length() == 0 {
			return
		}
		target.RemoveAttr(targetAttr)
		p.clicks.Emit(browserenv.ClickEvent{Target: target})
	case eventVisibility:
		p.visibility.Emit(e.Visible)
	}
}
