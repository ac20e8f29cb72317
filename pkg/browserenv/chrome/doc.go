// Package chrome implements browserenv.Provider on top of a headless Chrome
// tab driven through the DevTools protocol.
//
//	page, err := chrome.Open(ctx, "https://shop.example/products/widget")
//	if err != nil {
//		return err
//	}
//	defer page.Close()
//
// The canvas scene is replayed in the page through canvas.Script, so the hash
// reflects the real rasterizer.
//
// Page is also a browserenv.EventSource. The first OnClick or
// OnVisibilityChange call installs document listeners that report back
// through a DevTools binding; clicks arrive as a goquery selection of the
// target inside a snapshot of the document.
package chrome
