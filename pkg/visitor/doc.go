// Package visitor wires the identification pipeline together.
//
// A Tracker runs signal collection, fingerprint composition and page
// classification against a browserenv.Provider and hands the result to a
// reporter.Reporter:
//
//	env, _ := browserenv.NewStatic(snap)
//	rep, _ := reporter.New("https://collect.example/api/visit", store)
//	stop := visitor.New(env, store, rep).Start(ctx)
//	defer stop()
//
// Start sends the initial page view, re-reports on add-to-cart clicks with a
// freshly computed fingerprint, and sends another page view whenever the
// page becomes visible again. Each trigger produces its own report.
//
// Middleware runs the same pipeline for server-side collection, with the
// provider built from request headers and identity kept in signed cookies.
// Handlers read the result with VisitFromContext.
package visitor
