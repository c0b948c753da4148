// Package router holds the registry of application routes served by the
// main server.
//
// Services register routes at startup, on an explicit Registry or on the
// process-wide one, and hand a snapshot to the server:
//
//	_ = router.AddRoute(http.MethodGet, "/vouchers/{id}", getVoucher)
//	srv := server.New(router.BasicRouter(), cfg)
//
// The process-wide registry always serves GET /healthz.
package router
