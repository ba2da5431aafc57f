// Package health provides liveness and readiness routes for hawkbit
// applications.
//
// [New] returns a route declarer that registers two endpoints:
//
//   - GET /health/live always answers 200
//   - GET /health/ready runs every named check concurrently and answers 200
//     when all pass, 503 otherwise
//
// Checks share one timeout (5 seconds by default). A check that ignores its
// context is abandoned at the deadline and reported as [ErrCheckTimeout].
//
// # Usage
//
//	app := hawkbit.New(
//	    hawkbit.WithHandlers(health.New(health.Checks{
//	        "metrics": metrics.Check,
//	    }, health.WithTimeout(2*time.Second))),
//	)
//
// # Response Formats
//
// Probes receive plain text ("OK" or "Service Unavailable"). Send
// Accept: application/json or ?format=json for the full report:
//
//	{"checks":{"metrics":{"status":"healthy"}},"status":"healthy"}
package health
