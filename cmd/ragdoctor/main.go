// ragdoctor diagnoses a multi-service RAG deployment.
//
// It validates the deployment's env files, probes service health endpoints,
// greps container logs for known failure signatures and smoke-tests the
// APRAG query path. Each check prints a checklist and the process exits
// non-zero when any check fails.
//
// Usage:
//
//	# Check the production env file
//	ragdoctor env check --file .env.production
//
//	# Probe every configured service
//	ragdoctor probe
//
//	# Grep the reranker's recent logs
//	ragdoctor logs reranker-service --keyword reorder
//
//	# Run every check in order
//	ragdoctor doctor
//
//	# Keep probing on a schedule and serve /metrics
//	ragdoctor monitor
package main

func main() {
	Execute()
}
