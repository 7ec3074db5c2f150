/*
Package envcheck validates the environment-file settings of a RAG deployment.

A Resolver checks a flat key/value mapping against the recognized keys:

	RERANKER_TYPE          one of alibaba, bge, ms-marco; alibaba also needs
	                       ALIBABA_API_KEY or DASHSCOPE_API_KEY
	NEXT_PUBLIC_API_URL    an absolute http(s) URL, not loopback in a browser
	NEXT_PUBLIC_AUTH_URL   build, matching the external host when one is set

Every violation is reported; the resolver never stops at the first one and
never modifies the mapping it is given.

Basic Usage:

	values, err := envcheck.LoadEnvFiles(".env", "frontend/.env.local")
	if err != nil {
		return err
	}
	values = envcheck.MergeEnviron(values, os.Environ(), envcheck.Keys())

	report := envcheck.NewResolver(envcheck.DefaultOptions()).Resolve(values)
	for _, v := range report.Violations {
		fmt.Println(v.Message)
	}

Keys that are absent or blank are reported as unset and produce no violation
unless another key's dependent requirement needs them.
*/
package envcheck
