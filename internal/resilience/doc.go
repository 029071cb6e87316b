// Package resilience groups the fault tolerance helpers used around remote calls.
//
// Every call that leaves the process (model server, Hugging Face, Claude, OpenAI,
// article downloads) goes through a circuit breaker and, for transient failures,
// exponential backoff with jitter:
//
//	cb := circuitbreaker.New(circuitbreaker.ModelServerConfig())
//	err := retry.WithBackoff(ctx, retry.ModelServerConfig(), func() error {
//	    _, err := cb.Execute(func() (interface{}, error) {
//	        return client.Generate(ctx, ids, params)
//	    })
//	    return err
//	})
package resilience
