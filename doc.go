// Package truelist provides a Go client SDK for Truelist, an email
// verification service.
//
// The SDK validates addresses against the Truelist API, reads account
// information, retries transient failures with exponential backoff, and
// reports every failure as a [*Error] tagged with a [Kind].
//
// Basic usage:
//
//	client, err := truelist.New("your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.Email().Validate(ctx, "user@example.com")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if result.IsValid() {
//	    fmt.Println("deliverable:", result.Email)
//	}
//
// Errors can be matched with errors.Is against the sentinel values or
// inspected with errors.As:
//
//	var apiErr *truelist.Error
//	if errors.As(err, &apiErr) && apiErr.Kind == truelist.KindRateLimit {
//	    if secs, ok := apiErr.RetryAfterSeconds(); ok {
//	        fmt.Printf("retry in %.0fs\n", secs)
//	    }
//	}
//
// Calls that should not block the caller go through [AsyncClient], whose
// methods return a [Pending] result:
//
//	p := client.Async().Email().Validate(ctx, "user@example.com")
//	// ... other work ...
//	result, err := p.Await(ctx)
package truelist
