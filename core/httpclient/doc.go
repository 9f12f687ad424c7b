// Package httpclient provides the retrying HTTP client used for all calls
// to the remote directory services.
//
// Every request gets a fixed attempt budget (default 3) with a fixed delay
// between attempts (default 5s). A transport failure or any 4xx/5xx response
// consumes one attempt. Once the budget is exhausted the client returns a
// *RequestError carrying the URL and the last error, which aborts the
// enclosing fetch.
package httpclient
