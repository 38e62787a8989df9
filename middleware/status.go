package middleware

// Status codes the middleware chain itself may produce when it
// short-circuits a request before the business handler runs. These are a
// convention of this service's generated dispatch stub, not a core
// protocol feature — spec §4.3 leaves the response status field
// uninterpreted by the runtime.
const (
	StatusOK            int32 = 0
	StatusTimeout       int32 = -1
	StatusRateLimited   int32 = -2
	StatusDispatchMiss  int32 = -3
	StatusDecodeFailure int32 = -4
)
